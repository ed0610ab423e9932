// Package atm implements the transaction session driven by ATM keypad actions.
package atm

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/branch-atm-ledger/internal/domain/account"
	"github.com/branch-atm-ledger/internal/domain/journal"
	"github.com/google/uuid"
)

// State of a session
type State string

const (
	StateLoggedIn              State = "logged_in"
	StateWithdrawing           State = "withdrawing"
	StateDepositing            State = "depositing"
	StateEnteringTargetAccount State = "entering_account"
	StateTransferring          State = "transferring"
	StateLoggedOut             State = "logged_out"
)

// Operation is a transaction the customer can select from the idle state
type Operation string

const (
	OperationWithdraw  Operation = "WITHDRAW"
	OperationDeposit   Operation = "DEPOSIT"
	OperationTransfer  Operation = "TRANSFER"
	OperationBalance   Operation = "BALANCE"
	OperationStatement Operation = "STATEMENT"
)

// Display texts
const (
	WelcomeMessage        = "Welcome to the ATM"
	ChooseOptionMessage   = "Please choose from one of the six options."
	CancelledMessage      = "Transaction cancelled"
	ResetMessage          = "An error has occured, and the ATM has been reset."
	InTransactionMessage  = "You're already in a transaction. Please either finish or cancel it before starting a new one."
	NoWithdrawalsMessage  = "You have no withdrawals left. You cannot withdraw."
	MaxWithdrawalsMessage = "You have reached your maximum withdrawals for the day."
	WithdrawFailedMessage = "Withdrawal failed. Please try again."
	DepositFailedMessage  = "Deposit failed. Please try again."
	DepositInvalidMessage = "Invalid deposit amount. Please try again."
	TransferFailedMessage = "Transfer failed. Please try again."
	StatementMessage      = "Statement printed."
)

// Ledger is the bank surface a session drives
type Ledger interface {
	CurrentAccount() (account.Account, bool)
	Balance() (int64, bool)
	Deposit(ctx context.Context, amount int64) bool
	Withdraw(ctx context.Context, amount int64) bool
	Transfer(ctx context.Context, sourceNumber, targetNumber, amount int64) bool
	Statement(ctx context.Context) string
	CheckCredential(secret string) bool
	UpdatePassword(ctx context.Context, number int64, newSecret string) bool
	UpdateOverdraftLimit(ctx context.Context, number, limit int64) bool
	Logout()
}

// Display is what the ATM screen shows: a short status line and a message body
type Display struct {
	Status  string
	Message string
}

// Options tunes a Session
type Options struct {
	// MaxOverdraftLimit is the ceiling accepted by ChangeOverdraft
	MaxOverdraftLimit int64
}

// DefaultMaxOverdraftLimit is used when Options leaves the ceiling unset
const DefaultMaxOverdraftLimit = 1000

// Session is the interaction state of one logged-in customer
type Session struct {
	ID uuid.UUID

	ledger  Ledger
	logger  *slog.Logger
	ceiling int64
	state   State
	number  int64
	target  int64
	display Display
}

// NewSession starts a session for the account currently logged in to ledger
func NewSession(logger *slog.Logger, ledger Ledger, opts Options) *Session {
	if opts.MaxOverdraftLimit <= 0 {
		opts.MaxOverdraftLimit = DefaultMaxOverdraftLimit
	}
	id := uuid.New()
	s := &Session{
		ID:      id,
		ledger:  ledger,
		logger:  logger.With("session_id", id.String()),
		ceiling: opts.MaxOverdraftLimit,
		target:  -1,
	}
	s.Initialise(WelcomeMessage)
	s.logger.Info("Session started")
	return s
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// Display returns the current screen contents
func (s *Session) Display() Display {
	return s.display
}

// Number returns the amount or account number typed so far
func (s *Session) Number() int64 {
	return s.number
}

// Initialise returns to the idle state with message followed by the option prompt
func (s *Session) Initialise(message string) Display {
	s.setState(StateLoggedIn)
	s.number = 0
	s.display = Display{Message: message + "\n" + ChooseOptionMessage}
	return s.display
}

// Process dispatches one keypad token. Unknown tokens reset the session.
func (s *Session) Process(ctx context.Context, token string) Display {
	token = strings.ToUpper(strings.TrimSpace(token))
	switch token {
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "00":
		return s.Digit(token)
	case "CLEAR":
		return s.Clear()
	case "CANCEL":
		return s.Cancel()
	case "ENTER":
		return s.Enter(ctx)
	case "LOGOUT":
		return s.Logout()
	case string(OperationWithdraw), string(OperationDeposit), string(OperationTransfer),
		string(OperationBalance), string(OperationStatement):
		return s.Select(ctx, Operation(token))
	default:
		s.logger.Warn("Unknown action, resetting session", "action", token)
		return s.Initialise(ResetMessage)
	}
}

// Digit appends each digit of label to the pending number, saturating before overflow
func (s *Session) Digit(label string) Display {
	for _, c := range label {
		if c < '0' || c > '9' {
			continue
		}
		d := int64(c - '0')
		if s.number > (math.MaxInt64-d)/10 {
			continue
		}
		s.number = s.number*10 + d
	}

	if s.state == StateEnteringTargetAccount {
		s.display.Status = strconv.FormatInt(s.number, 10)
	} else {
		s.display.Status = "£" + strconv.FormatInt(s.number, 10)
	}
	return s.display
}

// Clear resets the pending number
func (s *Session) Clear() Display {
	s.number = 0
	s.display.Status = ""
	return s.display
}

// Cancel abandons any operation in progress
func (s *Session) Cancel() Display {
	s.target = -1
	return s.Initialise(CancelledMessage)
}

// Logout ends the session and the bank login
func (s *Session) Logout() Display {
	s.setState(StateLoggedOut)
	s.ledger.Logout()
	s.logger.Info("Session ended")
	return s.display
}

// Select starts an operation. Only valid from the idle state.
func (s *Session) Select(ctx context.Context, op Operation) Display {
	if s.state != StateLoggedIn {
		s.display.Message += "\n" + InTransactionMessage
		return s.display
	}

	acc, ok := s.ledger.CurrentAccount()
	if !ok {
		s.logger.Warn("No account logged in, resetting session", "operation", string(op))
		return s.Initialise(ResetMessage)
	}

	switch op {
	case OperationWithdraw:
		return s.selectWithdraw(acc)
	case OperationDeposit:
		s.number = 0
		s.setState(StateDepositing)
		s.display = Display{
			Status:  "Enter deposit amount",
			Message: "Your current balance is : " + journal.FormatBalance(acc.Balance),
		}
	case OperationTransfer:
		s.number = 0
		s.target = -1
		s.setState(StateEnteringTargetAccount)
		s.display = Display{
			Status:  "Enter target account",
			Message: "Please enter the target account number above\nYour current balance is : " + journal.FormatBalance(acc.Balance),
		}
	case OperationBalance:
		s.number = 0
		s.display = Display{Message: "Your balance is: " + journal.FormatBalance(acc.Balance)}
	case OperationStatement:
		s.number = 0
		s.display = Display{Status: StatementMessage, Message: s.ledger.Statement(ctx)}
	default:
		s.logger.Warn("Unknown operation, resetting session", "operation", string(op))
		return s.Initialise(ResetMessage)
	}
	return s.display
}

func (s *Session) selectWithdraw(acc account.Account) Display {
	s.number = 0
	msg := "Your current balance is : " + journal.FormatBalance(acc.Balance)

	switch acc.Kind {
	case account.KindOverdraft:
		msg += overdraftLine(acc)
	case account.KindWithdrawalLimited:
		switch left := acc.WithdrawalsLeft(); {
		case left > 1:
			msg += "\nYou have " + strconv.Itoa(left) + " withdrawals left."
		case left == 1:
			msg += "\nYou have 1 withdrawal left."
		default:
			return s.Initialise(NoWithdrawalsMessage)
		}
	}

	s.setState(StateWithdrawing)
	s.display = Display{Status: "Enter withdraw amount", Message: msg}
	return s.display
}

// Enter confirms the pending number for the operation in progress
func (s *Session) Enter(ctx context.Context) Display {
	switch s.state {
	case StateWithdrawing:
		s.withdraw(ctx)
	case StateDepositing:
		s.deposit(ctx)
	case StateEnteringTargetAccount:
		s.target = s.number
		s.number = 0
		s.setState(StateTransferring)
		balance, _ := s.ledger.Balance()
		s.display = Display{
			Status:  "Enter transfer amount",
			Message: "Your current balance is : " + journal.FormatBalance(balance),
		}
	case StateTransferring:
		s.transfer(ctx)
	case StateLoggedOut:
		return s.Logout()
	}
	return s.display
}

func (s *Session) withdraw(ctx context.Context) {
	amount := s.number
	defer func() {
		s.setState(StateLoggedIn)
		s.number = 0
	}()

	if s.ledger.Withdraw(ctx, amount) {
		acc, _ := s.ledger.CurrentAccount()
		msg := "Withdrawn: £" + strconv.FormatInt(amount, 10) + "\nYour new balance is now: " + journal.FormatBalance(acc.Balance)
		if acc.Kind == account.KindOverdraft {
			msg += overdraftLine(acc)
		}
		s.display = Display{Message: msg}
		return
	}

	acc, ok := s.ledger.CurrentAccount()
	if !ok {
		s.display = Display{Message: WithdrawFailedMessage}
		return
	}

	probe := acc
	allowed := probe.Withdraw(amount)

	switch acc.Kind {
	case account.KindOverdraft:
		missing := amount - acc.OverdraftLimit - acc.Balance
		if missing <= 0 {
			s.display = Display{Message: WithdrawFailedMessage}
			return
		}
		s.display = Display{Message: "You do not have sufficient funds. You need an additional: £" + strconv.FormatInt(missing, 10)}
	case account.KindWithdrawalLimited:
		if acc.WithdrawalsLeft() <= 0 {
			s.display = Display{Message: MaxWithdrawalsMessage}
			return
		}
		if s.ledger.Withdraw(ctx, amount) {
			balance, _ := s.ledger.Balance()
			s.display = Display{Message: "Withdrawn: £" + strconv.FormatInt(amount, 10) + "\nYour new balance is now: " + journal.FormatBalance(balance)}
			return
		}
		if allowed {
			s.display = Display{Message: WithdrawFailedMessage}
			return
		}
		s.display = Display{Message: "You do not have sufficient funds, you require another £" + strconv.FormatInt(abs(acc.Balance-amount), 10)}
	default:
		if allowed {
			s.display = Display{Message: WithdrawFailedMessage}
			return
		}
		s.display = Display{Message: "You do not have sufficient funds, you require another: £" + strconv.FormatInt(abs(acc.Balance-amount), 10)}
	}
	s.logger.Info("Withdrawal declined", "amount", amount, "kind", acc.Kind.String())
}

func (s *Session) deposit(ctx context.Context) {
	amount := s.number
	s.number = 0

	if amount <= 0 {
		s.Initialise(DepositInvalidMessage)
		return
	}
	if !s.ledger.Deposit(ctx, amount) {
		s.Initialise(DepositFailedMessage)
		return
	}

	balance, _ := s.ledger.Balance()
	s.setState(StateLoggedIn)
	s.display = Display{
		Message: "Deposit successful\n£" + strconv.FormatInt(amount, 10) +
			" has been deposited to your Current Account\nYour new balance is now: " + journal.FormatBalance(balance),
	}
}

func (s *Session) transfer(ctx context.Context) {
	amount, target := s.number, s.target
	s.number = 0

	acc, ok := s.ledger.CurrentAccount()
	if !ok || !s.ledger.Transfer(ctx, acc.Number, target, amount) {
		s.logger.Info("Transfer failed", "target", target, "amount", amount)
		s.target = -1
		s.Initialise(TransferFailedMessage)
		return
	}

	balance, _ := s.ledger.Balance()
	s.setState(StateLoggedIn)
	s.target = -1
	s.display = Display{
		Message: "Transfer successful\n£" + strconv.FormatInt(amount, 10) +
			" has been transferred to account No." + strconv.FormatInt(target, 10) +
			"\nYour new balance is now: " + journal.FormatBalance(balance),
	}
}

func (s *Session) setState(next State) {
	if s.state == next {
		return
	}
	s.logger.Debug("Session state changed", "from", string(s.state), "to", string(next))
	s.state = next
}

func overdraftLine(acc account.Account) string {
	return "\nYour overdraft limit is: £" + strconv.FormatInt(acc.OverdraftLimit, 10)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
