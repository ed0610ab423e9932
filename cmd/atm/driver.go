package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/branch-atm-ledger/internal/atm"
	"github.com/branch-atm-ledger/internal/bank"
	"github.com/branch-atm-ledger/internal/domain/account"
)

// Screen texts printed by the driver
const (
	AccountPrompt      = "Account number:"
	PasswordPrompt     = "Password:"
	LoginFailedMessage = "Invalid account number or password."
	LoggedOutMessage   = "You have been logged out."
	UsageMessage       = "Usage: PASSWORD <current> <new> <confirm> | OVERDRAFT <limit> | QUIT"
)

// Driver reads one keypad token per line and prints the ATM screen after each.
// Besides the session tokens it accepts PASSWORD, OVERDRAFT and QUIT.
type Driver struct {
	in      *bufio.Scanner
	out     io.Writer
	bank    *bank.Bank
	logger  *slog.Logger
	ceiling int64
	session *atm.Session
}

// NewDriver creates a driver over the given streams
func NewDriver(in io.Reader, out io.Writer, b *bank.Bank, logger *slog.Logger, overdraftCeiling int64) *Driver {
	return &Driver{
		in:      bufio.NewScanner(in),
		out:     out,
		bank:    b,
		logger:  logger,
		ceiling: overdraftCeiling,
	}
}

// Run serves until input ends, QUIT is read or ctx is cancelled
func (d *Driver) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if d.session == nil {
			ok, err := d.login()
			if err != nil || !ok {
				return err
			}
			continue
		}

		line, ok := d.next()
		if !ok {
			d.session.Logout()
			return d.in.Err()
		}
		if d.handle(ctx, line) {
			return nil
		}
	}
	return nil
}

// login prompts for credentials. It reports false once input is exhausted.
func (d *Driver) login() (bool, error) {
	fmt.Fprintln(d.out, AccountPrompt)
	numberText, ok := d.next()
	if !ok {
		return false, d.in.Err()
	}
	fmt.Fprintln(d.out, PasswordPrompt)
	secret, ok := d.next()
	if !ok {
		return false, d.in.Err()
	}

	number, err := strconv.ParseInt(numberText, 10, 64)
	if err != nil || !d.bank.Login(number, secret) {
		fmt.Fprintln(d.out, LoginFailedMessage)
		return true, nil
	}

	d.session = atm.NewSession(d.logger, d.bank, atm.Options{MaxOverdraftLimit: d.ceiling})
	d.render(d.session.Display())
	return true, nil
}

// handle processes one line of a logged-in session and reports whether to stop
func (d *Driver) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToUpper(fields[0]) {
	case "QUIT":
		d.session.Logout()
		d.session = nil
		return true
	case "PASSWORD":
		if len(fields) != 4 {
			fmt.Fprintln(d.out, UsageMessage)
			return false
		}
		fmt.Fprintln(d.out, d.session.ChangePassword(ctx, fields[1], fields[2], fields[3]).Message())
		return false
	case "OVERDRAFT":
		if len(fields) != 2 {
			fmt.Fprintln(d.out, UsageMessage)
			return false
		}
		fmt.Fprintln(d.out, d.session.ChangeOverdraft(ctx, fields[1]).Message(d.session.OverdraftCeiling()))
		return false
	}

	screen := d.session.Process(ctx, line)
	if d.session.State() == atm.StateLoggedOut {
		fmt.Fprintln(d.out, LoggedOutMessage)
		d.session = nil
		return false
	}
	d.render(screen)
	return false
}

func (d *Driver) render(screen atm.Display) {
	if screen.Status != "" {
		fmt.Fprintln(d.out, "["+screen.Status+"]")
	}
	if screen.Message != "" {
		fmt.Fprintln(d.out, screen.Message)
	}
}

func (d *Driver) next() (string, bool) {
	if !d.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(d.in.Text()), true
}

// seed describes an account opened from the command line
type seed struct {
	number    int64
	secret    string
	balance   int64
	kind      account.Kind
	overdraft int64
}

// seedList implements flag.Value for repeated -open flags
type seedList []seed

func (l *seedList) String() string {
	parts := make([]string, 0, len(*l))
	for _, s := range *l {
		parts = append(parts, strconv.FormatInt(s.number, 10))
	}
	return strings.Join(parts, ",")
}

func (l *seedList) Set(value string) error {
	s, err := parseSeed(value)
	if err != nil {
		return err
	}
	*l = append(*l, s)
	return nil
}

func parseSeed(value string) (seed, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 4 && len(parts) != 5 {
		return seed{}, fmt.Errorf("invalid account %q: want number:secret:balance:kind[:overdraft]", value)
	}

	number, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return seed{}, fmt.Errorf("invalid account number %q: %w", parts[0], err)
	}
	balance, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return seed{}, fmt.Errorf("invalid balance %q: %w", parts[2], err)
	}
	kind, err := account.ParseKind(parts[3])
	if err != nil {
		return seed{}, err
	}

	var overdraft int64
	if len(parts) == 5 {
		overdraft, err = strconv.ParseInt(parts[4], 10, 64)
		if err != nil {
			return seed{}, fmt.Errorf("invalid overdraft limit %q: %w", parts[4], err)
		}
	}

	return seed{number: number, secret: parts[1], balance: balance, kind: kind, overdraft: overdraft}, nil
}
