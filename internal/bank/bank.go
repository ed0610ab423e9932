// Package bank implements the account registry of a single branch: login sessions,
// deposits, withdrawals and transfers, each persisted to the Ledger Store and recorded
// in the transaction journal.
package bank

import (
	"context"
	"log/slog"
	"sync"

	"github.com/branch-atm-ledger/internal/domain/account"
	"github.com/branch-atm-ledger/internal/domain/journal"
	"github.com/branch-atm-ledger/internal/domain/shared"
	"github.com/branch-atm-ledger/internal/platform/clock"
	"github.com/branch-atm-ledger/internal/platform/security"
)

// DefaultMaxAccounts is the registry capacity used when Options leaves it unset
const DefaultMaxAccounts = 10

// NotLoggedInStatement is returned by Statement when no session is active
const NotLoggedInStatement = "ERROR: Not logged in"

// Options tunes a Bank
type Options struct {
	MaxAccounts int
}

// Bank owns the account set and the single current session.
// Every public method holds the bank lock for its whole read-modify-persist sequence.
type Bank struct {
	mu sync.Mutex

	store    account.Store
	journal  journal.Repository
	verifier security.CredentialVerifier
	clock    clock.Clock
	logger   *slog.Logger

	maxAccounts int
	accounts    []*account.Account
	current     *account.Account
}

// NewBank creates an empty bank. Call Load to populate it from the store.
func NewBank(
	logger *slog.Logger,
	store account.Store,
	journalRepo journal.Repository,
	verifier security.CredentialVerifier,
	clk clock.Clock,
	opts Options,
) *Bank {
	if opts.MaxAccounts <= 0 {
		opts.MaxAccounts = DefaultMaxAccounts
	}
	return &Bank{
		store:       store,
		journal:     journalRepo,
		verifier:    verifier,
		clock:       clk,
		logger:      logger,
		maxAccounts: opts.MaxAccounts,
	}
}

// Load replaces the in-memory account set with the store's contents.
// Duplicate numbers and rows past the capacity are skipped and logged.
func (b *Bank) Load(ctx context.Context) error {
	loaded, err := b.store.Load(ctx)
	if err != nil {
		b.logger.Error("Failed to load accounts", "error", err)
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = nil
	b.accounts = b.accounts[:0]
	for _, acc := range loaded {
		if b.find(acc.Number) != nil {
			b.logger.Warn("Skipping duplicate account number", "account_number", acc.Number)
			continue
		}
		if len(b.accounts) >= b.maxAccounts {
			b.logger.Warn("Skipping account, bank is full", "account_number", acc.Number, "max_accounts", b.maxAccounts)
			continue
		}
		b.accounts = append(b.accounts, acc)
	}

	b.logger.Info("Accounts loaded", "count", len(b.accounts))
	return nil
}

// AddAccount appends acc and persists the ledger. It fails when the bank is full
// or the number is already taken.
func (b *Bank) AddAccount(ctx context.Context, acc *account.Account) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.accounts) >= b.maxAccounts {
		b.logger.Warn("Cannot add account, bank is full", "account_number", acc.Number, "max_accounts", b.maxAccounts)
		return false
	}
	if b.find(acc.Number) != nil {
		b.logger.Warn("Cannot add account, number already in use", "account_number", acc.Number)
		return false
	}

	b.accounts = append(b.accounts, acc)
	if err := b.store.Save(ctx, b.accounts); err != nil {
		b.accounts = b.accounts[:len(b.accounts)-1]
		b.logger.Error("Rolled back account creation", "account_number", acc.Number, "error", err)
		return false
	}

	b.logger.Info("Account added", "account_number", acc.Number, "kind", acc.Kind.String(), "balance", acc.Balance)
	return true
}

// OpenAccount hashes secret and adds a new account of the given kind
func (b *Bank) OpenAccount(ctx context.Context, number int64, secret string, balance int64, kind account.Kind, overdraftLimit int64) bool {
	digest, err := b.verifier.Hash(secret)
	if err != nil {
		b.logger.Error("Failed to hash credential", "account_number", number, "error", err)
		return false
	}
	acc, err := account.New(number, digest, balance, kind, overdraftLimit)
	if err != nil {
		b.logger.Warn("Invalid account", "account_number", number, "error", err)
		return false
	}
	return b.AddAccount(ctx, acc)
}

// Login ends any current session, then checks secret against the first account
// with the given number.
func (b *Bank) Login(number int64, secret string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.logout()

	acc := b.find(number)
	if acc == nil {
		b.logger.Info("Login failed, unknown account", "account_number", number)
		return false
	}
	if !b.verifier.Verify(acc.CredentialDigest, secret) {
		b.logger.Info("Login failed, wrong credential", "account_number", number)
		return false
	}

	b.current = acc
	b.logger.Info("Logged in", "account_number", number)
	return true
}

// Logout clears the current session if there is one
func (b *Bank) Logout() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logout()
}

func (b *Bank) logout() {
	if b.current != nil {
		b.logger.Info("Logged out", "account_number", b.current.Number)
		b.current = nil
	}
}

// LoggedIn reports whether a session is active
func (b *Bank) LoggedIn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current != nil
}

// CurrentAccount returns a copy of the session account
func (b *Bank) CurrentAccount() (account.Account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return account.Account{}, false
	}
	return b.current.Snapshot(), true
}

// Balance returns the session account's balance
func (b *Bank) Balance() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return 0, false
	}
	return b.current.GetBalance(), true
}

// Accounts returns copies of every account in load order
func (b *Bank) Accounts() []account.Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]account.Account, len(b.accounts))
	for i, acc := range b.accounts {
		out[i] = acc.Snapshot()
	}
	return out
}

// CheckCredential verifies secret against the session account's digest
func (b *Bank) CheckCredential(secret string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return false
	}
	return b.verifier.Verify(b.current.CredentialDigest, secret)
}

// Deposit credits the session account
func (b *Bank) Deposit(ctx context.Context, amount int64) bool {
	return b.apply(ctx, shared.TransactionTypeDeposit, amount, (*account.Account).Deposit)
}

// Withdraw debits the session account according to its kind
func (b *Bank) Withdraw(ctx context.Context, amount int64) bool {
	return b.apply(ctx, shared.TransactionTypeWithdraw, amount, (*account.Account).Withdraw)
}

func (b *Bank) apply(ctx context.Context, txType shared.TransactionType, amount int64, op func(*account.Account, int64) bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc := b.current
	if acc == nil {
		b.logger.Warn("Rejected transaction, not logged in", "type", string(txType))
		return false
	}

	before := acc.Snapshot()
	if !op(acc, amount) {
		b.logger.Info("Transaction declined", "type", string(txType), "account_number", acc.Number, "amount", amount)
		return false
	}

	if !b.persist(ctx, string(txType), rollback{acc: acc, state: before}) {
		return false
	}
	b.record(ctx, acc, txType, amount)
	return true
}

// Transfer moves amount from source to target in one persisted step.
// Both accounts are located in a single pass. Neither is touched unless the target
// can take the amount and the source withdrawal succeeds.
func (b *Bank) Transfer(ctx context.Context, sourceNumber, targetNumber, amount int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		b.logger.Warn("Rejected transfer, not logged in")
		return false
	}

	var source, target *account.Account
	for _, acc := range b.accounts {
		if acc.Number == sourceNumber {
			source = acc
		} else if acc.Number == targetNumber {
			target = acc
		}
		if source != nil && target != nil {
			break
		}
	}
	if source == nil || target == nil {
		b.logger.Info("Transfer failed, account not found", "source", sourceNumber, "target", targetNumber)
		return false
	}

	if !target.CanDeposit(amount) {
		b.logger.Info("Transfer declined, target cannot accept amount", "source", sourceNumber, "target", targetNumber, "amount", amount)
		return false
	}

	sourceBefore, targetBefore := source.Snapshot(), target.Snapshot()
	if !source.Withdraw(amount) {
		b.logger.Info("Transfer declined", "source", sourceNumber, "target", targetNumber, "amount", amount)
		return false
	}
	target.Deposit(amount)

	if !b.persist(ctx, "transfer",
		rollback{acc: source, state: sourceBefore},
		rollback{acc: target, state: targetBefore},
	) {
		return false
	}

	b.record(ctx, source, shared.TransactionTypeTransfer, amount)
	b.record(ctx, target, shared.TransactionTypeTransfer, amount)
	return true
}

// UpdatePassword replaces the digest of any account, session or not
func (b *Bank) UpdatePassword(ctx context.Context, number int64, newSecret string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc := b.find(number)
	if acc == nil {
		b.logger.Info("Password update failed, unknown account", "account_number", number)
		return false
	}

	digest, err := b.verifier.Hash(newSecret)
	if err != nil {
		b.logger.Error("Failed to hash credential", "account_number", number, "error", err)
		return false
	}

	before := acc.Snapshot()
	acc.CredentialDigest = digest
	if !b.persist(ctx, "update_password", rollback{acc: acc, state: before}) {
		return false
	}

	b.logger.Info("Password updated", "account_number", number)
	return true
}

// UpdateOverdraftLimit sets the limit of an Overdraft account and persists it
func (b *Bank) UpdateOverdraftLimit(ctx context.Context, number, limit int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc := b.find(number)
	if acc == nil {
		return false
	}

	before := acc.Snapshot()
	if !acc.SetOverdraftLimit(limit) {
		return false
	}
	if !b.persist(ctx, "update_overdraft", rollback{acc: acc, state: before}) {
		return false
	}

	b.logger.Info("Overdraft limit updated", "account_number", number, "limit", limit)
	return true
}

// Statement renders the session account's most recent journal entries
func (b *Bank) Statement(ctx context.Context) string {
	b.mu.Lock()
	number := int64(0)
	if b.current != nil {
		number = b.current.Number
	}
	b.mu.Unlock()

	if number == 0 {
		b.logger.Warn("Statement requested without a session")
		return NotLoggedInStatement
	}

	entries, err := b.journal.Recent(ctx, number, journal.StatementSize)
	if err != nil {
		b.logger.Error("Failed to read journal", "account_number", number, "error", err)
	}
	return journal.RenderStatement(entries)
}

type rollback struct {
	acc   *account.Account
	state account.Account
}

// persist saves the full account set. On failure the given accounts are restored so
// memory never runs ahead of storage.
func (b *Bank) persist(ctx context.Context, op string, undo ...rollback) bool {
	if err := b.store.Save(ctx, b.accounts); err != nil {
		for _, u := range undo {
			u.acc.Restore(u.state)
		}
		b.logger.Error("Save failed, in-memory change rolled back", "operation", op, "error", err)
		return false
	}
	return true
}

// record appends one journal entry. A journal failure does not undo the saved change.
func (b *Bank) record(ctx context.Context, acc *account.Account, txType shared.TransactionType, amount int64) {
	entry := journal.NewEntry(acc.Number, txType, amount, acc.GetBalance(), b.clock.Now())
	if err := b.journal.Append(ctx, entry); err != nil {
		b.logger.Error("Failed to journal transaction",
			"account_number", acc.Number,
			"type", string(txType),
			"amount", amount,
			"error", err)
		return
	}
	b.logger.Info("Transaction recorded",
		"account_number", acc.Number,
		"type", string(txType),
		"amount", amount,
		"new_balance", acc.GetBalance())
}

func (b *Bank) find(number int64) *account.Account {
	for _, acc := range b.accounts {
		if acc.Number == number {
			return acc
		}
	}
	return nil
}
