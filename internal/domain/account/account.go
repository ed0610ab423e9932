package account

import (
	"errors"
	"fmt"
	"math"
)

// MaxWithdrawalsPerDay caps successful withdrawals on a WithdrawalLimited account
const MaxWithdrawalsPerDay = 3

// Common errors
var (
	ErrInvalidNumber         = errors.New("account number must be positive")
	ErrEmptyCredential       = errors.New("credential digest cannot be empty")
	ErrNegativeBalance       = errors.New("balance cannot be negative for this account kind")
	ErrNegativeOverdraft     = errors.New("overdraft limit cannot be negative")
	ErrBalanceBelowOverdraft = errors.New("balance is below the overdraft limit")
	ErrUnknownKind           = errors.New("unknown account kind")
)

// Kind selects the withdrawal policy of an account
type Kind string

const (
	KindStandard          Kind = "normal"
	KindOverdraft         Kind = "overdraft"
	KindWithdrawalLimited Kind = "limited"
)

// ParseKind maps a stored kind name to a Kind
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindStandard, KindOverdraft, KindWithdrawalLimited:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// String returns the stored name of the kind
func (k Kind) String() string {
	return string(k)
}

// Account represents one holder's balance and withdrawal policy.
// Kind is fixed at creation; OverdraftLimit is only meaningful for KindOverdraft and
// WithdrawalsToday only for KindWithdrawalLimited.
type Account struct {
	Number           int64
	CredentialDigest string
	Balance          int64 // Stored in minor units
	Kind             Kind
	OverdraftLimit   int64
	WithdrawalsToday int
}

// New validates the invariants for the given kind and returns the account
func New(number int64, digest string, balance int64, kind Kind, overdraftLimit int64) (*Account, error) {
	if number <= 0 {
		return nil, ErrInvalidNumber
	}
	if digest == "" {
		return nil, ErrEmptyCredential
	}

	switch kind {
	case KindOverdraft:
		if overdraftLimit < 0 {
			return nil, ErrNegativeOverdraft
		}
		if balance < -overdraftLimit {
			return nil, ErrBalanceBelowOverdraft
		}
	case KindStandard, KindWithdrawalLimited:
		if balance < 0 {
			return nil, ErrNegativeBalance
		}
		overdraftLimit = 0
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}

	return &Account{
		Number:           number,
		CredentialDigest: digest,
		Balance:          balance,
		Kind:             kind,
		OverdraftLimit:   overdraftLimit,
	}, nil
}

// NewStandard creates a Standard account
func NewStandard(number int64, digest string, balance int64) (*Account, error) {
	return New(number, digest, balance, KindStandard, 0)
}

// NewOverdraft creates an Overdraft-enabled account
func NewOverdraft(number int64, digest string, balance, overdraftLimit int64) (*Account, error) {
	return New(number, digest, balance, KindOverdraft, overdraftLimit)
}

// NewWithdrawalLimited creates a WithdrawalLimited account with no withdrawals used
func NewWithdrawalLimited(number int64, digest string, balance int64) (*Account, error) {
	return New(number, digest, balance, KindWithdrawalLimited, 0)
}

// Deposit adds amount to the balance. Negative amounts and amounts that would
// overflow the balance fail without mutation.
func (a *Account) Deposit(amount int64) bool {
	if !a.CanDeposit(amount) {
		return false
	}

	a.Balance += amount
	return true
}

// CanDeposit reports whether Deposit would accept amount
func (a *Account) CanDeposit(amount int64) bool {
	if amount < 0 {
		return false
	}
	return a.Balance <= 0 || amount <= math.MaxInt64-a.Balance
}

// Withdraw applies the withdrawal policy of the account kind
func (a *Account) Withdraw(amount int64) bool {
	if amount < 0 {
		return false
	}

	switch a.Kind {
	case KindOverdraft:
		if amount-a.OverdraftLimit > a.Balance {
			return false
		}
	case KindWithdrawalLimited:
		if a.WithdrawalsToday >= MaxWithdrawalsPerDay || amount > a.Balance {
			return false
		}
		a.WithdrawalsToday++
	default:
		if amount > a.Balance {
			return false
		}
	}

	a.Balance -= amount
	return true
}

// GetBalance returns the current balance
func (a *Account) GetBalance() int64 {
	return a.Balance
}

// WithdrawalsLeft returns the remaining daily withdrawals. Only WithdrawalLimited
// accounts are capped; other kinds report -1.
func (a *Account) WithdrawalsLeft() int {
	if a.Kind != KindWithdrawalLimited {
		return -1
	}
	return MaxWithdrawalsPerDay - a.WithdrawalsToday
}

// SetOverdraftLimit replaces the overdraft limit of an Overdraft account.
// It reports false for other kinds and for negative limits.
func (a *Account) SetOverdraftLimit(limit int64) bool {
	if a.Kind != KindOverdraft || limit < 0 {
		return false
	}
	a.OverdraftLimit = limit
	return true
}

// Snapshot returns a copy of the account's mutable state
func (a *Account) Snapshot() Account {
	return *a
}

// Restore puts back state taken with Snapshot
func (a *Account) Restore(s Account) {
	*a = s
}
