package atm

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"github.com/branch-atm-ledger/internal/domain/account"
)

// PasswordResult is the outcome of ChangePassword
type PasswordResult int

const (
	PasswordUpdated PasswordResult = iota
	PasswordIncorrect
	PasswordMismatch
	PasswordSame
	PasswordNotSaved
)

// Message returns the text shown to the customer
func (r PasswordResult) Message() string {
	switch r {
	case PasswordUpdated:
		return "Password changed successfully."
	case PasswordIncorrect:
		return "Current password is incorrect."
	case PasswordMismatch:
		return "New password and confirmed password do not match."
	case PasswordSame:
		return "New password is the same as the current password."
	default:
		return "Password could not be changed. Please try again."
	}
}

// OverdraftResult is the outcome of ChangeOverdraft
type OverdraftResult int

const (
	OverdraftUpdated OverdraftResult = iota
	OverdraftInvalid
	OverdraftBelowBalance
	OverdraftUnavailable
	OverdraftAboveMaximum
	OverdraftNotSaved
)

// Message returns the text shown to the customer. ceiling is the maximum limit in force.
func (r OverdraftResult) Message(ceiling int64) string {
	switch r {
	case OverdraftUpdated:
		return "Overdraft changed successfully."
	case OverdraftInvalid:
		return "Overdraft must be a positive number."
	case OverdraftBelowBalance:
		return "Overdraft must be greater than the current balance."
	case OverdraftUnavailable:
		return "This account does not have an overdraft facility."
	case OverdraftAboveMaximum:
		return "Overdraft cannot be above " + groupThousands(ceiling) + "."
	default:
		return "Overdraft could not be changed. Please try again."
	}
}

var overdraftPattern = regexp.MustCompile(`^[0-9]+$`)

// ChangePassword replaces the session account's secret after checking the current one.
// Checks run in order: current secret, confirmation, reuse.
func (s *Session) ChangePassword(ctx context.Context, current, next, confirm string) PasswordResult {
	if !s.ledger.CheckCredential(current) {
		s.logger.Info("Password change rejected", "reason", "incorrect")
		return PasswordIncorrect
	}
	if next != confirm {
		return PasswordMismatch
	}
	if next == current {
		return PasswordSame
	}

	acc, ok := s.ledger.CurrentAccount()
	if !ok || !s.ledger.UpdatePassword(ctx, acc.Number, next) {
		return PasswordNotSaved
	}

	s.logger.Info("Password changed")
	return PasswordUpdated
}

// ChangeOverdraft sets a new overdraft limit on the session account from typed input
func (s *Session) ChangeOverdraft(ctx context.Context, input string) OverdraftResult {
	if !overdraftPattern.MatchString(input) {
		return OverdraftInvalid
	}

	limit, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return OverdraftAboveMaximum
		}
		return OverdraftInvalid
	}
	if limit > s.ceiling {
		return OverdraftAboveMaximum
	}

	acc, ok := s.ledger.CurrentAccount()
	if !ok {
		return OverdraftUnavailable
	}
	if acc.Balance < 0 && limit <= -acc.Balance {
		return OverdraftBelowBalance
	}
	if acc.Kind != account.KindOverdraft {
		return OverdraftUnavailable
	}
	if !s.ledger.UpdateOverdraftLimit(ctx, acc.Number, limit) {
		return OverdraftNotSaved
	}

	s.logger.Info("Overdraft limit changed", "limit", limit)
	return OverdraftUpdated
}

// OverdraftCeiling returns the maximum limit ChangeOverdraft accepts
func (s *Session) OverdraftCeiling() int64 {
	return s.ceiling
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if n < 0 {
		return digits
	}
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return string(out)
}
