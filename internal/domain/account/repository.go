package account

import (
	"context"
	"strconv"
)

// Store is the durable Ledger Store holding the full account table.
// Load returns accounts in stored order, skipping rows that cannot be parsed.
// Save replaces the whole table; implementations must never expose a partial write.
type Store interface {
	Load(ctx context.Context) ([]*Account, error)
	Save(ctx context.Context, accounts []*Account) error
}

// ErrMalformedRow indicates a stored row that could not be turned into an account
type ErrMalformedRow struct {
	Line   int
	Reason string
}

func (e ErrMalformedRow) Error() string {
	return "malformed account row " + strconv.Itoa(e.Line) + ": " + e.Reason
}

// Is implements the errors.Is interface for ErrMalformedRow
func (e ErrMalformedRow) Is(target error) bool {
	t, ok := target.(ErrMalformedRow)
	if !ok {
		return false
	}
	// A zero Line matches any malformed row
	if t.Line == 0 {
		return true
	}
	return e.Line == t.Line
}
