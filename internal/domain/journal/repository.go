package journal

import (
	"context"
)

// StatementSize is the number of most recent entries shown on a statement
const StatementSize = 5

// Repository is the append-only transaction journal
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	// Recent returns up to limit of the account's most recent entries, oldest first.
	Recent(ctx context.Context, accountNumber int64, limit int) ([]*Entry, error)
}
