package journal

import (
	"time"

	"github.com/branch-atm-ledger/internal/domain/shared"
	"github.com/branch-atm-ledger/internal/platform/clock"
)

// Entry is one immutable journal record of a completed transaction.
// Date and Time are empty for rows written in the legacy four-column format.
type Entry struct {
	AccountNumber int64                  `json:"account_number" bson:"account_number"`
	Type          shared.TransactionType `json:"type" bson:"type"`
	Amount        int64                  `json:"amount" bson:"amount"` // Stored in minor units
	NewBalance    int64                  `json:"new_balance" bson:"new_balance"`
	Date          string                 `json:"date,omitempty" bson:"date,omitempty"`
	Time          string                 `json:"time,omitempty" bson:"time,omitempty"`
	RecordedAt    time.Time              `json:"-" bson:"recorded_at"`
}

// NewEntry builds an entry recorded at the given instant
func NewEntry(accountNumber int64, txType shared.TransactionType, amount, newBalance int64, at time.Time) *Entry {
	date, hhmm := clock.Format(at)
	return &Entry{
		AccountNumber: accountNumber,
		Type:          txType,
		Amount:        amount,
		NewBalance:    newBalance,
		Date:          date,
		Time:          hhmm,
		RecordedAt:    at.UTC(),
	}
}
