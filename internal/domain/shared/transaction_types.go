package shared

import "fmt"

// TransactionType names the kind of a completed transaction in the journal
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeWithdraw TransactionType = "withdraw"
	TransactionTypeTransfer TransactionType = "transfer"
)

// ParseTransactionType maps a stored name to a TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(s); t {
	case TransactionTypeDeposit, TransactionTypeWithdraw, TransactionTypeTransfer:
		return t, nil
	default:
		return "", fmt.Errorf("invalid transaction type %q", s)
	}
}
