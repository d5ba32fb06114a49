package atm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NoSecondaryAccount marks single-account notifications.
const NoSecondaryAccount int64 = -1

// TransactionNotification records one attempted operation. It is built once
// per attempt and broadcast before authorization is checked, so listeners
// see failed and unauthorized attempts too.
type TransactionNotification struct {
	ID               uuid.UUID       `json:"id"`
	PrimaryAccount   int64           `json:"primary_account"`
	SecondaryAccount int64           `json:"secondary_account"`
	Operation        Operation       `json:"operation"`
	Amount           decimal.Decimal `json:"amount"`
	At               time.Time       `json:"at"`
}

// NewTransactionNotification builds a notification for an attempt. Pass
// NoSecondaryAccount for single-account operations.
func NewTransactionNotification(primary, secondary int64, op Operation, amount decimal.Decimal) TransactionNotification {
	return TransactionNotification{
		ID:               uuid.New(),
		PrimaryAccount:   primary,
		SecondaryAccount: secondary,
		Operation:        op,
		Amount:           amount,
		At:               time.Now().UTC(),
	}
}

// Message renders the human-readable form used by console listeners.
func (n TransactionNotification) Message() string {
	const header = "<Transaction Notification>"
	switch n.Operation {
	case OpTransfer:
		return fmt.Sprintf("%s %s $%s from account %d to account %d",
			header, n.Operation, n.Amount.StringFixed(2), n.PrimaryAccount, n.SecondaryAccount)
	case OpDeposit:
		return fmt.Sprintf("%s %s $%s into account %d",
			header, n.Operation, n.Amount.StringFixed(2), n.PrimaryAccount)
	case OpWithdraw:
		return fmt.Sprintf("%s %s $%s from account %d",
			header, n.Operation, n.Amount.StringFixed(2), n.PrimaryAccount)
	case OpBalance:
		return fmt.Sprintf("%s %s for account %d", header, n.Operation, n.PrimaryAccount)
	default:
		return fmt.Sprintf("%s %s received (internal error)", header, n.Operation)
	}
}
