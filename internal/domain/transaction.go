package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a remittance transaction.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "PENDING"
	StatusProcessing TransactionStatus = "PROCESSING"
	StatusCompleted  TransactionStatus = "COMPLETED"
	StatusFailed     TransactionStatus = "FAILED"
	StatusCancelled  TransactionStatus = "CANCELLED"
)

// Terminal reports whether no further transition is permitted out of s.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}

	return false
}

// Transaction is a cross-currency transfer record. The amount, fee and
// exchange rate are snapshotted at creation and never recomputed; the row is
// the audit trail and is never deleted.
type Transaction struct {
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PaymentReference *string
	FailureReason    *string
	ID               string
	SenderID         string
	ReceiverID       string
	SourceCurrency   string
	TargetCurrency   string
	PaymentProvider  string
	Status           TransactionStatus
	SourceAmount     decimal.Decimal
	TargetAmount     decimal.Decimal
	ExchangeRate     decimal.Decimal
	Fee              decimal.Decimal
}

// Expired reports whether the transaction has sat unpaid longer than window.
func (t *Transaction) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(t.CreatedAt) > window
}

// Validate validates the transaction record before persistence.
func (t *Transaction) Validate() error {
	if t.SenderID == t.ReceiverID {
		return ErrSameParty
	}

	if t.SourceAmount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// TransactionWithParties is a transaction joined with both parties and their
// accounts, as the settlement path needs them.
type TransactionWithParties struct {
	Transaction *Transaction
	Sender      *User
	Receiver    *User
}
