package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType marks the sign of a ledger entry.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// LedgerEntry is one side of a settled transfer. Entries are written in
// DEBIT/CREDIT pairs in the same database transaction and are immutable.
type LedgerEntry struct {
	CreatedAt   time.Time
	ID          string
	AccountID   string
	Currency    string
	Reference   string
	Description string
	Type        EntryType
	Amount      decimal.Decimal
}
