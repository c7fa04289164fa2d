package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a wallet account holding a balance in a single currency.
type Account struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ExternalID    *string
	ID            string
	UserID        string
	AccountNumber string
	Currency      string
	Provider      string
	Balance       decimal.Decimal
	IsDefault     bool
}

// CanCover checks if the account balance covers amount.
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// ApplyDebit returns the new balance after debiting amount.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the new balance after crediting amount.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
