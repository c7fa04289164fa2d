package domain

import "time"

// User is a registered party that owns wallet accounts. Registration and
// authentication live outside this service; the engine only reads users.
type User struct {
	CreatedAt   time.Time
	PhoneNumber *string
	ID          string
	Email       string
	FirstName   string
	LastName    string
	Accounts    []*Account
}

// FullName returns the display name used in ledger entry descriptions.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// DefaultAccount returns the user's default account, or nil.
func (u *User) DefaultAccount() *Account {
	for _, a := range u.Accounts {
		if a.IsDefault {
			return a
		}
	}

	return nil
}

// AccountInCurrency returns the user's account denominated in currency, or nil.
func (u *User) AccountInCurrency(currency string) *Account {
	for _, a := range u.Accounts {
		if a.Currency == currency {
			return a
		}
	}

	return nil
}
