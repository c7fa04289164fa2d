package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/domain"
)

// AccountUseCase handles wallet funding and balance lookups. Funding is the
// only balance mutation allowed outside the settlement unit; it never runs
// for an account involved in an in-flight settlement row.
type AccountUseCase struct {
	accounts AccountRepository
	users    UserRepository
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accounts AccountRepository, users UserRepository) *AccountUseCase {
	return &AccountUseCase{
		accounts: accounts,
		users:    users,
	}
}

// Fund credits a user's default account by amount.
func (uc *AccountUseCase) Fund(ctx context.Context, userID string, amount decimal.Decimal) (*domain.Account, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	account, err := uc.accounts.FindDefaultByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return uc.accounts.AddToBalance(ctx, account.ID, amount)
}

// Balance returns the wallet identified by account number, or the user's
// default account when no number is given.
func (uc *AccountUseCase) Balance(ctx context.Context, userID, accountNumber string) (*domain.Account, error) {
	if accountNumber != "" {
		return uc.accounts.GetByAccountNumber(ctx, accountNumber)
	}

	return uc.accounts.FindDefaultByUser(ctx, userID)
}
