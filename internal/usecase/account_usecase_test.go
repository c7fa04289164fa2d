package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/domain"
	"github.com/finbridge/remit/internal/usecase"
	"github.com/finbridge/remit/internal/usecase/mocks"
)

func TestAccountUseCase_Fund(t *testing.T) {
	accounts := mocks.NewMockAccountRepository()
	users := mocks.NewMockUserRepository()

	users.Put(&domain.User{ID: "u1"})
	accounts.Put(&domain.Account{ID: "a1", UserID: "u1", Currency: "USD", Balance: decimal.NewFromInt(10), IsDefault: true})

	uc := usecase.NewAccountUseCase(accounts, users)

	account, err := uc.Fund(context.Background(), "u1", decimal.NewFromInt(90))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance = %s, want 100", account.Balance)
	}
}

func TestAccountUseCase_Fund_Guards(t *testing.T) {
	accounts := mocks.NewMockAccountRepository()
	users := mocks.NewMockUserRepository()
	users.Put(&domain.User{ID: "u1"})

	uc := usecase.NewAccountUseCase(accounts, users)

	if _, err := uc.Fund(context.Background(), "u1", decimal.Zero); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("zero amount: error = %v, want ErrInvalidAmount", err)
	}

	if _, err := uc.Fund(context.Background(), "missing", decimal.NewFromInt(10)); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("unknown user: error = %v, want ErrUserNotFound", err)
	}

	// u1 has no default account
	if _, err := uc.Fund(context.Background(), "u1", decimal.NewFromInt(10)); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("no account: error = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountUseCase_Balance(t *testing.T) {
	accounts := mocks.NewMockAccountRepository()
	users := mocks.NewMockUserRepository()

	accounts.Put(&domain.Account{ID: "a1", UserID: "u1", AccountNumber: "2000000001", Currency: "USD", IsDefault: true})
	accounts.Put(&domain.Account{ID: "a2", UserID: "u1", AccountNumber: "2000000002", Currency: "NGN"})

	uc := usecase.NewAccountUseCase(accounts, users)

	byNumber, err := uc.Balance(context.Background(), "u1", "2000000002")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byNumber.ID != "a2" {
		t.Errorf("account = %s, want a2", byNumber.ID)
	}

	byDefault, err := uc.Balance(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if byDefault.ID != "a1" {
		t.Errorf("account = %s, want a1", byDefault.ID)
	}
}
