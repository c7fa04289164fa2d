package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/domain"
	"github.com/finbridge/remit/internal/infrastructure/metrics"
	"github.com/finbridge/remit/internal/usecase"
	"github.com/finbridge/remit/internal/usecase/mocks"
)

type transferFixture struct {
	accounts     *mocks.MockAccountRepository
	users        *mocks.MockUserRepository
	transactions *mocks.MockTransactionRepository
	gateway      *mocks.MockPaymentGateway
	queue        *mocks.MockQueue
	metrics      *metrics.Metrics
	uc           *usecase.TransferUseCase
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()

	f := &transferFixture{
		accounts:     mocks.NewMockAccountRepository(),
		users:        mocks.NewMockUserRepository(),
		transactions: mocks.NewMockTransactionRepository(),
		gateway:      mocks.NewMockPaymentGateway(),
		queue:        mocks.NewMockQueue(),
		metrics:      metrics.NewWith(prometheus.NewRegistry()),
	}

	quoter := usecase.NewQuoter(fixedRate("1500"), usecase.DefaultFeePolicy(), usecase.DefaultMinimumAmounts())

	f.uc = usecase.NewTransferUseCase(
		f.accounts,
		f.users,
		f.transactions,
		quoter,
		map[string]usecase.PaymentGateway{"paystack": f.gateway},
		f.queue,
		mocks.NewMockIDGenerator(),
		f.metrics,
		zerolog.Nop(),
		0,
	)

	return f
}

func (f *transferFixture) seedParties() {
	senderAccount := &domain.Account{
		ID: "acc-sender", UserID: "u-sender", AccountNumber: "1000000001",
		Currency: "USD", Provider: "paystack",
		Balance: decimal.NewFromInt(500), IsDefault: true,
	}
	receiverAccount := &domain.Account{
		ID: "acc-receiver", UserID: "u-receiver", AccountNumber: "1000000002",
		Currency: "NGN", Provider: "paystack",
		Balance: decimal.NewFromInt(0), IsDefault: true,
	}

	f.accounts.Put(senderAccount)
	f.accounts.Put(receiverAccount)
	f.users.Put(&domain.User{
		ID: "u-sender", Email: "sender@example.com", FirstName: "Ada", LastName: "Obi",
		Accounts: []*domain.Account{senderAccount},
	})
	f.users.Put(&domain.User{
		ID: "u-receiver", Email: "receiver@example.com", FirstName: "Bola", LastName: "Eze",
		Accounts: []*domain.Account{receiverAccount},
	})
}

func validInput() usecase.InitiateInput {
	return usecase.InitiateInput{
		SenderID:       "u-sender",
		ReceiverID:     "u-receiver",
		SourceCurrency: "USD",
		TargetCurrency: "NGN",
		Amount:         decimal.NewFromInt(100),
	}
}

func TestTransferUseCase_Initiate(t *testing.T) {
	f := newTransferFixture(t)
	f.seedParties()

	result, err := f.uc.Initiate(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	txn := result.Transaction
	if txn.Status != domain.StatusPending {
		t.Errorf("status = %s, want PENDING", txn.Status)
	}

	if !txn.Fee.Equal(decimal.NewFromInt(3)) {
		t.Errorf("fee = %s, want 3", txn.Fee)
	}

	if !txn.TargetAmount.Equal(decimal.NewFromInt(145500)) {
		t.Errorf("target amount = %s, want 145500", txn.TargetAmount)
	}

	if txn.PaymentReference == nil {
		t.Fatal("expected payment reference to be set")
	}

	if result.AuthorizationURL == "" {
		t.Error("expected authorization URL")
	}

	// One immediate process job and one delayed auto-cancel job.
	if jobs := f.queue.ByKind(usecase.JobProcessTransaction); len(jobs) != 1 {
		t.Errorf("process jobs = %d, want 1", len(jobs))
	}

	cancelJobs := f.queue.ByKind(usecase.JobAutoCancel)
	if len(cancelJobs) != 1 {
		t.Fatalf("auto-cancel jobs = %d, want 1", len(cancelJobs))
	}

	if cancelJobs[0].Opts.Delay != usecase.DefaultExpiryWindow {
		t.Errorf("auto-cancel delay = %s, want %s", cancelJobs[0].Opts.Delay, usecase.DefaultExpiryWindow)
	}
}

func TestTransferUseCase_Initiate_ReceiverByAccountNumber(t *testing.T) {
	f := newTransferFixture(t)
	f.seedParties()

	input := validInput()
	input.ReceiverID = ""
	input.ReceiverAccountNumber = "1000000002"

	result, err := f.uc.Initiate(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Transaction.ReceiverID != "u-receiver" {
		t.Errorf("receiver = %s, want u-receiver", result.Transaction.ReceiverID)
	}
}

func TestTransferUseCase_Initiate_Guards(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *transferFixture, input *usecase.InitiateInput)
		wantErr error
	}{
		{
			name: "zero amount",
			mutate: func(f *transferFixture, input *usecase.InitiateInput) {
				input.Amount = decimal.Zero
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "unknown sender",
			mutate: func(f *transferFixture, input *usecase.InitiateInput) {
				input.SenderID = "u-ghost"
			},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name: "sender currency mismatch",
			mutate: func(f *transferFixture, input *usecase.InitiateInput) {
				input.SourceCurrency = "EUR"
			},
			wantErr: domain.ErrCurrencyMismatch,
		},
		{
			name: "self transfer",
			mutate: func(f *transferFixture, input *usecase.InitiateInput) {
				input.ReceiverID = "u-sender"
			},
			wantErr: domain.ErrSameParty,
		},
		{
			name: "insufficient funds",
			mutate: func(f *transferFixture, input *usecase.InitiateInput) {
				input.Amount = decimal.NewFromInt(10000)
			},
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name: "unknown receiver account number",
			mutate: func(f *transferFixture, input *usecase.InitiateInput) {
				input.ReceiverID = ""
				input.ReceiverAccountNumber = "9999999999"
			},
			wantErr: domain.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransferFixture(t)
			f.seedParties()

			input := validInput()
			tt.mutate(f, &input)

			_, err := f.uc.Initiate(context.Background(), input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}

			// A guard failure must leave nothing behind.
			if len(f.transactions.ListAll()) != 0 {
				t.Error("expected no transaction to be persisted")
			}

			if len(f.queue.Jobs) != 0 {
				t.Error("expected no jobs to be enqueued")
			}
		})
	}
}

func TestTransferUseCase_Initiate_UnsupportedProvider(t *testing.T) {
	f := newTransferFixture(t)
	f.seedParties()

	acc, _ := f.accounts.GetByID(context.Background(), "acc-sender")
	acc.Provider = "flutterwave"

	_, err := f.uc.Initiate(context.Background(), validInput())
	if !errors.Is(err, domain.ErrUnsupportedProvider) {
		t.Errorf("error = %v, want ErrUnsupportedProvider", err)
	}
}

func TestTransferUseCase_Initiate_GatewayFailureLeavesPending(t *testing.T) {
	f := newTransferFixture(t)
	f.seedParties()

	f.gateway.InitiatePaymentFunc = func(ctx context.Context, input usecase.InitiatePaymentInput) (*usecase.PaymentInitiation, error) {
		return nil, errors.New("gateway down")
	}

	_, err := f.uc.Initiate(context.Background(), validInput())
	if err == nil {
		t.Fatal("expected error")
	}

	// The PENDING row stays for the auto-cancel path to reap.
	all := f.transactions.ListAll()
	if len(all) != 1 {
		t.Fatalf("transactions = %d, want 1", len(all))
	}

	if all[0].Status != domain.StatusPending {
		t.Errorf("status = %s, want PENDING", all[0].Status)
	}

	if jobs := f.queue.ByKind(usecase.JobAutoCancel); len(jobs) != 1 {
		t.Errorf("auto-cancel jobs = %d, want 1", len(jobs))
	}
}

func TestTransferUseCase_Initiate_RecordsMetrics(t *testing.T) {
	f := newTransferFixture(t)
	f.seedParties()

	if _, err := f.uc.Initiate(context.Background(), validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(f.metrics.TransactionsInitiated); got != 1 {
		t.Errorf("transactions initiated = %v, want 1", got)
	}

	if got := testutil.ToFloat64(f.metrics.GatewayRequests.WithLabelValues("paystack", "ok")); got != 1 {
		t.Errorf("gateway ok requests = %v, want 1", got)
	}

	f.gateway.InitiatePaymentFunc = func(ctx context.Context, input usecase.InitiatePaymentInput) (*usecase.PaymentInitiation, error) {
		return nil, errors.New("gateway down")
	}

	if _, err := f.uc.Initiate(context.Background(), validInput()); err == nil {
		t.Fatal("expected error")
	}

	if got := testutil.ToFloat64(f.metrics.GatewayRequests.WithLabelValues("paystack", "error")); got != 1 {
		t.Errorf("gateway error requests = %v, want 1", got)
	}
}
