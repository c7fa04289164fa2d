package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/domain"
	"github.com/finbridge/remit/internal/infrastructure/metrics"
)

// TransferUseCase handles transfer initiation: it validates both parties,
// prices the transfer, creates the PENDING transaction, asks the gateway to
// collect payment, and enqueues the follow-up jobs.
type TransferUseCase struct {
	accounts     AccountRepository
	users        UserRepository
	transactions TransactionRepository
	quoter       *Quoter
	gateways     map[string]PaymentGateway
	queue        Queue
	idGen        IDGenerator
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	expiryWindow time.Duration
}

// NewTransferUseCase creates a new TransferUseCase. gateways is keyed by
// lower-case provider name. metrics may be nil.
func NewTransferUseCase(
	accounts AccountRepository,
	users UserRepository,
	transactions TransactionRepository,
	quoter *Quoter,
	gateways map[string]PaymentGateway,
	queue Queue,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
	expiryWindow time.Duration,
) *TransferUseCase {
	if expiryWindow <= 0 {
		expiryWindow = DefaultExpiryWindow
	}

	return &TransferUseCase{
		accounts:     accounts,
		users:        users,
		transactions: transactions,
		quoter:       quoter,
		gateways:     gateways,
		queue:        queue,
		idGen:        idGen,
		metrics:      m,
		logger:       logger,
		expiryWindow: expiryWindow,
	}
}

// InitiateInput describes a requested transfer. The receiver is resolved by
// ID or by account number, whichever is set.
type InitiateInput struct {
	SenderID              string
	ReceiverID            string
	ReceiverAccountNumber string
	SourceCurrency        string
	TargetCurrency        string
	Amount                decimal.Decimal
}

// InitiateResult is returned to the caller so it can redirect the payer to
// the gateway's checkout page.
type InitiateResult struct {
	Transaction      *domain.Transaction
	AuthorizationURL string
	Reference        string
}

// Initiate runs every guard before persisting anything: a guard failure
// means no transaction row exists. After the PENDING row is created a
// delayed auto-cancel job and a process job are enqueued; a gateway failure
// past that point leaves the row PENDING for the auto-cancel path to reap.
func (uc *TransferUseCase) Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	sender, err := uc.users.GetByID(ctx, input.SenderID)
	if err != nil {
		return nil, err
	}

	senderAccount := sender.DefaultAccount()
	if senderAccount == nil {
		return nil, domain.ErrSenderAccountNotFound
	}

	if senderAccount.Currency != input.SourceCurrency {
		return nil, domain.ErrCurrencyMismatch
	}

	receiver, err := uc.resolveReceiver(ctx, input)
	if err != nil {
		return nil, err
	}

	if receiver.DefaultAccount() == nil {
		return nil, domain.ErrReceiverAccountNotFound
	}

	if sender.ID == receiver.ID {
		return nil, domain.ErrSameParty
	}

	if !senderAccount.CanCover(input.Amount) {
		return nil, domain.ErrInsufficientFunds
	}

	provider := strings.ToLower(senderAccount.Provider)

	gateway, ok := uc.gateways[provider]
	if !ok {
		return nil, domain.ErrUnsupportedProvider
	}

	quote, err := uc.quoter.Quote(ctx, QuoteInput{
		SourceCurrency: input.SourceCurrency,
		TargetCurrency: input.TargetCurrency,
		Provider:       provider,
		Amount:         input.Amount,
		IsLocal:        input.SourceCurrency == input.TargetCurrency,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		SenderID:        sender.ID,
		ReceiverID:      receiver.ID,
		SourceAmount:    quote.SourceAmount,
		TargetAmount:    quote.TargetAmount,
		SourceCurrency:  quote.SourceCurrency,
		TargetCurrency:  quote.TargetCurrency,
		ExchangeRate:    quote.Rate,
		Fee:             quote.Fee,
		Status:          domain.StatusPending,
		PaymentProvider: provider,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.transactions.Create(ctx, txn); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsInitiated.Inc()

		amount, _ := input.Amount.Float64()
		uc.metrics.TransactionAmount.WithLabelValues(input.SourceCurrency).Observe(amount)
	}

	uc.enqueueFollowUps(ctx, txn.ID)

	reference := "RM-" + uc.idGen.Generate()

	initiation, err := gateway.InitiatePayment(ctx, InitiatePaymentInput{
		Email:       sender.Email,
		Name:        sender.FullName(),
		PhoneNumber: sender.PhoneNumber,
		CustomerID:  senderAccount.ExternalID,
		Amount:      input.Amount,
		Currency:    input.SourceCurrency,
		Reference:   reference,
		Description: fmt.Sprintf("Remittance from %s to %s", sender.Email, receiver.Email),
		Metadata: map[string]string{
			"transactionId": txn.ID,
			"userId":        sender.ID,
			"receiverId":    receiver.ID,
		},
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.GatewayRequests.WithLabelValues(provider, "error").Inc()
		}

		uc.logger.Error().Err(err).
			Str("transaction_id", txn.ID).
			Str("provider", provider).
			Msg("payment initiation failed, transaction left pending")

		return nil, fmt.Errorf("initiate payment: %w", err)
	}

	if uc.metrics != nil {
		uc.metrics.GatewayRequests.WithLabelValues(provider, "ok").Inc()
	}

	if err := uc.transactions.SetPaymentReference(ctx, txn.ID, provider, initiation.ProviderReference); err != nil {
		return nil, err
	}

	txn.PaymentReference = &initiation.ProviderReference

	uc.logger.Info().
		Str("transaction_id", txn.ID).
		Str("provider", provider).
		Str("reference", initiation.ProviderReference).
		Msg("transfer initiated")

	return &InitiateResult{
		Transaction:      txn,
		AuthorizationURL: initiation.AuthorizationURL,
		Reference:        initiation.ProviderReference,
	}, nil
}

// Get retrieves a transaction by ID.
func (uc *TransferUseCase) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transactions.GetByID(ctx, id)
}

func (uc *TransferUseCase) resolveReceiver(ctx context.Context, input InitiateInput) (*domain.User, error) {
	if input.ReceiverID != "" {
		return uc.users.GetByID(ctx, input.ReceiverID)
	}

	if input.ReceiverAccountNumber != "" {
		account, err := uc.accounts.GetByAccountNumber(ctx, input.ReceiverAccountNumber)
		if err != nil {
			return nil, err
		}

		return uc.users.GetByID(ctx, account.UserID)
	}

	return nil, domain.ErrReceiverAccountNotFound
}

// enqueueFollowUps schedules the process job and the delayed auto-cancel
// job. Enqueue failures are logged, not fatal: the scheduler sweep replays
// both for any transaction still PENDING.
func (uc *TransferUseCase) enqueueFollowUps(ctx context.Context, transactionID string) {
	err := uc.queue.Enqueue(ctx, JobProcessTransaction, JobPayload{
		TransactionID: transactionID,
		Action:        ActionProcess,
	}, EnqueueOptions{MaxAttempts: DefaultJobAttempts})
	if err != nil {
		uc.logger.Error().Err(err).Str("transaction_id", transactionID).Msg("failed to enqueue process job")
	}

	err = uc.queue.Enqueue(ctx, JobAutoCancel, JobPayload{
		TransactionID: transactionID,
		Action:        ActionAutoCancel,
	}, EnqueueOptions{Delay: uc.expiryWindow, MaxAttempts: DefaultJobAttempts})
	if err != nil {
		uc.logger.Error().Err(err).Str("transaction_id", transactionID).Msg("failed to enqueue auto-cancel job")
	}
}
