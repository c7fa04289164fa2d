package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/domain"
)

// AccountRepository defines data access for wallet accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	FindDefaultByUser(ctx context.Context, userID string) (*domain.Account, error)
	// GetByIDsForUpdate locks the given accounts inside tx. Callers must pass
	// IDs in sorted order to keep lock acquisition deadlock-free.
	GetByIDsForUpdate(ctx context.Context, tx Tx, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Tx, id string, balance decimal.Decimal, updatedAt time.Time) error
	// AddToBalance atomically increments a balance outside any settlement.
	// Used only by the funding flow.
	AddToBalance(ctx context.Context, id string, amount decimal.Decimal) (*domain.Account, error)
}

// UserRepository defines read access to parties and their accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// TransactionRepository defines data access for transfer records.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetWithParties(ctx context.Context, id string) (*domain.TransactionWithParties, error)
	// UpdateStatusIf performs the compare-and-swap that serializes claims on
	// a transaction: the status moves from "from" to "to" only if it still is
	// "from". The returned count is 0 when another writer won the race.
	UpdateStatusIf(ctx context.Context, id string, from, to domain.TransactionStatus) (int64, error)
	// CompleteInTx is the same compare-and-swap from PROCESSING to COMPLETED,
	// scoped to the settlement's database transaction.
	CompleteInTx(ctx context.Context, tx Tx, id string) (int64, error)
	MarkFailed(ctx context.Context, id, reason string) error
	SetPaymentReference(ctx context.Context, id, provider, reference string) error
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error)
	ListPendingCreatedAfter(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error)
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	// CreateBatch inserts all entries inside tx; all-or-nothing.
	CreateBatch(ctx context.Context, tx Tx, entries []*domain.LedgerEntry) error
	GetByReference(ctx context.Context, reference string) ([]*domain.LedgerEntry, error)
}

// Tx represents a database transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxManager handles database transaction lifecycle.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// RateProvider returns a cached exchange rate for a currency pair.
type RateProvider interface {
	GetRate(ctx context.Context, sourceCurrency, targetCurrency string) (*domain.Rate, error)
}

// InitiatePaymentInput is the payer and charge information handed to a
// payment gateway.
type InitiatePaymentInput struct {
	Metadata    map[string]string
	PhoneNumber *string
	CustomerID  *string
	Email       string
	Name        string
	Currency    string
	Reference   string
	Description string
	Amount      decimal.Decimal
}

// PaymentInitiation is a gateway's answer to an initiated charge.
type PaymentInitiation struct {
	AuthorizationURL  string
	ProviderReference string
}

// PaymentGateway initiates payment collection with a third-party provider.
// Confirmation arrives asynchronously via webhook.
type PaymentGateway interface {
	InitiatePayment(ctx context.Context, input InitiatePaymentInput) (*PaymentInitiation, error)
	VerifyWebhookSignature(payload []byte, signatureHeader string) bool
}

// Job kinds consumed by the worker.
const (
	JobProcessTransaction = "process-transaction"
	JobAutoCancel         = "auto-cancel"
)

// Job actions carried in the payload.
const (
	ActionProcess    = "process"
	ActionAutoCancel = "auto-cancel"
)

// JobPayload is the persisted job payload shape.
type JobPayload struct {
	TransactionID string `json:"transactionId"`
	Action        string `json:"action"`
}

// EnqueueOptions control delivery of an enqueued job.
type EnqueueOptions struct {
	Delay       time.Duration
	MaxAttempts int
}

// JobHandler processes one job delivery. Delivery is at-least-once, so
// handlers must be idempotent.
type JobHandler func(ctx context.Context, payload JobPayload) error

// Queue is an at-least-once job transport with delayed delivery and
// retry/backoff on handler failure.
type Queue interface {
	Enqueue(ctx context.Context, kind string, payload JobPayload, opts EnqueueOptions) error
	// Consume blocks until ctx is cancelled, running up to concurrency
	// handlers in parallel. In-flight jobs finish before it returns.
	Consume(ctx context.Context, kind string, concurrency int, handler JobHandler) error
}
