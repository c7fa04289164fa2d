package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/domain"
	"github.com/finbridge/remit/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	GetByIDFunc            func(ctx context.Context, id string) (*domain.Account, error)
	GetByAccountNumberFunc func(ctx context.Context, accountNumber string) (*domain.Account, error)
	FindDefaultByUserFunc  func(ctx context.Context, userID string) (*domain.Account, error)
	GetByIDsForUpdateFunc  func(ctx context.Context, tx usecase.Tx, ids []string) ([]*domain.Account, error)
	UpdateBalanceFunc      func(ctx context.Context, tx usecase.Tx, id string, balance decimal.Decimal, updatedAt time.Time) error
	AddToBalanceFunc       func(ctx context.Context, id string, amount decimal.Decimal) (*domain.Account, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Put seeds an account into the in-memory store.
func (m *MockAccountRepository) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if m.GetByAccountNumberFunc != nil {
		return m.GetByAccountNumberFunc(ctx, accountNumber)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.AccountNumber == accountNumber {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FindDefaultByUser(ctx context.Context, userID string) (*domain.Account, error) {
	if m.FindDefaultByUserFunc != nil {
		return m.FindDefaultByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.UserID == userID && acc.IsDefault {
			return acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Tx, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, id string, balance decimal.Decimal, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = balance
		acc.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrAccountNotFound
}

func (m *MockAccountRepository) AddToBalance(ctx context.Context, id string, amount decimal.Decimal) (*domain.Account, error) {
	if m.AddToBalanceFunc != nil {
		return m.AddToBalanceFunc(ctx, id, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		acc.Balance = acc.Balance.Add(amount)
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	GetByIDFunc func(ctx context.Context, id string) (*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserRepository) Put(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
// UpdateStatusIf implements real compare-and-swap semantics under a mutex so
// concurrency tests exercise the same single-winner behavior the SQL
// conditional update provides.
type MockTransactionRepository struct {
	mu           sync.Mutex
	transactions map[string]*domain.Transaction

	CreateFunc              func(ctx context.Context, txn *domain.Transaction) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Transaction, error)
	GetWithPartiesFunc      func(ctx context.Context, id string) (*domain.TransactionWithParties, error)
	UpdateStatusIfFunc      func(ctx context.Context, id string, from, to domain.TransactionStatus) (int64, error)
	CompleteInTxFunc        func(ctx context.Context, tx usecase.Tx, id string) (int64, error)
	MarkFailedFunc          func(ctx context.Context, id, reason string) error
	SetPaymentReferenceFunc func(ctx context.Context, id, provider, reference string) error
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) Put(txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = txn
}

func (m *MockTransactionRepository) Get(id string) *domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transactions[id]
}

// ListAll returns every stored transaction.
func (m *MockTransactionRepository) ListAll() []*domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Transaction, 0, len(m.transactions))
	for _, txn := range m.transactions {
		out = append(out, txn)
	}
	return out
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.ID] = txn
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn, ok := m.transactions[id]; ok {
		copied := *txn
		return &copied, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) GetWithParties(ctx context.Context, id string) (*domain.TransactionWithParties, error) {
	if m.GetWithPartiesFunc != nil {
		return m.GetWithPartiesFunc(ctx, id)
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.TransactionStatus) (int64, error) {
	if m.UpdateStatusIfFunc != nil {
		return m.UpdateStatusIfFunc(ctx, id, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[id]
	if !ok || txn.Status != from {
		return 0, nil
	}
	txn.Status = to
	return 1, nil
}

func (m *MockTransactionRepository) CompleteInTx(ctx context.Context, tx usecase.Tx, id string) (int64, error) {
	if m.CompleteInTxFunc != nil {
		return m.CompleteInTxFunc(ctx, tx, id)
	}
	return m.UpdateStatusIf(ctx, id, domain.StatusProcessing, domain.StatusCompleted)
}

func (m *MockTransactionRepository) MarkFailed(ctx context.Context, id, reason string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, reason)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn, ok := m.transactions[id]; ok {
		txn.Status = domain.StatusFailed
		txn.FailureReason = &reason
		return nil
	}
	return domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) SetPaymentReference(ctx context.Context, id, provider, reference string) error {
	if m.SetPaymentReferenceFunc != nil {
		return m.SetPaymentReferenceFunc(ctx, id, provider, reference)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn, ok := m.transactions[id]; ok {
		txn.PaymentProvider = provider
		txn.PaymentReference = &reference
		return nil
	}
	return domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Transaction
	for _, txn := range m.transactions {
		if txn.Status == domain.StatusPending && txn.CreatedAt.Before(cutoff) {
			out = append(out, txn)
		}
	}
	return out, nil
}

func (m *MockTransactionRepository) ListPendingCreatedAfter(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Transaction
	for _, txn := range m.transactions {
		if txn.Status == domain.StatusPending && !txn.CreatedAt.Before(cutoff) {
			out = append(out, txn)
		}
	}
	return out, nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.Mutex
	Entries []*domain.LedgerEntry

	CreateBatchFunc func(ctx context.Context, tx usecase.Tx, entries []*domain.LedgerEntry) error
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

func (m *MockEntryRepository) CreateBatch(ctx context.Context, tx usecase.Tx, entries []*domain.LedgerEntry) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, entries)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entries...)
	return nil
}

func (m *MockEntryRepository) GetByReference(ctx context.Context, reference string) ([]*domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.LedgerEntry
	for _, e := range m.Entries {
		if e.Reference == reference {
			out = append(out, e)
		}
	}
	return out, nil
}

// MockTx is a no-op database transaction.
type MockTx struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTx) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTx) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTxManager is a mock implementation of TxManager.
type MockTxManager struct {
	BeginFunc func(ctx context.Context) (usecase.Tx, error)
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

func (m *MockTxManager) Begin(ctx context.Context) (usecase.Tx, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTx{}, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mu           sync.Mutex
	counter      int
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("generated-id-%03d", m.counter)
}

// MockQueue records enqueued jobs.
type MockQueue struct {
	mu   sync.Mutex
	Jobs []EnqueuedJob

	EnqueueFunc func(ctx context.Context, kind string, payload usecase.JobPayload, opts usecase.EnqueueOptions) error
	ConsumeFunc func(ctx context.Context, kind string, concurrency int, handler usecase.JobHandler) error
}

// EnqueuedJob is one recorded Enqueue call.
type EnqueuedJob struct {
	Kind    string
	Payload usecase.JobPayload
	Opts    usecase.EnqueueOptions
}

func NewMockQueue() *MockQueue {
	return &MockQueue{}
}

func (m *MockQueue) Enqueue(ctx context.Context, kind string, payload usecase.JobPayload, opts usecase.EnqueueOptions) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, kind, payload, opts)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Jobs = append(m.Jobs, EnqueuedJob{Kind: kind, Payload: payload, Opts: opts})
	return nil
}

func (m *MockQueue) Consume(ctx context.Context, kind string, concurrency int, handler usecase.JobHandler) error {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, kind, concurrency, handler)
	}
	return nil
}

// ByKind returns recorded jobs of one kind.
func (m *MockQueue) ByKind(kind string) []EnqueuedJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EnqueuedJob
	for _, j := range m.Jobs {
		if j.Kind == kind {
			out = append(out, j)
		}
	}
	return out
}

// MockRateProviderFunc adapts a function to RateProvider.
type MockRateProviderFunc func(ctx context.Context, sourceCurrency, targetCurrency string) (*domain.Rate, error)

func (f MockRateProviderFunc) GetRate(ctx context.Context, sourceCurrency, targetCurrency string) (*domain.Rate, error) {
	return f(ctx, sourceCurrency, targetCurrency)
}

// MockPaymentGateway is a mock implementation of PaymentGateway.
type MockPaymentGateway struct {
	InitiatePaymentFunc func(ctx context.Context, input usecase.InitiatePaymentInput) (*usecase.PaymentInitiation, error)
	VerifyFunc          func(payload []byte, signatureHeader string) bool
}

func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

func (m *MockPaymentGateway) InitiatePayment(ctx context.Context, input usecase.InitiatePaymentInput) (*usecase.PaymentInitiation, error) {
	if m.InitiatePaymentFunc != nil {
		return m.InitiatePaymentFunc(ctx, input)
	}
	return &usecase.PaymentInitiation{
		AuthorizationURL:  "https://checkout.example/" + input.Reference,
		ProviderReference: input.Reference,
	}, nil
}

func (m *MockPaymentGateway) VerifyWebhookSignature(payload []byte, signatureHeader string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(payload, signatureHeader)
	}
	return true
}
