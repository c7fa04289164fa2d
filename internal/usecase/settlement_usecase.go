package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/remit/internal/domain"
	"github.com/finbridge/remit/internal/infrastructure/metrics"
)

// reasons recorded on FAILED transactions.
const (
	reasonInsufficientFunds = "Insufficient funds"
	reasonSenderAccount     = "Sender account not found"
	reasonReceiverAccount   = "Receiver account not found"
)

// SettlementUseCase owns every transition out of PENDING. The status-guarded
// compare-and-swap in the transaction repository is the sole concurrency
// arbiter: duplicate deliveries, racing workers and the auto-cancel path all
// resolve through it.
type SettlementUseCase struct {
	txManager    TxManager
	accounts     AccountRepository
	transactions TransactionRepository
	entries      EntryRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	expiryWindow time.Duration
	now          func() time.Time
}

// NewSettlementUseCase creates a new SettlementUseCase. metrics may be nil.
func NewSettlementUseCase(
	txManager TxManager,
	accounts AccountRepository,
	transactions TransactionRepository,
	entries EntryRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
	expiryWindow time.Duration,
) *SettlementUseCase {
	if expiryWindow <= 0 {
		expiryWindow = DefaultExpiryWindow
	}

	return &SettlementUseCase{
		txManager:    txManager,
		accounts:     accounts,
		transactions: transactions,
		entries:      entries,
		idGen:        idGen,
		metrics:      m,
		logger:       logger,
		expiryWindow: expiryWindow,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ProcessTransaction advances one transaction. Safe to invoke any number of
// times for the same ID:
//
//   - already COMPLETED (or otherwise terminal): logged no-op
//   - older than the expiry window: PENDING -> CANCELLED
//   - claim lost to a concurrent worker: no-op, no side effects
//   - insufficient funds at settlement time: PENDING -> PROCESSING -> FAILED,
//     handled terminally (no retry)
//   - any other settlement error: marked FAILED and returned, so the queue's
//     retry/backoff policy applies
func (uc *SettlementUseCase) ProcessTransaction(ctx context.Context, transactionID string) error {
	log := uc.logger.With().Str("transaction_id", transactionID).Logger()

	txn, err := uc.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}

	if txn.Status == domain.StatusCompleted {
		log.Info().Msg("transaction already completed, skipping")
		return nil
	}

	if txn.Status.Terminal() {
		log.Info().Str("status", string(txn.Status)).Msg("transaction in terminal state, skipping")
		return nil
	}

	if txn.Status == domain.StatusPending && txn.Expired(uc.now(), uc.expiryWindow) {
		return uc.cancelExpired(ctx, log, transactionID)
	}

	claimed, err := uc.transactions.UpdateStatusIf(ctx, transactionID, domain.StatusPending, domain.StatusProcessing)
	if err != nil {
		return err
	}

	if claimed == 0 {
		log.Info().Msg("transaction already claimed by another worker, skipping")
		return nil
	}

	start := uc.now()

	if err := uc.settle(ctx, transactionID); err != nil {
		return uc.recordFailure(ctx, log, transactionID, err)
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsSettled.Inc()
		uc.metrics.SettlementDuration.Observe(uc.now().Sub(start).Seconds())
	}

	log.Info().Msg("transaction settled")

	return nil
}

// AutoCancel moves a stale PENDING transaction to CANCELLED. Harmless when
// the transaction already advanced: the compare-and-swap affects zero rows.
func (uc *SettlementUseCase) AutoCancel(ctx context.Context, transactionID string) error {
	log := uc.logger.With().Str("transaction_id", transactionID).Logger()

	txn, err := uc.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}

	if txn.Status != domain.StatusPending {
		log.Info().Str("status", string(txn.Status)).Msg("transaction not pending, skipping auto-cancel")
		return nil
	}

	if !txn.Expired(uc.now(), uc.expiryWindow) {
		log.Info().Msg("transaction not old enough to cancel")
		return nil
	}

	return uc.cancelExpired(ctx, log, transactionID)
}

func (uc *SettlementUseCase) cancelExpired(ctx context.Context, log zerolog.Logger, transactionID string) error {
	cancelled, err := uc.transactions.UpdateStatusIf(ctx, transactionID, domain.StatusPending, domain.StatusCancelled)
	if err != nil {
		return err
	}

	if cancelled == 0 {
		log.Info().Msg("transaction advanced before cancellation, skipping")
		return nil
	}

	if uc.metrics != nil {
		uc.metrics.TransactionsCancelled.Inc()
	}

	log.Info().Msg("transaction auto-cancelled after expiry")

	return nil
}

// settle performs the financial effect: debit sender by the source amount,
// credit receiver by the target amount, write the DEBIT/CREDIT entry pair
// and flip PROCESSING -> COMPLETED, all in one database transaction.
func (uc *SettlementUseCase) settle(ctx context.Context, transactionID string) error {
	full, err := uc.transactions.GetWithParties(ctx, transactionID)
	if err != nil {
		return err
	}

	txn := full.Transaction

	senderAccount := full.Sender.AccountInCurrency(txn.SourceCurrency)
	if senderAccount == nil {
		return domain.ErrSenderAccountNotFound
	}

	receiverAccount := full.Receiver.AccountInCurrency(txn.TargetCurrency)
	if receiverAccount == nil {
		receiverAccount = full.Receiver.DefaultAccount()
	}

	if receiverAccount == nil {
		return domain.ErrReceiverAccountNotFound
	}

	ids := []string{senderAccount.ID, receiverAccount.ID}
	sort.Strings(ids)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	locked, err := uc.accounts.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return err
	}

	accounts := make(map[string]*domain.Account, len(locked))
	for _, a := range locked {
		accounts[a.ID] = a
	}

	sender, receiver := accounts[senderAccount.ID], accounts[receiverAccount.ID]
	if sender == nil {
		return domain.ErrSenderAccountNotFound
	}

	if receiver == nil {
		return domain.ErrReceiverAccountNotFound
	}

	// Re-check funds against the locked row: initiation data may be stale.
	if !sender.CanCover(txn.SourceAmount) {
		return domain.ErrInsufficientFunds
	}

	now := uc.now()

	if err := uc.accounts.UpdateBalance(ctx, tx, sender.ID, sender.ApplyDebit(txn.SourceAmount), now); err != nil {
		return err
	}

	if err := uc.accounts.UpdateBalance(ctx, tx, receiver.ID, receiver.ApplyCredit(txn.TargetAmount), now); err != nil {
		return err
	}

	reference := txn.ID
	if txn.PaymentReference != nil {
		reference = *txn.PaymentReference
	}

	entries := []*domain.LedgerEntry{
		{
			ID:          uc.idGen.Generate(),
			AccountID:   sender.ID,
			Amount:      txn.SourceAmount.Neg(),
			Currency:    txn.SourceCurrency,
			Type:        domain.EntryDebit,
			Reference:   reference,
			Description: fmt.Sprintf("Remittance to %s", full.Receiver.Email),
			CreatedAt:   now,
		},
		{
			ID:          uc.idGen.Generate(),
			AccountID:   receiver.ID,
			Amount:      txn.TargetAmount,
			Currency:    txn.TargetCurrency,
			Type:        domain.EntryCredit,
			Reference:   reference,
			Description: fmt.Sprintf("Remittance from %s", full.Sender.Email),
			CreatedAt:   now,
		},
	}

	if err := uc.entries.CreateBatch(ctx, tx, entries); err != nil {
		return err
	}

	completed, err := uc.transactions.CompleteInTx(ctx, tx, txn.ID)
	if err != nil {
		return err
	}

	if completed == 0 {
		// Our PROCESSING claim disappeared. Roll everything back rather
		// than settle on top of a state we no longer own.
		return domain.ErrAlreadyCompleted
	}

	return tx.Commit(ctx)
}

// recordFailure maps settlement errors to their terminal or retryable
// outcome per the failure semantics.
func (uc *SettlementUseCase) recordFailure(ctx context.Context, log zerolog.Logger, transactionID string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		log.Warn().Msg("settlement failed: insufficient funds")
		uc.countFailure("insufficient_funds")

		return uc.transactions.MarkFailed(ctx, transactionID, reasonInsufficientFunds)

	case errors.Is(err, domain.ErrSenderAccountNotFound):
		log.Warn().Msg("settlement failed: sender account not found")
		uc.countFailure("sender_account_not_found")

		return uc.transactions.MarkFailed(ctx, transactionID, reasonSenderAccount)

	case errors.Is(err, domain.ErrReceiverAccountNotFound):
		log.Warn().Msg("settlement failed: receiver account not found")
		uc.countFailure("receiver_account_not_found")

		return uc.transactions.MarkFailed(ctx, transactionID, reasonReceiverAccount)

	case errors.Is(err, domain.ErrAlreadyCompleted):
		log.Info().Msg("settlement raced a concurrent completion, no effect applied")
		return nil

	default:
		log.Error().Err(err).Msg("settlement failed")
		uc.countFailure("error")

		if markErr := uc.transactions.MarkFailed(ctx, transactionID, err.Error()); markErr != nil {
			log.Error().Err(markErr).Msg("failed to record failure reason")
		}

		return err
	}
}

// countFailure uses a fixed reason label so metric cardinality stays bounded
// regardless of what went into failure_reason.
func (uc *SettlementUseCase) countFailure(reason string) {
	if uc.metrics != nil {
		uc.metrics.TransactionsFailed.WithLabelValues(reason).Inc()
	}
}
