package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SchedulerUseCase is the periodic reconciliation sweep. It re-enqueues
// process jobs for PENDING transactions still inside the expiry window
// (covering lost or never-delivered webhooks) and auto-cancel jobs for
// those past it. Redundant runs are safe: the state-machine guards make
// every job idempotent.
type SchedulerUseCase struct {
	transactions TransactionRepository
	queue        Queue
	logger       zerolog.Logger
	expiryWindow time.Duration
	batchSize    int
	now          func() time.Time
}

// NewSchedulerUseCase creates a new SchedulerUseCase.
func NewSchedulerUseCase(
	transactions TransactionRepository,
	queue Queue,
	logger zerolog.Logger,
	expiryWindow time.Duration,
	batchSize int,
) *SchedulerUseCase {
	if expiryWindow <= 0 {
		expiryWindow = DefaultExpiryWindow
	}

	if batchSize <= 0 {
		batchSize = DefaultSchedulerBatch
	}

	return &SchedulerUseCase{
		transactions: transactions,
		queue:        queue,
		logger:       logger,
		expiryWindow: expiryWindow,
		batchSize:    batchSize,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SweepResult reports what one sweep enqueued.
type SweepResult struct {
	Reprocessed int
	Expired     int
}

// Sweep runs one reconciliation pass.
func (uc *SchedulerUseCase) Sweep(ctx context.Context) (*SweepResult, error) {
	cutoff := uc.now().Add(-uc.expiryWindow)
	result := &SweepResult{}

	young, err := uc.transactions.ListPendingCreatedAfter(ctx, cutoff, uc.batchSize)
	if err != nil {
		return nil, err
	}

	for _, txn := range young {
		err := uc.queue.Enqueue(ctx, JobProcessTransaction, JobPayload{
			TransactionID: txn.ID,
			Action:        ActionProcess,
		}, EnqueueOptions{MaxAttempts: DefaultJobAttempts})
		if err != nil {
			uc.logger.Error().Err(err).Str("transaction_id", txn.ID).Msg("sweep: failed to enqueue process job")
			continue
		}

		result.Reprocessed++
	}

	expired, err := uc.transactions.ListPendingCreatedBefore(ctx, cutoff, uc.batchSize)
	if err != nil {
		return result, err
	}

	for _, txn := range expired {
		err := uc.queue.Enqueue(ctx, JobAutoCancel, JobPayload{
			TransactionID: txn.ID,
			Action:        ActionAutoCancel,
		}, EnqueueOptions{MaxAttempts: DefaultJobAttempts})
		if err != nil {
			uc.logger.Error().Err(err).Str("transaction_id", txn.ID).Msg("sweep: failed to enqueue auto-cancel job")
			continue
		}

		result.Expired++
	}

	if result.Reprocessed > 0 || result.Expired > 0 {
		uc.logger.Info().
			Int("reprocessed", result.Reprocessed).
			Int("expired", result.Expired).
			Msg("reconciliation sweep enqueued follow-ups")
	}

	return result, nil
}
