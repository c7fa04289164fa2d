package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/remit/internal/adapter/repository/postgres"
	"github.com/finbridge/remit/internal/infrastructure/metrics"
	"github.com/finbridge/remit/internal/usecase"
)

// Config for Worker.
type Config struct {
	Queue                 usecase.Queue
	Settlement            *usecase.SettlementUseCase
	Retrier               *postgres.Retrier
	Metrics               *metrics.Metrics
	Logger                zerolog.Logger
	ProcessConcurrency    int
	AutoCancelConcurrency int
}

// Worker consumes the transaction job queues and drives the settlement
// state machine. Handlers are idempotent, so crashed or duplicated
// deliveries resolve to no-ops on replay.
type Worker struct {
	queue                 usecase.Queue
	settlement            *usecase.SettlementUseCase
	retrier               *postgres.Retrier
	metrics               *metrics.Metrics
	logger                zerolog.Logger
	processConcurrency    int
	autoCancelConcurrency int
}

// New creates a new Worker.
func New(cfg Config) *Worker {
	if cfg.ProcessConcurrency <= 0 {
		cfg.ProcessConcurrency = 5
	}
	if cfg.AutoCancelConcurrency <= 0 {
		cfg.AutoCancelConcurrency = 3
	}
	if cfg.Retrier == nil {
		cfg.Retrier = postgres.NewRetrier()
	}

	return &Worker{
		queue:                 cfg.Queue,
		settlement:            cfg.Settlement,
		retrier:               cfg.Retrier,
		metrics:               cfg.Metrics,
		logger:                cfg.Logger,
		processConcurrency:    cfg.ProcessConcurrency,
		autoCancelConcurrency: cfg.AutoCancelConcurrency,
	}
}

// Run consumes both job kinds until ctx is cancelled. In-flight jobs are
// drained before it returns.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().
		Int("process_concurrency", w.processConcurrency).
		Int("auto_cancel_concurrency", w.autoCancelConcurrency).
		Msg("worker started")

	errCh := make(chan error, 2)

	go func() {
		errCh <- w.queue.Consume(ctx, usecase.JobProcessTransaction, w.processConcurrency, w.handleJob)
	}()
	go func() {
		errCh <- w.queue.Consume(ctx, usecase.JobAutoCancel, w.autoCancelConcurrency, w.handleJob)
	}()

	var first error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && first == nil {
			first = err
		}
	}

	w.logger.Info().Msg("worker stopped")

	return first
}

// handleJob dispatches one delivery by its action.
func (w *Worker) handleJob(ctx context.Context, payload usecase.JobPayload) error {
	kind := usecase.JobProcessTransaction
	if payload.Action == usecase.ActionAutoCancel {
		kind = usecase.JobAutoCancel
	}

	start := time.Now()
	err := w.dispatch(ctx, payload)
	w.observe(kind, start, err)

	return err
}

func (w *Worker) dispatch(ctx context.Context, payload usecase.JobPayload) error {
	switch payload.Action {
	case usecase.ActionAutoCancel:
		return w.settlement.AutoCancel(ctx, payload.TransactionID)
	default:
		// Settlement replays are guarded by the transaction status, so a
		// deadlock-retried attempt cannot double-settle.
		return w.retrier.Retry(ctx, func() error {
			return w.settlement.ProcessTransaction(ctx, payload.TransactionID)
		})
	}
}

func (w *Worker) observe(kind string, start time.Time, err error) {
	if w.metrics == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}

	w.metrics.JobsProcessed.WithLabelValues(kind, outcome).Inc()
	w.metrics.JobDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
