package scheduler

import (
	"context"
	"time"

	"log/slog"

	"github.com/finbridge/remit/internal/usecase"
)

// Scheduler runs the reconciliation sweep on a fixed interval.
type Scheduler struct {
	sweeper  *usecase.SchedulerUseCase
	logger   *slog.Logger
	interval time.Duration
}

// Config for Scheduler.
type Config struct {
	Sweeper  *usecase.SchedulerUseCase
	Logger   *slog.Logger
	Interval time.Duration // Sweep interval
}

// New creates a new Scheduler.
func New(cfg Config) *Scheduler {
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Scheduler{
		sweeper:  cfg.Sweeper,
		logger:   cfg.Logger,
		interval: cfg.Interval,
	}
}

// Start begins the sweep loop.
// It runs continuously until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Sweep immediately on start
	if err := s.sweep(ctx); err != nil {
		s.logger.Error("error running sweep on start", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				s.logger.Error("error running sweep", slog.String("error", err.Error()))
			}
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) error {
	result, err := s.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}

	if result.Reprocessed > 0 || result.Expired > 0 {
		s.logger.Info("sweep completed",
			slog.Int("reprocessed", result.Reprocessed),
			slog.Int("expired", result.Expired))
	}

	return nil
}
