package usecase

import "time"

const (
	// DefaultExpiryWindow is how long a transaction may stay PENDING before
	// the auto-cancel path moves it to CANCELLED.
	DefaultExpiryWindow = 10 * time.Minute

	// DefaultSchedulerBatch caps how many stuck transactions one sweep
	// re-enqueues.
	DefaultSchedulerBatch = 500

	// DefaultJobAttempts bounds queue-level retries per job.
	DefaultJobAttempts = 5
)
