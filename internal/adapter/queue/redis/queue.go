// Package redis implements the job queue on Redis: a ready list per job
// kind plus a sorted set of delayed deliveries, promoted by a pump loop.
// Delivery is at-least-once; handlers are expected to be idempotent.
package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/finbridge/remit/internal/infrastructure/metrics"
	"github.com/finbridge/remit/internal/usecase"
)

const (
	defaultMaxAttempts = 5
	initialRetryDelay  = 5 * time.Second
	maxRetryDelay      = 5 * time.Minute
	pumpInterval       = time.Second
	popTimeout         = time.Second
)

// envelope is the persisted form of a job.
type envelope struct {
	ID          string             `json:"id"`
	Kind        string             `json:"kind"`
	Payload     usecase.JobPayload `json:"payload"`
	Attempts    int                `json:"attempts"`
	MaxAttempts int                `json:"maxAttempts"`
	EnqueuedAt  time.Time          `json:"enqueuedAt"`
}

// Queue implements usecase.Queue.
type Queue struct {
	client  *redis.Client
	idGen   usecase.IDGenerator
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewQueue creates a new Queue. metrics may be nil.
func NewQueue(client *redis.Client, idGen usecase.IDGenerator, m *metrics.Metrics, logger zerolog.Logger) *Queue {
	return &Queue{
		client:  client,
		idGen:   idGen,
		metrics: m,
		logger:  logger,
	}
}

// Enqueue schedules a job for delivery, optionally after a delay.
func (q *Queue) Enqueue(ctx context.Context, kind string, payload usecase.JobPayload, opts usecase.EnqueueOptions) error {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	env := envelope{
		ID:          q.idGen.Generate(),
		Kind:        kind,
		Payload:     payload,
		MaxAttempts: maxAttempts,
		EnqueuedAt:  time.Now().UTC(),
	}

	if opts.Delay > 0 {
		return q.pushDelayed(ctx, env, time.Now().Add(opts.Delay))
	}

	return q.pushReady(ctx, env)
}

// Consume runs up to concurrency handlers for kind until ctx is cancelled.
// In-flight jobs finish before it returns; only new deliveries stop.
func (q *Queue) Consume(ctx context.Context, kind string, concurrency int, handler usecase.JobHandler) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		q.pumpDelayed(ctx, kind)
	}()

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.consumeLoop(ctx, kind, handler)
		}()
	}

	wg.Wait()

	return ctx.Err()
}

func (q *Queue) consumeLoop(ctx context.Context, kind string, handler usecase.JobHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := q.client.BRPop(ctx, popTimeout, readyKey(kind)).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}

			q.logger.Error().Err(err).Str("kind", kind).Msg("queue pop failed")
			sleepCtx(ctx, time.Second)

			continue
		}

		// BRPop returns [key, value].
		if len(res) != 2 {
			continue
		}

		var env envelope
		if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
			q.logger.Error().Err(err).Str("kind", kind).Msg("dropping malformed job")
			continue
		}

		// The handler gets a fresh context: a shutdown signal must not
		// abort a job that already started.
		q.deliver(context.Background(), env, handler)
	}
}

func (q *Queue) deliver(ctx context.Context, env envelope, handler usecase.JobHandler) {
	log := q.logger.With().
		Str("job_id", env.ID).
		Str("kind", env.Kind).
		Str("transaction_id", env.Payload.TransactionID).
		Logger()

	start := time.Now()

	err := handler(ctx, env.Payload)
	if err == nil {
		log.Info().Dur("duration", time.Since(start)).Msg("job completed")
		return
	}

	env.Attempts++

	if env.Attempts >= env.MaxAttempts {
		log.Error().Err(err).Int("attempts", env.Attempts).Msg("job failed permanently, moving to dead set")

		if q.metrics != nil {
			q.metrics.JobsDead.WithLabelValues(env.Kind).Inc()
		}

		if deadErr := q.pushDead(ctx, env); deadErr != nil {
			log.Error().Err(deadErr).Msg("failed to record dead job")
		}

		return
	}

	delay := retryDelay(env.Attempts)
	log.Warn().Err(err).
		Int("attempts", env.Attempts).
		Dur("retry_in", delay).
		Msg("job failed, scheduling retry")

	if retryErr := q.pushDelayed(ctx, env, time.Now().Add(delay)); retryErr != nil {
		log.Error().Err(retryErr).Msg("failed to schedule retry")
	}
}

// pumpDelayed promotes due delayed jobs onto the ready list. Promotion is
// not atomic with removal, so a crash can deliver a job twice; that is
// within the at-least-once contract.
func (q *Queue) pumpDelayed(ctx context.Context, kind string) {
	ticker := time.NewTicker(pumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := q.promoteDue(ctx, kind); err != nil && ctx.Err() == nil {
				q.logger.Error().Err(err).Str("kind", kind).Msg("failed to promote delayed jobs")
			}
		}
	}
}

func (q *Queue) promoteDue(ctx context.Context, kind string) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)

	due, err := q.client.ZRangeByScore(ctx, delayedKey(kind), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: 100,
	}).Result()
	if err != nil {
		return err
	}

	for _, raw := range due {
		removed, err := q.client.ZRem(ctx, delayedKey(kind), raw).Result()
		if err != nil {
			return err
		}

		// Another pump instance got it first.
		if removed == 0 {
			continue
		}

		if err := q.client.LPush(ctx, readyKey(kind), raw).Err(); err != nil {
			return err
		}
	}

	return nil
}

func (q *Queue) pushReady(ctx context.Context, env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return q.client.LPush(ctx, readyKey(env.Kind), data).Err()
}

func (q *Queue) pushDelayed(ctx context.Context, env envelope, readyAt time.Time) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return q.client.ZAdd(ctx, delayedKey(env.Kind), redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: data,
	}).Err()
}

func (q *Queue) pushDead(ctx context.Context, env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return q.client.LPush(ctx, deadKey(env.Kind), data).Err()
}

// retryDelay is exponential: 5s, 10s, 20s, ... capped at maxRetryDelay.
func retryDelay(attempts int) time.Duration {
	delay := initialRetryDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}

	return delay
}

func readyKey(kind string) string   { return "jobs:" + kind + ":ready" }
func delayedKey(kind string) string { return "jobs:" + kind + ":delayed" }
func deadKey(kind string) string    { return "jobs:" + kind + ":dead" }

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
