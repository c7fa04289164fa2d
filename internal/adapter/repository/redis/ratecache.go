package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finbridge/remit/internal/domain"
)

// DefaultRateTTL matches the multi-hour cache window used for FX rates.
const DefaultRateTTL = 10 * time.Hour

// ErrRateCacheMiss is returned when no rate is cached for the pair.
var ErrRateCacheMiss = errors.New("rate not in cache")

// RateCache caches exchange rates in Redis under rate:<SRC>:<DST> keys.
type RateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRateCache creates a new RateCache.
func NewRateCache(client *redis.Client, ttl time.Duration) *RateCache {
	if ttl <= 0 {
		ttl = DefaultRateTTL
	}

	return &RateCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cached rate for the pair.
func (c *RateCache) Get(ctx context.Context, sourceCurrency, targetCurrency string) (*domain.Rate, error) {
	data, err := c.client.Get(ctx, rateKey(sourceCurrency, targetCurrency)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRateCacheMiss
		}

		return nil, err
	}

	var rate domain.Rate
	if err := json.Unmarshal(data, &rate); err != nil {
		return nil, err
	}

	return &rate, nil
}

// Set caches a rate for the pair.
func (c *RateCache) Set(ctx context.Context, rate *domain.Rate) error {
	data, err := json.Marshal(rate)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, rateKey(rate.SourceCurrency, rate.TargetCurrency), data, c.ttl).Err()
}

func rateKey(sourceCurrency, targetCurrency string) string {
	return "rate:" + sourceCurrency + ":" + targetCurrency
}
