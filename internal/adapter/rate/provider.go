package rate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	redisrepo "github.com/finbridge/remit/internal/adapter/repository/redis"
	"github.com/finbridge/remit/internal/domain"
	"github.com/finbridge/remit/internal/infrastructure/metrics"
)

// Provider resolves exchange rates through the Redis cache, falling back to
// the live FX API on a miss and caching the result.
type Provider struct {
	cache   *redisrepo.RateCache
	api     *APIClient
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewProvider creates a new Provider. metrics may be nil.
func NewProvider(cache *redisrepo.RateCache, api *APIClient, m *metrics.Metrics, logger zerolog.Logger) *Provider {
	return &Provider{
		cache:   cache,
		api:     api,
		metrics: m,
		logger:  logger,
	}
}

// GetRate implements usecase.RateProvider.
func (p *Provider) GetRate(ctx context.Context, sourceCurrency, targetCurrency string) (*domain.Rate, error) {
	cached, err := p.cache.Get(ctx, sourceCurrency, targetCurrency)
	if err == nil {
		if p.metrics != nil {
			p.metrics.RateLookups.WithLabelValues("cache").Inc()
		}

		return cached, nil
	}

	if err == redisrepo.ErrRateCacheMiss {
		if p.metrics != nil {
			p.metrics.RateCacheMiss.Inc()
		}
	} else {
		// A broken cache must not block transfers; fall through to the API.
		p.logger.Warn().Err(err).Msg("rate cache read failed")
	}

	rate, err := p.api.FetchPairRate(ctx, sourceCurrency, targetCurrency)
	if err != nil {
		if p.metrics != nil {
			p.metrics.RateFetchError.Inc()
		}

		return nil, fmt.Errorf("%w: %v", domain.ErrRateUnavailable, err)
	}

	if p.metrics != nil {
		p.metrics.RateLookups.WithLabelValues("api").Inc()
	}

	if err := p.cache.Set(ctx, rate); err != nil {
		p.logger.Warn().Err(err).Msg("rate cache write failed")
	}

	return rate, nil
}

// APIClient calls the live exchange-rate API.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewAPIClient creates a new APIClient with a bounded request timeout.
func NewAPIClient(baseURL, apiKey string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &APIClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type pairRateResponse struct {
	Result         string          `json:"result"`
	ErrorType      string          `json:"error-type"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
}

// FetchPairRate fetches the live rate for one currency pair.
func (c *APIClient) FetchPairRate(ctx context.Context, sourceCurrency, targetCurrency string) (*domain.Rate, error) {
	endpoint := fmt.Sprintf("%s/%s/pair/%s/%s",
		c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(sourceCurrency), url.PathEscape(targetCurrency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate API returned status %d", resp.StatusCode)
	}

	var body pairRateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	if body.Result != "success" {
		return nil, fmt.Errorf("exchange rate API error: %s", body.ErrorType)
	}

	return &domain.Rate{
		SourceCurrency: sourceCurrency,
		TargetCurrency: targetCurrency,
		Rate:           body.ConversionRate,
		AsOf:           time.Now().UTC(),
	}, nil
}
