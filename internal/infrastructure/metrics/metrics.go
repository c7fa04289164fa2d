package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionsInitiated prometheus.Counter
	TransactionsSettled   prometheus.Counter
	TransactionsFailed    *prometheus.CounterVec
	TransactionsCancelled prometheus.Counter
	SettlementDuration    prometheus.Histogram
	TransactionAmount     *prometheus.HistogramVec

	// Job metrics
	JobsProcessed *prometheus.CounterVec
	JobDuration   *prometheus.HistogramVec
	JobsDead      *prometheus.CounterVec

	// Gateway metrics
	GatewayRequests *prometheus.CounterVec
	WebhooksTotal   *prometheus.CounterVec

	// Exchange rate metrics
	RateLookups    *prometheus.CounterVec
	RateCacheMiss  prometheus.Counter
	RateFetchError prometheus.Counter
}

// New creates all metrics and registers them on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics and registers them on reg. Tests use it with a
// private registry so parallel suites never fight over registration.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Transaction metrics
		TransactionsInitiated: factory.NewCounter(prometheus.CounterOpts{
			Name: "remit_transactions_initiated_total",
			Help: "Total number of transactions initiated",
		}),
		TransactionsSettled: factory.NewCounter(prometheus.CounterOpts{
			Name: "remit_transactions_settled_total",
			Help: "Total number of transactions settled",
		}),
		TransactionsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remit_transactions_failed_total",
				Help: "Total number of transactions failed by reason",
			},
			[]string{"reason"},
		),
		TransactionsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "remit_transactions_cancelled_total",
			Help: "Total number of transactions auto-cancelled",
		}),
		SettlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "remit_settlement_duration_seconds",
			Help:    "Duration of settlement operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remit_transaction_amount",
				Help:    "Source amounts of initiated transactions",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"currency"},
		),

		// Job metrics
		JobsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remit_jobs_processed_total",
				Help: "Total jobs processed by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remit_job_duration_seconds",
				Help:    "Job handler duration by kind",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		JobsDead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remit_jobs_dead_total",
				Help: "Total jobs moved to the dead set after exhausting retries",
			},
			[]string{"kind"},
		),

		// Gateway metrics
		GatewayRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remit_gateway_requests_total",
				Help: "Total payment gateway requests by provider and status",
			},
			[]string{"provider", "status"},
		),
		WebhooksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remit_webhooks_total",
				Help: "Total webhook deliveries by provider and result",
			},
			[]string{"provider", "result"},
		),

		// Exchange rate metrics
		RateLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remit_rate_lookups_total",
				Help: "Total exchange rate lookups by source",
			},
			[]string{"source"},
		),
		RateCacheMiss: factory.NewCounter(prometheus.CounterOpts{
			Name: "remit_rate_cache_misses_total",
			Help: "Total exchange rate cache misses",
		}),
		RateFetchError: factory.NewCounter(prometheus.CounterOpts{
			Name: "remit_rate_fetch_errors_total",
			Help: "Total exchange rate API failures",
		}),
	}
}
