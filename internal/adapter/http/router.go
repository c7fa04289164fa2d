package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/finbridge/remit/internal/adapter/http/handler"
	"github.com/finbridge/remit/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransferHandler *handler.TransferHandler
	WalletHandler   *handler.WalletHandler
	WebhookHandler  *handler.WebhookHandler
	HealthHandler   *handler.HealthHandler
	Logger          zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Gateway callbacks are unauthenticated: signature verification inside
	// the handler is the only gate.
	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/paystack", cfg.WebhookHandler.Paystack)
		r.Post("/stripe", cfg.WebhookHandler.Stripe)
	})

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Get("/{id}", cfg.TransferHandler.Get)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Post("/fund", cfg.WalletHandler.Fund)
			r.Get("/balance", cfg.WalletHandler.Balance)
		})
	})

	return r
}
