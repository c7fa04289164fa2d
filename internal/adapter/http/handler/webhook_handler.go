package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/finbridge/remit/internal/infrastructure/metrics"
	"github.com/finbridge/remit/internal/usecase"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// TransactionFailer marks a transaction failed after a terminal gateway
// event.
type TransactionFailer interface {
	MarkFailed(ctx context.Context, id, reason string) error
}

// WebhookHandler receives payment confirmation callbacks from the gateways.
// A verified success event only enqueues the settlement job; the worker owns
// the actual state transition, so duplicate or late deliveries are harmless.
type WebhookHandler struct {
	gateways     map[string]usecase.PaymentGateway
	queue        usecase.Queue
	transactions TransactionFailer
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler. metrics may be nil.
func NewWebhookHandler(
	gateways map[string]usecase.PaymentGateway,
	queue usecase.Queue,
	transactions TransactionFailer,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		gateways:     gateways,
		queue:        queue,
		transactions: transactions,
		metrics:      m,
		logger:       logger,
	}
}

// paystackEvent is the subset of the Paystack event body we act on.
type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string            `json:"reference"`
		Metadata  map[string]string `json:"metadata"`
	} `json:"data"`
}

// Paystack handles Paystack webhook deliveries.
func (h *WebhookHandler) Paystack(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verify(w, r, "paystack", r.Header.Get("X-Paystack-Signature"))
	if !ok {
		return
	}

	var event paystackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.count("paystack", "bad_payload")
		writeError(w, http.StatusBadRequest, "invalid event body", err.Error())

		return
	}

	transactionID := event.Data.Metadata["transactionId"]

	switch event.Event {
	case "charge.success":
		h.enqueueProcess(r, "paystack", transactionID)
	case "charge.failed":
		h.markFailed(r, "paystack", transactionID, "Payment failed")
	default:
		h.logger.Debug().Str("event", event.Event).Msg("ignoring paystack event")
	}

	h.count("paystack", "ok")
	w.WriteHeader(http.StatusOK)
}

// stripeEvent is the subset of the Stripe event body we act on.
type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// Stripe handles Stripe webhook deliveries.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verify(w, r, "stripe", r.Header.Get("Stripe-Signature"))
	if !ok {
		return
	}

	var event stripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.count("stripe", "bad_payload")
		writeError(w, http.StatusBadRequest, "invalid event body", err.Error())

		return
	}

	transactionID := event.Data.Object.Metadata["transactionId"]

	switch event.Type {
	case "checkout.session.completed":
		h.enqueueProcess(r, "stripe", transactionID)
	case "checkout.session.expired":
		h.markFailed(r, "stripe", transactionID, "Checkout session expired")
	case "payment_intent.payment_failed":
		h.markFailed(r, "stripe", transactionID, "Payment failed")
	default:
		h.logger.Debug().Str("event", event.Type).Msg("ignoring stripe event")
	}

	h.count("stripe", "ok")
	w.WriteHeader(http.StatusOK)
}

// verify reads the raw body and checks the provider signature over it.
// Signature verification must see the exact bytes on the wire, so the body
// is read before any decoding.
func (h *WebhookHandler) verify(w http.ResponseWriter, r *http.Request, provider, signature string) ([]byte, bool) {
	gateway, ok := h.gateways[provider]
	if !ok {
		h.count(provider, "unknown_provider")
		writeError(w, http.StatusNotFound, "unknown provider", provider)

		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.count(provider, "bad_request")
		writeError(w, http.StatusBadRequest, "failed to read body", err.Error())

		return nil, false
	}

	if !gateway.VerifyWebhookSignature(body, signature) {
		h.count(provider, "invalid_signature")
		h.logger.Warn().Str("provider", provider).Msg("webhook signature mismatch")
		writeError(w, http.StatusUnauthorized, "invalid signature", "")

		return nil, false
	}

	return body, true
}

func (h *WebhookHandler) count(provider, result string) {
	if h.metrics != nil {
		h.metrics.WebhooksTotal.WithLabelValues(provider, result).Inc()
	}
}

func (h *WebhookHandler) enqueueProcess(r *http.Request, provider, transactionID string) {
	if transactionID == "" {
		h.logger.Warn().Str("provider", provider).Msg("success event without transaction id")
		return
	}

	err := h.queue.Enqueue(r.Context(), usecase.JobProcessTransaction, usecase.JobPayload{
		TransactionID: transactionID,
		Action:        usecase.ActionProcess,
	}, usecase.EnqueueOptions{MaxAttempts: usecase.DefaultJobAttempts})
	if err != nil {
		// The scheduler sweep re-enqueues pending transactions, so a lost
		// job delays settlement rather than dropping it.
		h.logger.Error().Err(err).
			Str("provider", provider).
			Str("transaction_id", transactionID).
			Msg("failed to enqueue process job")

		return
	}

	h.logger.Info().
		Str("provider", provider).
		Str("transaction_id", transactionID).
		Msg("payment confirmed, settlement enqueued")
}

func (h *WebhookHandler) markFailed(r *http.Request, provider, transactionID, reason string) {
	if transactionID == "" {
		return
	}

	if err := h.transactions.MarkFailed(r.Context(), transactionID, reason); err != nil {
		h.logger.Error().Err(err).
			Str("provider", provider).
			Str("transaction_id", transactionID).
			Msg("failed to mark transaction failed")

		return
	}

	h.logger.Info().
		Str("provider", provider).
		Str("transaction_id", transactionID).
		Str("reason", reason).
		Msg("payment failed, transaction marked failed")
}
