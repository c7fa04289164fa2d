package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/usecase"
)

const defaultStripeBaseURL = "https://api.stripe.com"

// subunitFactor converts major units to the smallest currency unit both
// providers charge in.
var subunitFactor = decimal.NewFromInt(100)

// Stripe initiates charges through Checkout Sessions.
type Stripe struct {
	httpClient    *http.Client
	baseURL       string
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string
	tolerance     time.Duration
	now           func() time.Time
}

// StripeConfig configures the Stripe client.
type StripeConfig struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Timeout       time.Duration
}

// NewStripe creates a new Stripe client with a bounded request timeout.
func NewStripe(cfg StripeConfig) *Stripe {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultStripeBaseURL
	}

	return &Stripe{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		baseURL:       cfg.BaseURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		tolerance:     5 * time.Minute,
		now:           time.Now,
	}
}

type stripeSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type stripeErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// InitiatePayment implements usecase.PaymentGateway by creating a Checkout
// Session. Stripe requires the sender's customer ID (ExternalID on the
// account) to attach the charge.
func (s *Stripe) InitiatePayment(ctx context.Context, input usecase.InitiatePaymentInput) (*usecase.PaymentInitiation, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", s.successURL)
	form.Set("cancel_url", s.cancelURL)
	form.Set("client_reference_id", input.Reference)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(input.Currency))
	form.Set("line_items[0][price_data][unit_amount]", input.Amount.Mul(subunitFactor).StringFixed(0))
	form.Set("line_items[0][price_data][product_data][name]", input.Description)

	if input.CustomerID != nil {
		form.Set("customer", *input.CustomerID)
	} else {
		form.Set("customer_email", input.Email)
	}

	for k, v := range input.Metadata {
		form.Set("metadata["+k+"]", v)
		form.Set("payment_intent_data[metadata]["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr stripeErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)

		return nil, fmt.Errorf("stripe checkout session failed: status %d: %s", resp.StatusCode, apiErr.Error.Message)
	}

	var session stripeSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}

	return &usecase.PaymentInitiation{
		AuthorizationURL:  session.URL,
		ProviderReference: session.ID,
	}, nil
}

// VerifyWebhookSignature checks the Stripe-Signature header: elements
// "t=<unix>" and "v1=<hex hmac>", where the HMAC-SHA256 is computed over
// "<t>.<body>" with the webhook secret. Timestamps outside the tolerance
// window are rejected to blunt replay.
func (s *Stripe) VerifyWebhookSignature(payload []byte, signatureHeader string) bool {
	var timestamp string
	var signatures []string

	for _, element := range strings.Split(signatureHeader, ",") {
		parts := strings.SplitN(strings.TrimSpace(element), "=", 2)
		if len(parts) != 2 {
			continue
		}

		switch parts[0] {
		case "t":
			timestamp = parts[1]
		case "v1":
			signatures = append(signatures, parts[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	age := s.now().Sub(time.Unix(ts, 0))
	if age > s.tolerance || age < -s.tolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return true
		}
	}

	return false
}
