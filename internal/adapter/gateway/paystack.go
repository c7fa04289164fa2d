// Package gateway contains the payment-provider clients. Both providers are
// plain JSON-over-HTTP APIs; payment confirmation arrives asynchronously on
// signed webhooks that the clients also verify.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/finbridge/remit/internal/usecase"
)

const defaultPaystackBaseURL = "https://api.paystack.co"

// Paystack initiates charges via the Paystack transaction API.
type Paystack struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// PaystackConfig configures the Paystack client.
type PaystackConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// NewPaystack creates a new Paystack client with a bounded request timeout.
func NewPaystack(cfg PaystackConfig) *Paystack {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultPaystackBaseURL
	}

	return &Paystack{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		secretKey:  cfg.SecretKey,
	}
}

type paystackInitializeRequest struct {
	Metadata  map[string]string `json:"metadata,omitempty"`
	Email     string            `json:"email"`
	Amount    string            `json:"amount"`
	Currency  string            `json:"currency"`
	Reference string            `json:"reference"`
}

type paystackInitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// InitiatePayment implements usecase.PaymentGateway. Paystack expects the
// amount in the currency's subunit.
func (p *Paystack) InitiatePayment(ctx context.Context, input usecase.InitiatePaymentInput) (*usecase.PaymentInitiation, error) {
	body, err := json.Marshal(paystackInitializeRequest{
		Email:     input.Email,
		Amount:    input.Amount.Mul(subunitFactor).StringFixed(0),
		Currency:  input.Currency,
		Reference: input.Reference,
		Metadata:  input.Metadata,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}
	defer resp.Body.Close()

	var parsed paystackInitializeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !parsed.Status {
		return nil, fmt.Errorf("paystack initialize failed: status %d: %s", resp.StatusCode, parsed.Message)
	}

	return &usecase.PaymentInitiation{
		AuthorizationURL:  parsed.Data.AuthorizationURL,
		ProviderReference: parsed.Data.Reference,
	}, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header: an
// HMAC-SHA512 of the raw body keyed with the secret key, hex encoded.
func (p *Paystack) VerifyWebhookSignature(payload []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}
