package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/remit/internal/usecase"
)

func paystackSign(secret string, payload []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaystack_InitiatePayment(t *testing.T) {
	var captured paystackInitializeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         captured.Reference,
			},
		})
	}))
	defer srv.Close()

	p := NewPaystack(PaystackConfig{BaseURL: srv.URL, SecretKey: "sk_test_secret", Timeout: 5 * time.Second})

	initiation, err := p.InitiatePayment(context.Background(), usecase.InitiatePaymentInput{
		Email:     "sender@example.com",
		Amount:    decimal.RequireFromString("100.50"),
		Currency:  "NGN",
		Reference: "RM-01",
		Metadata:  map[string]string{"transactionId": "txn-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/abc123", initiation.AuthorizationURL)
	assert.Equal(t, "RM-01", initiation.ProviderReference)

	// Paystack charges in subunits.
	assert.Equal(t, "10050", captured.Amount)
	assert.Equal(t, "txn-1", captured.Metadata["transactionId"])
}

func TestPaystack_InitiatePayment_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "Invalid key"})
	}))
	defer srv.Close()

	p := NewPaystack(PaystackConfig{BaseURL: srv.URL, SecretKey: "bad", Timeout: 5 * time.Second})

	_, err := p.InitiatePayment(context.Background(), usecase.InitiatePaymentInput{
		Email:    "sender@example.com",
		Amount:   decimal.NewFromInt(10),
		Currency: "NGN",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid key")
}

func TestPaystack_VerifyWebhookSignature(t *testing.T) {
	p := NewPaystack(PaystackConfig{SecretKey: "sk_test_secret"})
	payload := []byte(`{"event":"charge.success"}`)

	assert.True(t, p.VerifyWebhookSignature(payload, paystackSign("sk_test_secret", payload)))
	assert.False(t, p.VerifyWebhookSignature(payload, paystackSign("wrong-secret", payload)))
	assert.False(t, p.VerifyWebhookSignature(payload, ""))
	assert.False(t, p.VerifyWebhookSignature([]byte(`tampered`), paystackSign("sk_test_secret", payload)))
}
