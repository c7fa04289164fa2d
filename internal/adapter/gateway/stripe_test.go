package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbridge/remit/internal/usecase"
)

func stripeSign(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestStripe_InitiatePayment(t *testing.T) {
	var form map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		form = r.PostForm

		json.NewEncoder(w).Encode(map[string]any{
			"id":  "cs_test_123",
			"url": "https://checkout.stripe.com/pay/cs_test_123",
		})
	}))
	defer srv.Close()

	customerID := "cus_42"
	s := NewStripe(StripeConfig{
		BaseURL:    srv.URL,
		SecretKey:  "sk_test_secret",
		SuccessURL: "https://example.com/done",
		CancelURL:  "https://example.com/cancel",
	})

	initiation, err := s.InitiatePayment(context.Background(), usecase.InitiatePaymentInput{
		Email:       "sender@example.com",
		CustomerID:  &customerID,
		Amount:      decimal.RequireFromString("42.99"),
		Currency:    "USD",
		Reference:   "RM-02",
		Description: "Remittance",
		Metadata:    map[string]string{"transactionId": "txn-2"},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_123", initiation.AuthorizationURL)
	assert.Equal(t, "cs_test_123", initiation.ProviderReference)

	assert.Equal(t, "payment", form["mode"][0])
	assert.Equal(t, "4299", form["line_items[0][price_data][unit_amount]"][0])
	assert.Equal(t, "usd", form["line_items[0][price_data][currency]"][0])
	assert.Equal(t, "cus_42", form["customer"][0])
	assert.Equal(t, "txn-2", form["metadata[transactionId]"][0])
	assert.Equal(t, "txn-2", form["payment_intent_data[metadata][transactionId]"][0])
}

func TestStripe_VerifyWebhookSignature(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	payload := []byte(`{"type":"checkout.session.completed"}`)

	s := NewStripe(StripeConfig{WebhookSecret: "whsec_test"})
	s.now = func() time.Time { return now }

	t.Run("valid signature", func(t *testing.T) {
		header := stripeSign("whsec_test", now.Unix(), payload)
		assert.True(t, s.VerifyWebhookSignature(payload, header))
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := stripeSign("whsec_other", now.Unix(), payload)
		assert.False(t, s.VerifyWebhookSignature(payload, header))
	})

	t.Run("stale timestamp", func(t *testing.T) {
		header := stripeSign("whsec_test", now.Add(-6*time.Minute).Unix(), payload)
		assert.False(t, s.VerifyWebhookSignature(payload, header))
	})

	t.Run("future timestamp beyond tolerance", func(t *testing.T) {
		header := stripeSign("whsec_test", now.Add(6*time.Minute).Unix(), payload)
		assert.False(t, s.VerifyWebhookSignature(payload, header))
	})

	t.Run("tampered payload", func(t *testing.T) {
		header := stripeSign("whsec_test", now.Unix(), payload)
		assert.False(t, s.VerifyWebhookSignature([]byte(`{}`), header))
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.False(t, s.VerifyWebhookSignature(payload, "v1=abc"))
		assert.False(t, s.VerifyWebhookSignature(payload, ""))
		assert.False(t, s.VerifyWebhookSignature(payload, "t=notanumber,v1=abc"))
	})
}
