package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/finbridge/remit/internal/usecase"
)

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{3, 20 * time.Second},
		{4, 40 * time.Second},
		{5, 80 * time.Second},
		{6, 160 * time.Second},
		{7, 5 * time.Minute},
		{8, 5 * time.Minute},
		{20, 5 * time.Minute},
	}

	for _, tc := range tests {
		if got := retryDelay(tc.attempts); got != tc.want {
			t.Errorf("retryDelay(%d) = %v, want %v", tc.attempts, got, tc.want)
		}
	}
}

func TestQueueKeys(t *testing.T) {
	if got := readyKey("process-transaction"); got != "jobs:process-transaction:ready" {
		t.Errorf("readyKey = %q", got)
	}

	if got := delayedKey("auto-cancel"); got != "jobs:auto-cancel:delayed" {
		t.Errorf("delayedKey = %q", got)
	}

	if got := deadKey("process-transaction"); got != "jobs:process-transaction:dead" {
		t.Errorf("deadKey = %q", got)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	in := envelope{
		ID:   "job-1",
		Kind: usecase.JobProcessTransaction,
		Payload: usecase.JobPayload{
			TransactionID: "txn-1",
			Action:        usecase.ActionProcess,
		},
		Attempts:    2,
		MaxAttempts: 5,
		EnqueuedAt:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out envelope
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if out.ID != in.ID || out.Kind != in.Kind || out.Payload != in.Payload {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}

	if out.Attempts != in.Attempts || out.MaxAttempts != in.MaxAttempts {
		t.Errorf("attempts mismatch: got %d/%d, want %d/%d", out.Attempts, out.MaxAttempts, in.Attempts, in.MaxAttempts)
	}

	if !out.EnqueuedAt.Equal(in.EnqueuedAt) {
		t.Errorf("EnqueuedAt = %v, want %v", out.EnqueuedAt, in.EnqueuedAt)
	}
}
