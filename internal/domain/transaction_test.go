package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionStatus_Terminal(t *testing.T) {
	tests := []struct {
		status   TransactionStatus
		terminal bool
	}{
		{StatusPending, false},
		{StatusProcessing, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestTransaction_Expired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	window := 10 * time.Minute

	tests := []struct {
		name      string
		createdAt time.Time
		expired   bool
	}{
		{"fresh", now.Add(-1 * time.Minute), false},
		{"exactly at window", now.Add(-window), false},
		{"just past window", now.Add(-window - time.Second), true},
		{"hours old", now.Add(-3 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := &Transaction{CreatedAt: tt.createdAt}
			if got := txn.Expired(now, window); got != tt.expired {
				t.Errorf("Expired() = %v, want %v", got, tt.expired)
			}
		})
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		txn     Transaction
		wantErr error
	}{
		{
			name: "valid",
			txn: Transaction{
				SenderID:     "u1",
				ReceiverID:   "u2",
				SourceAmount: decimal.NewFromInt(100),
			},
		},
		{
			name: "same party",
			txn: Transaction{
				SenderID:     "u1",
				ReceiverID:   "u1",
				SourceAmount: decimal.NewFromInt(100),
			},
			wantErr: ErrSameParty,
		},
		{
			name: "zero amount",
			txn: Transaction{
				SenderID:     "u1",
				ReceiverID:   "u2",
				SourceAmount: decimal.Zero,
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "negative amount",
			txn: Transaction{
				SenderID:     "u1",
				ReceiverID:   "u2",
				SourceAmount: decimal.NewFromInt(-5),
			},
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
