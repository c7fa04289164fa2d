package dto

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/usecase"
)

func TestInitiateTransferRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name        string
		request     InitiateTransferRequest
		want        usecase.InitiateInput
		expectError bool
	}{
		{
			name: "valid amount",
			request: InitiateTransferRequest{
				UserID:         "user-1",
				Amount:         "100.50",
				Currency:       "USD",
				TargetCurrency: "NGN",
				ReceiverID:     "user-2",
			},
			want: usecase.InitiateInput{
				SenderID:       "user-1",
				ReceiverID:     "user-2",
				SourceCurrency: "USD",
				TargetCurrency: "NGN",
				Amount:         decimal.RequireFromString("100.50"),
			},
		},
		{
			name: "receiver by account number",
			request: InitiateTransferRequest{
				UserID:                "user-1",
				Amount:                "25",
				Currency:              "USD",
				TargetCurrency:        "USD",
				ReceiverAccountNumber: "1000000002",
			},
			want: usecase.InitiateInput{
				SenderID:              "user-1",
				ReceiverAccountNumber: "1000000002",
				SourceCurrency:        "USD",
				TargetCurrency:        "USD",
				Amount:                decimal.RequireFromString("25"),
			},
		},
		{
			name: "invalid amount",
			request: InitiateTransferRequest{
				UserID: "user-1",
				Amount: "not-a-number",
			},
			expectError: true,
		},
		{
			name: "empty amount",
			request: InitiateTransferRequest{
				UserID: "user-1",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToUseCaseInput()
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error, got none")
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.SenderID != tt.want.SenderID ||
				got.ReceiverID != tt.want.ReceiverID ||
				got.ReceiverAccountNumber != tt.want.ReceiverAccountNumber ||
				got.SourceCurrency != tt.want.SourceCurrency ||
				got.TargetCurrency != tt.want.TargetCurrency {
				t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, tt.want)
			}

			if !got.Amount.Equal(tt.want.Amount) {
				t.Fatalf("Amount = %s, want %s", got.Amount, tt.want.Amount)
			}
		})
	}
}
