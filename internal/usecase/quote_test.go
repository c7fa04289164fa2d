package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/domain"
	"github.com/finbridge/remit/internal/usecase"
	"github.com/finbridge/remit/internal/usecase/mocks"
)

func fixedRate(rate string) mocks.MockRateProviderFunc {
	return func(ctx context.Context, src, dst string) (*domain.Rate, error) {
		return &domain.Rate{
			AsOf:           time.Now().UTC(),
			SourceCurrency: src,
			TargetCurrency: dst,
			Rate:           decimal.RequireFromString(rate),
		}, nil
	}
}

func TestQuoter_Quote(t *testing.T) {
	tests := []struct {
		name       string
		amount     string
		rate       string
		source     string
		target     string
		isLocal    bool
		wantFee    string
		wantTarget string
	}{
		{
			name:   "cross-border USD to NGN",
			amount: "100", rate: "1500",
			source: "USD", target: "NGN",
			wantFee:    "3",
			wantTarget: "145500",
		},
		{
			name:   "local transfer uses lower fee",
			amount: "100", rate: "1",
			source: "USD", target: "USD", isLocal: true,
			wantFee:    "1.5",
			wantTarget: "98.5",
		},
		{
			name:   "fee rounds half up",
			amount: "10.01", rate: "1",
			source: "USD", target: "USD", isLocal: true,
			// 10.01 * 0.015 = 0.15015 -> 0.15
			wantFee:    "0.15",
			wantTarget: "9.86",
		},
		{
			name:   "target amount rounds half up",
			amount: "33.33", rate: "1.117",
			source: "USD", target: "EUR",
			// fee: 33.33 * 0.03 = 0.9999 -> 1.00
			// target: 32.33 * 1.117 = 36.112... -> 36.11
			wantFee:    "1",
			wantTarget: "36.11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := usecase.NewQuoter(fixedRate(tt.rate), usecase.DefaultFeePolicy(), usecase.DefaultMinimumAmounts())

			quote, err := q.Quote(context.Background(), usecase.QuoteInput{
				SourceCurrency: tt.source,
				TargetCurrency: tt.target,
				Amount:         decimal.RequireFromString(tt.amount),
				IsLocal:        tt.isLocal,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !quote.Fee.Equal(decimal.RequireFromString(tt.wantFee)) {
				t.Errorf("fee = %s, want %s", quote.Fee, tt.wantFee)
			}

			if !quote.TargetAmount.Equal(decimal.RequireFromString(tt.wantTarget)) {
				t.Errorf("target amount = %s, want %s", quote.TargetAmount, tt.wantTarget)
			}
		})
	}
}

func TestQuoter_Quote_BelowMinimum(t *testing.T) {
	q := usecase.NewQuoter(fixedRate("1500"), usecase.DefaultFeePolicy(), usecase.DefaultMinimumAmounts())

	// 0.10 USD nets out well under the 500 NGN minimum.
	_, err := q.Quote(context.Background(), usecase.QuoteInput{
		SourceCurrency: "USD",
		TargetCurrency: "NGN",
		Amount:         decimal.RequireFromString("0.10"),
	})

	if !errors.Is(err, domain.ErrAmountTooSmall) {
		t.Errorf("expected ErrAmountTooSmall, got %v", err)
	}
}

func TestQuoter_Quote_UnknownCurrencyMinimumDefaultsToOne(t *testing.T) {
	minimums := usecase.DefaultMinimumAmounts()

	if min := minimums.Minimum("XXX"); !min.Equal(decimal.NewFromInt(1)) {
		t.Errorf("minimum for unknown currency = %s, want 1", min)
	}
}

func TestQuoter_Quote_InvalidAmount(t *testing.T) {
	q := usecase.NewQuoter(fixedRate("1"), usecase.DefaultFeePolicy(), usecase.DefaultMinimumAmounts())

	_, err := q.Quote(context.Background(), usecase.QuoteInput{
		SourceCurrency: "USD",
		TargetCurrency: "USD",
		Amount:         decimal.Zero,
	})

	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestQuoter_Quote_RateUnavailable(t *testing.T) {
	failing := mocks.MockRateProviderFunc(func(ctx context.Context, src, dst string) (*domain.Rate, error) {
		return nil, domain.ErrRateUnavailable
	})

	q := usecase.NewQuoter(failing, usecase.DefaultFeePolicy(), usecase.DefaultMinimumAmounts())

	_, err := q.Quote(context.Background(), usecase.QuoteInput{
		SourceCurrency: "USD",
		TargetCurrency: "NGN",
		Amount:         decimal.NewFromInt(100),
	})

	if !errors.Is(err, domain.ErrRateUnavailable) {
		t.Errorf("expected ErrRateUnavailable, got %v", err)
	}
}
