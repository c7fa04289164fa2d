package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/domain"
)

// FeePolicy decides the service fee rate for a transfer. It is pluggable so
// that provider-specific pricing can be introduced without touching the
// calculator.
type FeePolicy interface {
	FeeRate(isLocal bool, provider string) decimal.Decimal
}

// PercentFeePolicy charges a flat percentage: one rate for local transfers,
// another for cross-border ones. The provider is ignored.
type PercentFeePolicy struct {
	Local       decimal.Decimal
	CrossBorder decimal.Decimal
}

// DefaultFeePolicy is 1.5% local, 3% cross-border.
func DefaultFeePolicy() PercentFeePolicy {
	return PercentFeePolicy{
		Local:       decimal.NewFromFloat(0.015),
		CrossBorder: decimal.NewFromFloat(0.03),
	}
}

func (p PercentFeePolicy) FeeRate(isLocal bool, provider string) decimal.Decimal {
	if isLocal {
		return p.Local
	}

	return p.CrossBorder
}

// MinimumAmounts maps a target currency code to the smallest target amount
// this service will pay out.
type MinimumAmounts map[string]decimal.Decimal

// DefaultMinimumAmounts covers the supported payout corridors. Currencies
// not listed fall back to a minimum of 1 unit.
func DefaultMinimumAmounts() MinimumAmounts {
	m := MinimumAmounts{}
	for code, min := range map[string]int64{
		"USD": 5, "NGN": 500, "EUR": 3, "GBP": 4, "CAD": 5, "AUD": 5,
		"JPY": 500, "CNY": 30, "INR": 300, "BRL": 10, "MXN": 100,
		"KRW": 5000, "ZAR": 50, "AED": 20, "SGD": 5, "SEK": 30,
		"CHF": 3, "PLN": 10, "NZD": 5, "MYR": 15, "PHP": 250,
		"THB": 150, "IDR": 75000, "VND": 100000, "EGP": 80, "TRY": 50,
		"COP": 20000, "PEN": 20, "CLP": 2000, "KES": 500, "XOF": 3000,
		"UGX": 15000, "GHS": 30, "TWD": 200, "HKD": 30, "ILS": 15,
		"SAR": 20, "QAR": 20, "KWD": 2, "BHD": 2, "OMR": 1,
		"LBP": 30000, "MAD": 50, "DZD": 500, "TND": 20,
	} {
		m[code] = decimal.NewFromInt(min)
	}

	return m
}

// Minimum returns the minimum payout for currency, defaulting to 1.
func (m MinimumAmounts) Minimum(currency string) decimal.Decimal {
	if min, ok := m[currency]; ok {
		return min
	}

	return decimal.NewFromInt(1)
}

// Quote is the calculated breakdown of a transfer: what the sender pays,
// what the service keeps, and what the receiver gets.
type Quote struct {
	SourceCurrency string
	TargetCurrency string
	SourceAmount   decimal.Decimal
	Fee            decimal.Decimal
	TargetAmount   decimal.Decimal
	Rate           decimal.Decimal
}

// Quoter computes transfer amounts with decimal-exact arithmetic.
//
// Rounding is round-half-up to 2 decimal places, applied to the fee and to
// the target amount. The rate itself is never rounded.
type Quoter struct {
	rates    RateProvider
	fees     FeePolicy
	minimums MinimumAmounts
}

// NewQuoter creates a new Quoter.
func NewQuoter(rates RateProvider, fees FeePolicy, minimums MinimumAmounts) *Quoter {
	return &Quoter{
		rates:    rates,
		fees:     fees,
		minimums: minimums,
	}
}

// QuoteInput describes the transfer to price.
type QuoteInput struct {
	SourceCurrency string
	TargetCurrency string
	Provider       string
	Amount         decimal.Decimal
	IsLocal        bool
}

// Quote prices a transfer: fee = amount * feeRate, then
// targetAmount = round2((amount - fee) * rate). Returns ErrAmountTooSmall
// when the payout lands below the target currency's minimum.
func (q *Quoter) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	rate, err := q.rates.GetRate(ctx, input.SourceCurrency, input.TargetCurrency)
	if err != nil {
		return nil, err
	}

	feeRate := q.fees.FeeRate(input.IsLocal, input.Provider)
	fee := input.Amount.Mul(feeRate).Round(2)
	targetAmount := input.Amount.Sub(fee).Mul(rate.Rate).Round(2)

	if targetAmount.LessThan(q.minimums.Minimum(input.TargetCurrency)) {
		return nil, domain.ErrAmountTooSmall
	}

	return &Quote{
		SourceCurrency: input.SourceCurrency,
		TargetCurrency: input.TargetCurrency,
		SourceAmount:   input.Amount,
		Fee:            fee,
		TargetAmount:   targetAmount,
		Rate:           rate.Rate,
	}, nil
}
