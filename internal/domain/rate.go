package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate is an exchange rate for a currency pair at a point in time.
type Rate struct {
	AsOf           time.Time       `json:"asOf"`
	SourceCurrency string          `json:"sourceCurrency"`
	TargetCurrency string          `json:"targetCurrency"`
	Rate           decimal.Decimal `json:"rate"`
}
