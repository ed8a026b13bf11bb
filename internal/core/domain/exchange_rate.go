package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the conversion rate between two currencies, effective from a date
// until superseded by a later rate for the same pair.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}

// Inverse returns the rate for the opposite direction of the pair.
// A zero rate has no inverse and is returned unchanged.
func (r ExchangeRate) Inverse() ExchangeRate {
	inv := r
	inv.FromCurrencyCode, inv.ToCurrencyCode = r.ToCurrencyCode, r.FromCurrencyCode
	if !r.Rate.IsZero() {
		inv.Rate = decimal.NewFromInt(1).Div(r.Rate)
	}
	return inv
}
