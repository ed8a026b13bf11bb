package domain

import "github.com/shopspring/decimal"

// DefaultPrecision is used when a company or its currency is not known.
const DefaultPrecision = 2

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string          `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string          `json:"symbol"`       // e.g., "$"
	Name         string          `json:"name"`         // e.g., "US Dollar"
	Precision    int             `json:"precision"`    // Number of decimal digits (2 for USD, 0 for JPY)
	Rounding     decimal.Decimal `json:"rounding"`     // Optional rounding step (e.g. 0.05); zero means 10^-Precision
	AuditFields
}

// RoundingStep returns the smallest representable amount of the currency.
func (c Currency) RoundingStep() decimal.Decimal {
	if c.Rounding.IsPositive() {
		return c.Rounding
	}
	return decimal.New(1, -int32(c.Precision))
}

// Round rounds amount half-to-even to the currency rounding step.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	step := c.RoundingStep()
	return amount.Div(step).RoundBank(0).Mul(step).Round(int32(c.Precision))
}

// IsZero reports whether amount rounds to zero in this currency.
func (c Currency) IsZero(amount decimal.Decimal) bool {
	return c.Round(amount).IsZero()
}
