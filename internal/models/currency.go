package models

import "github.com/shopspring/decimal"

// Currency represents a supported currency.
type Currency struct {
	CurrencyCode string              `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string              `json:"symbol"`       // e.g., "$"
	Name         string              `json:"name"`         // e.g., "US Dollar"
	Precision    int                 `json:"precision"`    // number of decimal digits
	Rounding     decimal.NullDecimal `json:"rounding"`     // explicit rounding step, NULL means 10^-precision
	AuditFields
}
