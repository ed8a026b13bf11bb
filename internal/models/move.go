package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Move is the moves table row.
type Move struct {
	MoveID       string    `json:"moveID"`
	CompanyID    string    `json:"companyID"`
	InvoiceID    *string   `json:"invoiceID"`
	MoveDate     time.Time `json:"moveDate"`
	CurrencyCode string    `json:"currencyCode"`
	Description  string    `json:"description"`
	AuditFields
}

// MoveLine is the move_lines table row. Debit and credit are in the company currency.
type MoveLine struct {
	MoveLineID           string              `json:"moveLineID"`
	MoveID               string              `json:"moveID"`
	AccountID            string              `json:"accountID"`
	Debit                decimal.Decimal     `json:"debit"`
	Credit               decimal.Decimal     `json:"credit"`
	AmountSecondCurrency decimal.NullDecimal `json:"amountSecondCurrency"`
	SecondCurrencyCode   *string             `json:"secondCurrencyCode"`
	Description          string              `json:"description"`
}
