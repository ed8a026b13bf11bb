package domain

import "github.com/shopspring/decimal"

// InvoiceLine is a single priced line of an invoice, booked on AccountID.
// Its company-currency amount is always computed, never stored.
type InvoiceLine struct {
	InvoiceLineID string          `json:"invoiceLineID"`
	InvoiceID     string          `json:"invoiceID"`
	Description   string          `json:"description"`
	AccountID     string          `json:"accountID"` // revenue or expense account
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Amount        decimal.Decimal `json:"amount"` // Quantity * UnitPrice rounded to the invoice currency
	Sequence      int             `json:"sequence"`
}

// ComputeAmount sets Amount from quantity and unit price, rounded in currency.
func (l *InvoiceLine) ComputeAmount(currency Currency) {
	l.Amount = currency.Round(l.Quantity.Mul(l.UnitPrice))
}
