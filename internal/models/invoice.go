package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the invoices table row. The company_* columns are NULL until the
// invoice is validated (supplier invoices) or posted.
type Invoice struct {
	InvoiceID            string              `json:"invoiceID"`
	CompanyID            string              `json:"companyID"`
	Number               string              `json:"number"`
	Type                 string              `json:"type"`
	State                string              `json:"state"`
	CurrencyCode         string              `json:"currencyCode"`
	InvoiceDate          *time.Time          `json:"invoiceDate"`
	AccountingDate       *time.Time          `json:"accountingDate"`
	AccountID            string              `json:"accountID"`
	MoveID               *string             `json:"moveID"`
	Description          string              `json:"description"`
	CompanyUntaxedAmount decimal.NullDecimal `json:"companyUntaxedAmount"`
	CompanyTaxAmount     decimal.NullDecimal `json:"companyTaxAmount"`
	CompanyTotalAmount   decimal.NullDecimal `json:"companyTotalAmount"`
	AuditFields
}

// InvoiceLine is the invoice_lines table row.
type InvoiceLine struct {
	InvoiceLineID string          `json:"invoiceLineID"`
	InvoiceID     string          `json:"invoiceID"`
	Description   string          `json:"description"`
	AccountID     string          `json:"accountID"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Amount        decimal.Decimal `json:"amount"`
	Sequence      int             `json:"sequence"`
}

// InvoiceTax is the invoice_taxes table row.
type InvoiceTax struct {
	InvoiceTaxID       string              `json:"invoiceTaxID"`
	InvoiceID          string              `json:"invoiceID"`
	Description        string              `json:"description"`
	AccountID          string              `json:"accountID"`
	Base               decimal.Decimal     `json:"base"`
	Amount             decimal.Decimal     `json:"amount"`
	CompanyBaseCache   decimal.NullDecimal `json:"companyBaseCache"`
	CompanyAmountCache decimal.NullDecimal `json:"companyAmountCache"`
	Sequence           int                 `json:"sequence"`
}
