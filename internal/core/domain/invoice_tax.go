package domain

import "github.com/shopspring/decimal"

// InvoiceTax is a tax line of an invoice. Base and Amount are in the invoice currency.
// The cache fields are only used when tax-line amounts are stored.
type InvoiceTax struct {
	InvoiceTaxID       string           `json:"invoiceTaxID"`
	InvoiceID          string           `json:"invoiceID"`
	Description        string           `json:"description"`
	AccountID          string           `json:"accountID"`
	Base               decimal.Decimal  `json:"base"`
	Amount             decimal.Decimal  `json:"amount"`
	CompanyBaseCache   *decimal.Decimal `json:"companyBaseCache"`
	CompanyAmountCache *decimal.Decimal `json:"companyAmountCache"`
	Sequence           int              `json:"sequence"`
}

// ClearCompanyCache drops the cached company-currency values.
func (t *InvoiceTax) ClearCompanyCache() {
	t.CompanyBaseCache = nil
	t.CompanyAmountCache = nil
}

// TaxCompanyAmounts is the company-currency value of a tax line.
type TaxCompanyAmounts struct {
	InvoiceTaxID  string          `json:"invoiceTaxID"`
	CompanyBase   decimal.Decimal `json:"companyBase"`
	CompanyAmount decimal.Decimal `json:"companyAmount"`
}

// TaxAmountStrategy selects how tax-line company amounts are produced.
type TaxAmountStrategy string

const (
	// TaxAmountsLive converts tax lines on every read.
	TaxAmountsLive TaxAmountStrategy = "live"
	// TaxAmountsCached stores tax-line company amounts when the invoice is posted.
	TaxAmountsCached TaxAmountStrategy = "cached"
)

// ParseTaxAmountStrategy maps a configuration value to a strategy. Empty means live.
func ParseTaxAmountStrategy(value string) (TaxAmountStrategy, bool) {
	switch TaxAmountStrategy(value) {
	case "", TaxAmountsLive:
		return TaxAmountsLive, true
	case TaxAmountsCached:
		return TaxAmountsCached, true
	}
	return "", false
}
