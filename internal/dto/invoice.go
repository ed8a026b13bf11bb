package dto

import (
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest describes one line of an invoice.
type InvoiceLineRequest struct {
	Description string          `json:"description"`
	AccountID   string          `json:"accountID" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
}

// InvoiceTaxRequest describes one tax line of an invoice.
type InvoiceTaxRequest struct {
	Description string          `json:"description"`
	AccountID   string          `json:"accountID" binding:"required"`
	Base        decimal.Decimal `json:"base"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// CreateInvoiceRequest defines the data needed to create a draft invoice.
type CreateInvoiceRequest struct {
	CompanyID      string               `json:"companyID" binding:"required"`
	Number         string               `json:"number"`
	Type           string               `json:"type" binding:"required,oneof=out in"`
	CurrencyCode   string               `json:"currencyCode" binding:"required,len=3,uppercase"`
	InvoiceDate    *time.Time           `json:"invoiceDate"`
	AccountingDate *time.Time           `json:"accountingDate"`
	AccountID      string               `json:"accountID" binding:"required"` // receivable or payable
	Description    string               `json:"description"`
	Lines          []InvoiceLineRequest `json:"lines" binding:"dive"`
	Taxes          []InvoiceTaxRequest  `json:"taxes" binding:"dive"`
}

// UpdateInvoiceRequest holds the editable fields of a draft invoice. Nil fields are
// left unchanged; Lines and Taxes replace the existing ones when set.
type UpdateInvoiceRequest struct {
	Number         *string               `json:"number"`
	CurrencyCode   *string               `json:"currencyCode" binding:"omitempty,len=3,uppercase"`
	InvoiceDate    *time.Time            `json:"invoiceDate"`
	AccountingDate *time.Time            `json:"accountingDate"`
	AccountID      *string               `json:"accountID" binding:"omitempty,min=1"`
	Description    *string               `json:"description"`
	Lines          *[]InvoiceLineRequest `json:"lines" binding:"omitempty,dive"`
	Taxes          *[]InvoiceTaxRequest  `json:"taxes" binding:"omitempty,dive"`
}

// ListInvoicesParams defines the query parameters for listing invoices.
type ListInvoicesParams struct {
	CompanyID string  `form:"companyID" binding:"required"`
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// InvoiceIDsRequest names the invoices a workflow action applies to.
type InvoiceIDsRequest struct {
	InvoiceIDs []string `json:"invoiceIDs" binding:"required,min=1,dive,required"`
}

// InvoiceLineResponse is a line with its company-currency amount.
type InvoiceLineResponse struct {
	InvoiceLineID string          `json:"invoiceLineID"`
	Description   string          `json:"description"`
	AccountID     string          `json:"accountID"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Amount        decimal.Decimal `json:"amount"`
	CompanyAmount decimal.Decimal `json:"companyAmount"`
}

// InvoiceTaxResponse is a tax line with its company-currency base and amount.
type InvoiceTaxResponse struct {
	InvoiceTaxID  string          `json:"invoiceTaxID"`
	Description   string          `json:"description"`
	AccountID     string          `json:"accountID"`
	Base          decimal.Decimal `json:"base"`
	Amount        decimal.Decimal `json:"amount"`
	CompanyBase   decimal.Decimal `json:"companyBase"`
	CompanyAmount decimal.Decimal `json:"companyAmount"`
}

// InvoiceResponse defines the data returned for an invoice.
type InvoiceResponse struct {
	InvoiceID             string           `json:"invoiceID"`
	CompanyID             string           `json:"companyID"`
	Number                string           `json:"number"`
	Type                  string           `json:"type"`
	State                 string           `json:"state"`
	CurrencyCode          string           `json:"currencyCode"`
	InvoiceDate           *time.Time       `json:"invoiceDate,omitempty"`
	AccountingDate        *time.Time       `json:"accountingDate,omitempty"`
	AccountID             string           `json:"accountID"`
	MoveID                *string          `json:"moveID,omitempty"`
	Description           string           `json:"description"`
	UntaxedAmount         decimal.Decimal  `json:"untaxedAmount"`
	TaxAmount             decimal.Decimal  `json:"taxAmount"`
	TotalAmount           decimal.Decimal  `json:"totalAmount"`
	CompanyCurrencyCode   string           `json:"companyCurrencyCode"`
	DifferentCurrencies   bool             `json:"differentCurrencies"`
	CompanyCurrencyDigits int              `json:"companyCurrencyDigits"`
	CompanyUntaxedAmount  *decimal.Decimal `json:"companyUntaxedAmount"`
	CompanyTaxAmount      *decimal.Decimal `json:"companyTaxAmount"`
	CompanyTotalAmount    *decimal.Decimal `json:"companyTotalAmount"`
	Lines                 []InvoiceLineDTO `json:"lines"`
	Taxes                 []InvoiceTaxDTO  `json:"taxes"`
	CreatedAt             time.Time        `json:"createdAt"`
	CreatedBy             string           `json:"createdBy"`
	LastUpdatedAt         time.Time        `json:"lastUpdatedAt"`
	LastUpdatedBy         string           `json:"lastUpdatedBy"`
}

// InvoiceLineDTO is a line as embedded in an invoice response.
type InvoiceLineDTO struct {
	InvoiceLineID string          `json:"invoiceLineID"`
	Description   string          `json:"description"`
	AccountID     string          `json:"accountID"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Amount        decimal.Decimal `json:"amount"`
}

// InvoiceTaxDTO is a tax line as embedded in an invoice response.
type InvoiceTaxDTO struct {
	InvoiceTaxID string          `json:"invoiceTaxID"`
	Description  string          `json:"description"`
	AccountID    string          `json:"accountID"`
	Base         decimal.Decimal `json:"base"`
	Amount       decimal.Decimal `json:"amount"`
}

// ListInvoicesResponse wraps a page of invoices.
type ListInvoicesResponse struct {
	Invoices  []InvoiceResponse `json:"invoices"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToInvoiceResponse converts an invoice and its valuation to InvoiceResponse DTO.
// The company amounts are the valuation amounts when given, the cache otherwise.
func ToInvoiceResponse(inv *domain.Invoice, valuation *domain.InvoiceValuation) InvoiceResponse {
	res := InvoiceResponse{
		InvoiceID:      inv.InvoiceID,
		CompanyID:      inv.CompanyID,
		Number:         inv.Number,
		Type:           string(inv.Type),
		State:          string(inv.State),
		CurrencyCode:   inv.CurrencyCode,
		InvoiceDate:    inv.InvoiceDate,
		AccountingDate: inv.AccountingDate,
		AccountID:      inv.AccountID,
		MoveID:         inv.MoveID,
		Description:    inv.Description,
		UntaxedAmount:  inv.UntaxedAmount(),
		TaxAmount:      inv.TaxAmount(),
		TotalAmount:    inv.TotalAmount(),
		Lines:          make([]InvoiceLineDTO, len(inv.Lines)),
		Taxes:          make([]InvoiceTaxDTO, len(inv.Taxes)),
		CreatedAt:      inv.CreatedAt,
		CreatedBy:      inv.CreatedBy,
		LastUpdatedAt:  inv.LastUpdatedAt,
		LastUpdatedBy:  inv.LastUpdatedBy,
	}
	amounts := inv.CompanyAmountCache
	if valuation != nil {
		amounts = valuation.Amounts
		res.CompanyCurrencyCode = valuation.CompanyCurrencyCode
		res.DifferentCurrencies = valuation.DifferentCurrencies
		res.CompanyCurrencyDigits = valuation.CompanyCurrencyDigits
	}
	res.CompanyUntaxedAmount = amounts.Untaxed
	res.CompanyTaxAmount = amounts.Tax
	res.CompanyTotalAmount = amounts.Total

	for i, l := range inv.Lines {
		res.Lines[i] = InvoiceLineDTO{
			InvoiceLineID: l.InvoiceLineID,
			Description:   l.Description,
			AccountID:     l.AccountID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Amount:        l.Amount,
		}
	}
	for i, t := range inv.Taxes {
		res.Taxes[i] = InvoiceTaxDTO{
			InvoiceTaxID: t.InvoiceTaxID,
			Description:  t.Description,
			AccountID:    t.AccountID,
			Base:         t.Base,
			Amount:       t.Amount,
		}
	}
	return res
}

// ToInvoiceTaxResponses pairs the tax lines of an invoice with their company amounts.
func ToInvoiceTaxResponses(inv *domain.Invoice, amounts []domain.TaxCompanyAmounts) []InvoiceTaxResponse {
	byID := make(map[string]domain.TaxCompanyAmounts, len(amounts))
	for _, a := range amounts {
		byID[a.InvoiceTaxID] = a
	}
	res := make([]InvoiceTaxResponse, len(inv.Taxes))
	for i, t := range inv.Taxes {
		a := byID[t.InvoiceTaxID]
		res[i] = InvoiceTaxResponse{
			InvoiceTaxID:  t.InvoiceTaxID,
			Description:   t.Description,
			AccountID:     t.AccountID,
			Base:          t.Base,
			Amount:        t.Amount,
			CompanyBase:   a.CompanyBase,
			CompanyAmount: a.CompanyAmount,
		}
	}
	return res
}

// ToInvoiceLineResponses pairs the lines of an invoice with their company amounts,
// keyed by line ID.
func ToInvoiceLineResponses(inv *domain.Invoice, amounts map[string]decimal.Decimal) []InvoiceLineResponse {
	res := make([]InvoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		res[i] = InvoiceLineResponse{
			InvoiceLineID: l.InvoiceLineID,
			Description:   l.Description,
			AccountID:     l.AccountID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Amount:        l.Amount,
			CompanyAmount: amounts[l.InvoiceLineID],
		}
	}
	return res
}
