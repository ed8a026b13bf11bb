package services

import (
	"context"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/SscSPs/invoice_company_currency/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CompanyAmountSvc provides the company-currency view of invoices. Cached
// amounts win over any computation; a present zero is a cached value.
type CompanyAmountSvc interface {
	// DifferentCurrencies reports whether the invoice currency differs from the
	// company currency. An invoice without a company is never different.
	DifferentCurrencies(ctx context.Context, invoice domain.Invoice) (bool, error)

	// CompanyCurrencyDigits returns the decimal digits of the company currency,
	// or the default when the company or its currency is unknown.
	CompanyCurrencyDigits(ctx context.Context, invoice domain.Invoice) (int, error)

	// CompanyAmount returns one amount of the invoice in the company currency.
	CompanyAmount(ctx context.Context, invoice domain.Invoice, kind domain.AmountKind) (decimal.Decimal, error)

	// CompanyAmounts computes the requested kinds for many invoices, keyed by invoice ID.
	CompanyAmounts(ctx context.Context, invoices []domain.Invoice, kinds []domain.AmountKind) (map[string]domain.CompanyAmounts, error)

	// SaveCompanyAmounts derives all three amounts ignoring the cache: from the
	// ledger move when the invoice has one, by conversion otherwise. The result
	// is returned for the caller to persist.
	SaveCompanyAmounts(ctx context.Context, invoice domain.Invoice) (domain.CompanyAmounts, error)

	// TaxCompanyAmounts returns the company base and amount of a tax line.
	TaxCompanyAmounts(ctx context.Context, invoice domain.Invoice, tax domain.InvoiceTax) (domain.TaxCompanyAmounts, error)

	// ComputeTaxCompanyCaches returns the tax lines of the invoice with freshly
	// converted cache values.
	ComputeTaxCompanyCaches(ctx context.Context, invoice domain.Invoice) ([]domain.InvoiceTax, error)

	// LineCompanyAmount returns the company amount of an invoice line. It is never cached.
	LineCompanyAmount(ctx context.Context, invoice domain.Invoice, line domain.InvoiceLine) (decimal.Decimal, error)

	// Valuate gathers the company-currency view of a single invoice.
	Valuate(ctx context.Context, invoice domain.Invoice) (*domain.InvoiceValuation, error)

	// WithTx returns a service whose ledger reads run inside tx.
	WithTx(tx pgx.Tx) CompanyAmountSvc
}

// InvoiceReaderSvc defines read operations for invoices
type InvoiceReaderSvc interface {
	// GetInvoice retrieves an invoice with its company-currency valuation.
	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, *domain.InvoiceValuation, error)

	// ListInvoices retrieves a page of invoices of a company with their company
	// amounts keyed by invoice ID.
	ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, map[string]domain.CompanyAmounts, *string, error)

	// GetTaxCompanyAmounts retrieves an invoice with the company amounts of its tax lines.
	GetTaxCompanyAmounts(ctx context.Context, invoiceID string) (*domain.Invoice, []domain.TaxCompanyAmounts, error)

	// GetLineCompanyAmounts retrieves an invoice with the company amount of each line.
	GetLineCompanyAmounts(ctx context.Context, invoiceID string) (*domain.Invoice, map[string]decimal.Decimal, error)
}

// InvoiceWriterSvc defines edits of draft invoices
type InvoiceWriterSvc interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error)
	UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error)
	CopyInvoice(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error)
}

// InvoiceWorkflowSvc moves invoices through their workflow. Every call applies
// to all given invoices in one transaction.
type InvoiceWorkflowSvc interface {
	ValidateInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error)
	PostInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error)
	DraftInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error)
	CancelInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error)
}

// InvoiceSvcFacade combines all invoice-related service interfaces
type InvoiceSvcFacade interface {
	InvoiceReaderSvc
	InvoiceWriterSvc
	InvoiceWorkflowSvc
}
