package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// InvoiceReader defines read operations for invoice data
type InvoiceReader interface {
	// FindInvoiceByID retrieves an invoice with its lines and taxes.
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	// ListInvoices retrieves a page of invoices of a company ordered by creation
	// time, newest first. The returned token is nil on the last page.
	ListInvoices(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Invoice, *string, error)

	// FindInvoicesByIDsForUpdate loads the invoices with their lines and taxes and
	// locks the invoice rows until the surrounding transaction ends.
	FindInvoicesByIDsForUpdate(ctx context.Context, invoiceIDs []string) ([]domain.Invoice, error)
}

// InvoiceWriter defines write operations for invoice data
type InvoiceWriter interface {
	// SaveInvoice inserts an invoice together with its lines and taxes.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error

	// UpdateInvoice replaces the editable fields, lines and taxes of an invoice.
	// Cached company amounts are never written by this method.
	UpdateInvoice(ctx context.Context, invoice domain.Invoice) error

	// UpdateInvoiceStates sets the state of every given invoice in one statement.
	UpdateInvoiceStates(ctx context.Context, invoiceIDs []string, state domain.InvoiceState, userID string, now time.Time) error

	// SetInvoiceMove links or unlinks (moveID nil) the ledger move of an invoice.
	SetInvoiceMove(ctx context.Context, invoiceID string, moveID *string) error
}

// InvoiceCacheWriter defines writes of the cached company-currency amounts.
type InvoiceCacheWriter interface {
	// WriteCompanyAmountCache stores the same amounts on every given invoice in
	// one statement. Absent kinds are written as NULL.
	WriteCompanyAmountCache(ctx context.Context, invoiceIDs []string, amounts domain.CompanyAmounts) error

	// WriteTaxCompanyCache stores the company base and amount caches of tax lines.
	WriteTaxCompanyCache(ctx context.Context, taxes []domain.InvoiceTax) error

	// ClearTaxCompanyCache resets the tax-line caches of the given invoices.
	ClearTaxCompanyCache(ctx context.Context, invoiceIDs []string) error
}

// InvoiceRepositoryFacade combines all invoice-related repository interfaces
type InvoiceRepositoryFacade interface {
	InvoiceReader
	InvoiceWriter
	InvoiceCacheWriter
}

// InvoiceRepositoryWithTx extends InvoiceRepositoryFacade with transaction capabilities
type InvoiceRepositoryWithTx interface {
	InvoiceRepositoryFacade
	TransactionManager
	WithTx(tx pgx.Tx) InvoiceRepositoryFacade
}
