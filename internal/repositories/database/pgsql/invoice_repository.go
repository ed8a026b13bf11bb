package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/apperrors"
	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_company_currency/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_company_currency/internal/models"
	"github.com/SscSPs/invoice_company_currency/internal/utils/mapping"
	"github.com/SscSPs/invoice_company_currency/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxInvoiceRepository stores invoices with their lines and taxes.
type PgxInvoiceRepository struct {
	BaseRepository
}

func newPgxInvoiceRepository(pool *pgxpool.Pool) *PgxInvoiceRepository {
	return &PgxInvoiceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.InvoiceRepositoryWithTx = (*PgxInvoiceRepository)(nil)

// WithTx returns a copy of the repository bound to tx.
func (r *PgxInvoiceRepository) WithTx(tx pgx.Tx) portsrepo.InvoiceRepositoryFacade {
	return &PgxInvoiceRepository{BaseRepository: r.bind(tx)}
}

const invoiceColumns = `
	invoice_id, company_id, number, type, state, currency_code, invoice_date, accounting_date,
	account_id, move_id, description, company_untaxed_amount, company_tax_amount, company_total_amount,
	created_at, created_by, last_updated_at, last_updated_by`

const invoiceLineColumns = `invoice_line_id, invoice_id, description, account_id, quantity, unit_price, amount, sequence`

const invoiceTaxColumns = `
	invoice_tax_id, invoice_id, description, account_id, base, amount,
	company_base_cache, company_amount_cache, sequence`

// SaveInvoice inserts an invoice together with its lines and taxes.
func (r *PgxInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	_, err := r.db().Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		m.InvoiceID, m.CompanyID, m.Number, m.Type, m.State, m.CurrencyCode, m.InvoiceDate, m.AccountingDate,
		m.AccountID, m.MoveID, m.Description, m.CompanyUntaxedAmount, m.CompanyTaxAmount, m.CompanyTotalAmount,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return fmt.Errorf("%w: invoice %s", apperrors.ErrDuplicate, m.InvoiceID)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: invoice references an unknown company or currency", apperrors.ErrValidation)
		}
		return apperrors.NewAppError(500, "failed to save invoice "+m.InvoiceID, err)
	}
	return r.insertChildren(ctx, invoice)
}

// UpdateInvoice replaces the editable header fields, the lines and the taxes of
// an invoice. The company_* cache columns are left untouched.
func (r *PgxInvoiceRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	m := mapping.ToModelInvoice(invoice)
	tag, err := r.db().Exec(ctx, `
		UPDATE invoices SET
			number = $2, currency_code = $3, invoice_date = $4, accounting_date = $5,
			account_id = $6, description = $7, last_updated_at = $8, last_updated_by = $9
		WHERE invoice_id = $1 AND state = $10`,
		m.InvoiceID, m.Number, m.CurrencyCode, m.InvoiceDate, m.AccountingDate,
		m.AccountID, m.Description, m.LastUpdatedAt, m.LastUpdatedBy, string(domain.InvoiceStateDraft),
	)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("%w: invoice references an unknown currency", apperrors.ErrValidation)
		}
		return apperrors.NewAppError(500, "failed to update invoice "+m.InvoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE invoice_id = $1)`, m.InvoiceID).Scan(&exists); err != nil {
			return apperrors.NewAppError(500, "failed to update invoice "+m.InvoiceID, err)
		}
		if exists {
			return apperrors.NewValidationError("invoice " + m.InvoiceID + " is no longer a draft")
		}
		return apperrors.NewNotFoundError("invoice " + m.InvoiceID + " not found")
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM invoice_lines WHERE invoice_id = $1`, m.InvoiceID)
	batch.Queue(`DELETE FROM invoice_taxes WHERE invoice_id = $1`, m.InvoiceID)
	if err := r.sendBatch(ctx, batch); err != nil {
		return apperrors.NewAppError(500, "failed to replace lines of invoice "+m.InvoiceID, err)
	}
	return r.insertChildren(ctx, invoice)
}

func (r *PgxInvoiceRepository) insertChildren(ctx context.Context, invoice domain.Invoice) error {
	if len(invoice.Lines) == 0 && len(invoice.Taxes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, line := range invoice.Lines {
		l := mapping.ToModelInvoiceLine(line)
		batch.Queue(`INSERT INTO invoice_lines (`+invoiceLineColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.InvoiceLineID, invoice.InvoiceID, l.Description, l.AccountID, l.Quantity, l.UnitPrice, l.Amount, l.Sequence)
	}
	for _, tax := range invoice.Taxes {
		t := mapping.ToModelInvoiceTax(tax)
		batch.Queue(`INSERT INTO invoice_taxes (`+invoiceTaxColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.InvoiceTaxID, invoice.InvoiceID, t.Description, t.AccountID, t.Base, t.Amount,
			t.CompanyBaseCache, t.CompanyAmountCache, t.Sequence)
	}
	if err := r.sendBatch(ctx, batch); err != nil {
		return apperrors.NewAppError(500, "failed to save lines of invoice "+invoice.InvoiceID, err)
	}
	return nil
}

// sendBatch executes every queued statement and closes the results.
func (r *PgxInvoiceRepository) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	results := r.db().SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}
	return results.Close()
}

// FindInvoiceByID retrieves an invoice with its lines and taxes.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	m, err := scanInvoice(r.db().QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("invoice " + invoiceID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find invoice "+invoiceID, err)
	}
	invoices, err := r.withChildren(ctx, []models.Invoice{m})
	if err != nil {
		return nil, err
	}
	return &invoices[0], nil
}

// FindInvoicesByIDsForUpdate loads the invoices and locks their rows.
// Missing IDs are silently skipped; callers compare the result length.
func (r *PgxInvoiceRepository) FindInvoicesByIDsForUpdate(ctx context.Context, invoiceIDs []string) ([]domain.Invoice, error) {
	if len(invoiceIDs) == 0 {
		return []domain.Invoice{}, nil
	}
	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id
		FOR UPDATE;`
	rows, err := r.db().Query(ctx, query, invoiceIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock invoices", err)
	}
	defer rows.Close()

	modelInvoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Invoice, error) {
		return scanInvoice(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan invoices", err)
	}
	return r.withChildren(ctx, modelInvoices)
}

// ListInvoices retrieves a page of invoices of a company, newest first.
func (r *PgxInvoiceRepository) ListInvoices(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Invoice, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE company_id = $1`
	args := []any{companyID}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %w", apperrors.ErrValidation, decodeErr))
		}
		query += ` AND (created_at, invoice_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)
	}
	query += ` ORDER BY created_at DESC, invoice_id DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.db().Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query invoices for company "+companyID, err)
	}
	defer rows.Close()

	modelInvoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Invoice, error) {
		return scanInvoice(row)
	})
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to scan invoices for company "+companyID, err)
	}

	var nextTokenVal *string
	if len(modelInvoices) > limit {
		last := modelInvoices[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.InvoiceID)
		nextTokenVal = &token
		modelInvoices = modelInvoices[:limit]
	}

	invoices, err := r.withChildren(ctx, modelInvoices)
	if err != nil {
		return nil, nil, err
	}
	return invoices, nextTokenVal, nil
}

// withChildren loads the lines and taxes of the given headers and maps them to
// domain invoices, keeping the header order.
func (r *PgxInvoiceRepository) withChildren(ctx context.Context, headers []models.Invoice) ([]domain.Invoice, error) {
	if len(headers) == 0 {
		return []domain.Invoice{}, nil
	}
	ids := make([]string, len(headers))
	for i, h := range headers {
		ids[i] = h.InvoiceID
	}

	lineRows, err := r.db().Query(ctx, `
		SELECT `+invoiceLineColumns+`
		FROM invoice_lines
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, sequence, invoice_line_id`, ids)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query invoice lines", err)
	}
	lines, err := pgx.CollectRows(lineRows, func(row pgx.CollectableRow) (models.InvoiceLine, error) {
		var l models.InvoiceLine
		err := row.Scan(&l.InvoiceLineID, &l.InvoiceID, &l.Description, &l.AccountID,
			&l.Quantity, &l.UnitPrice, &l.Amount, &l.Sequence)
		return l, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan invoice lines", err)
	}

	taxRows, err := r.db().Query(ctx, `
		SELECT `+invoiceTaxColumns+`
		FROM invoice_taxes
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, sequence, invoice_tax_id`, ids)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query invoice taxes", err)
	}
	taxes, err := pgx.CollectRows(taxRows, func(row pgx.CollectableRow) (models.InvoiceTax, error) {
		var t models.InvoiceTax
		err := row.Scan(&t.InvoiceTaxID, &t.InvoiceID, &t.Description, &t.AccountID,
			&t.Base, &t.Amount, &t.CompanyBaseCache, &t.CompanyAmountCache, &t.Sequence)
		return t, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan invoice taxes", err)
	}

	linesByInvoice := make(map[string][]models.InvoiceLine, len(headers))
	for _, l := range lines {
		linesByInvoice[l.InvoiceID] = append(linesByInvoice[l.InvoiceID], l)
	}
	taxesByInvoice := make(map[string][]models.InvoiceTax, len(headers))
	for _, t := range taxes {
		taxesByInvoice[t.InvoiceID] = append(taxesByInvoice[t.InvoiceID], t)
	}

	invoices := make([]domain.Invoice, len(headers))
	for i, h := range headers {
		invoices[i] = mapping.ToDomainInvoice(h, linesByInvoice[h.InvoiceID], taxesByInvoice[h.InvoiceID])
	}
	return invoices, nil
}

// UpdateInvoiceStates sets the state of every given invoice in one statement.
func (r *PgxInvoiceRepository) UpdateInvoiceStates(ctx context.Context, invoiceIDs []string, state domain.InvoiceState, userID string, now time.Time) error {
	if len(invoiceIDs) == 0 {
		return nil
	}
	_, err := r.db().Exec(ctx, `
		UPDATE invoices SET state = $2, last_updated_at = $3, last_updated_by = $4
		WHERE invoice_id = ANY($1)`,
		invoiceIDs, string(state), now, userID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update invoice states", err)
	}
	return nil
}

// SetInvoiceMove links the invoice to moveID, or unlinks it when moveID is nil.
func (r *PgxInvoiceRepository) SetInvoiceMove(ctx context.Context, invoiceID string, moveID *string) error {
	tag, err := r.db().Exec(ctx, `UPDATE invoices SET move_id = $2 WHERE invoice_id = $1`, invoiceID, moveID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to set move of invoice "+invoiceID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("invoice " + invoiceID + " not found")
	}
	return nil
}

// WriteCompanyAmountCache stores amounts on every given invoice in one statement.
func (r *PgxInvoiceRepository) WriteCompanyAmountCache(ctx context.Context, invoiceIDs []string, amounts domain.CompanyAmounts) error {
	if len(invoiceIDs) == 0 {
		return nil
	}
	_, err := r.db().Exec(ctx, `
		UPDATE invoices SET
			company_untaxed_amount = $2,
			company_tax_amount = $3,
			company_total_amount = $4
		WHERE invoice_id = ANY($1)`,
		invoiceIDs,
		mapping.ToNullDecimal(amounts.Untaxed),
		mapping.ToNullDecimal(amounts.Tax),
		mapping.ToNullDecimal(amounts.Total),
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to write company amount cache", err)
	}
	return nil
}

// WriteTaxCompanyCache stores the company caches of the given tax lines.
func (r *PgxInvoiceRepository) WriteTaxCompanyCache(ctx context.Context, taxes []domain.InvoiceTax) error {
	if len(taxes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, tax := range taxes {
		batch.Queue(`
			UPDATE invoice_taxes SET company_base_cache = $2, company_amount_cache = $3
			WHERE invoice_tax_id = $1`,
			tax.InvoiceTaxID, mapping.ToNullDecimal(tax.CompanyBaseCache), mapping.ToNullDecimal(tax.CompanyAmountCache))
	}
	if err := r.sendBatch(ctx, batch); err != nil {
		return apperrors.NewAppError(500, "failed to write tax company cache", err)
	}
	return nil
}

// ClearTaxCompanyCache resets the tax-line caches of the given invoices.
func (r *PgxInvoiceRepository) ClearTaxCompanyCache(ctx context.Context, invoiceIDs []string) error {
	if len(invoiceIDs) == 0 {
		return nil
	}
	_, err := r.db().Exec(ctx, `
		UPDATE invoice_taxes SET company_base_cache = NULL, company_amount_cache = NULL
		WHERE invoice_id = ANY($1)`, invoiceIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to clear tax company cache", err)
	}
	return nil
}

func scanInvoice(row pgx.Row) (models.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID, &m.CompanyID, &m.Number, &m.Type, &m.State, &m.CurrencyCode,
		&m.InvoiceDate, &m.AccountingDate, &m.AccountID, &m.MoveID, &m.Description,
		&m.CompanyUntaxedAmount, &m.CompanyTaxAmount, &m.CompanyTotalAmount,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}
