package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/invoice_company_currency/internal/apperrors"
	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_company_currency/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_company_currency/internal/models"
	"github.com/SscSPs/invoice_company_currency/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxMoveRepository stores ledger moves and answers the aggregate queries
// used to derive company-currency invoice amounts.
type PgxMoveRepository struct {
	BaseRepository
}

func newPgxMoveRepository(pool *pgxpool.Pool) *PgxMoveRepository {
	return &PgxMoveRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.MoveRepositoryWithTx = (*PgxMoveRepository)(nil)

// WithTx returns a copy of the repository bound to tx.
func (r *PgxMoveRepository) WithTx(tx pgx.Tx) portsrepo.MoveRepositoryFacade {
	return &PgxMoveRepository{BaseRepository: r.bind(tx)}
}

const moveColumns = `move_id, company_id, invoice_id, move_date, currency_code, description,
	created_at, created_by, last_updated_at, last_updated_by`

const moveLineColumns = `move_line_id, move_id, account_id, debit, credit,
	amount_second_currency, second_currency_code, description`

// SaveMove inserts a move and its lines.
func (r *PgxMoveRepository) SaveMove(ctx context.Context, move domain.Move) error {
	m := mapping.ToModelMove(move)

	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO moves (`+moveColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.MoveID, m.CompanyID, m.InvoiceID, m.MoveDate, m.CurrencyCode, m.Description,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	for _, line := range move.Lines {
		l := mapping.ToModelMoveLine(line)
		batch.Queue(`INSERT INTO move_lines (`+moveLineColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.MoveLineID, m.MoveID, l.AccountID, l.Debit, l.Credit,
			l.AmountSecondCurrency, l.SecondCurrencyCode, l.Description)
	}

	results := r.db().SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			if pgErrorCode(err) == pgUniqueViolation {
				return apperrors.NewAppError(409, "move "+m.MoveID+" already exists", apperrors.ErrDuplicate)
			}
			return apperrors.NewAppError(500, "failed to save move "+m.MoveID, err)
		}
	}
	return nil
}

// DeleteMove removes a move; its lines go with it.
func (r *PgxMoveRepository) DeleteMove(ctx context.Context, moveID string) error {
	tag, err := r.db().Exec(ctx, `DELETE FROM moves WHERE move_id = $1`, moveID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete move "+moveID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("move " + moveID + " not found")
	}
	return nil
}

// FindMoveByID retrieves a move with its lines.
func (r *PgxMoveRepository) FindMoveByID(ctx context.Context, moveID string) (*domain.Move, error) {
	var m models.Move
	err := r.db().QueryRow(ctx, `SELECT `+moveColumns+` FROM moves WHERE move_id = $1`, moveID).Scan(
		&m.MoveID, &m.CompanyID, &m.InvoiceID, &m.MoveDate, &m.CurrencyCode, &m.Description,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("move " + moveID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find move "+moveID, err)
	}

	rows, err := r.db().Query(ctx, `
		SELECT `+moveLineColumns+`
		FROM move_lines
		WHERE move_id = $1
		ORDER BY move_line_id`, moveID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines of move "+moveID, err)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.MoveLine, error) {
		var l models.MoveLine
		err := row.Scan(&l.MoveLineID, &l.MoveID, &l.AccountID, &l.Debit, &l.Credit,
			&l.AmountSecondCurrency, &l.SecondCurrencyCode, &l.Description)
		return l, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan lines of move "+moveID, err)
	}

	move := mapping.ToDomainMove(m, lines)
	return &move, nil
}

// SumMoveLines nets debit minus credit over the lines of the move linked to the
// invoice, split three ways: lines on the invoice account, lines on any account
// used by an invoice line (even when that is the invoice account), and lines on
// neither.
func (r *PgxMoveRepository) SumMoveLines(ctx context.Context, invoiceID string) (domain.MoveLineSums, error) {
	query := `
		WITH line_accounts AS (
			SELECT DISTINCT account_id FROM invoice_lines WHERE invoice_id = $1
		)
		SELECT
			COALESCE(SUM(CASE WHEN ml.account_id = i.account_id
				THEN ml.debit - ml.credit END), 0),
			COALESCE(SUM(CASE WHEN la.account_id IS NOT NULL
				THEN ml.debit - ml.credit END), 0),
			COALESCE(SUM(CASE WHEN ml.account_id <> i.account_id AND la.account_id IS NULL
				THEN ml.debit - ml.credit END), 0)
		FROM invoices i
		JOIN move_lines ml ON ml.move_id = i.move_id
		LEFT JOIN line_accounts la ON la.account_id = ml.account_id
		WHERE i.invoice_id = $1;`

	var sums domain.MoveLineSums
	err := r.db().QueryRow(ctx, query, invoiceID).Scan(&sums.InvoiceAccount, &sums.LineAccounts, &sums.OtherAccounts)
	if err != nil {
		return domain.MoveLineSums{}, apperrors.NewAppError(500, "failed to sum move lines of invoice "+invoiceID, err)
	}
	return sums, nil
}
