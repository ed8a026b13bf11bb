package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/invoice_company_currency/internal/apperrors"
	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_company_currency/internal/core/ports/repositories"
	"github.com/SscSPs/invoice_company_currency/internal/models"
	"github.com/SscSPs/invoice_company_currency/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxCompanyRepository stores companies in PostgreSQL.
type PgxCompanyRepository struct {
	BaseRepository
}

func newPgxCompanyRepository(pool *pgxpool.Pool) *PgxCompanyRepository {
	return &PgxCompanyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

const companyColumns = `company_id, name, currency_code, created_at, created_by, last_updated_at, last_updated_by`

// SaveCompany inserts a new company.
func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	m := mapping.ToModelCompany(company)
	_, err := r.db().Exec(ctx, `
		INSERT INTO companies (`+companyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.CompanyID, m.Name, m.CurrencyCode,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return fmt.Errorf("%w: company %s", apperrors.ErrDuplicate, m.CompanyID)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: unknown currency %s", apperrors.ErrValidation, m.CurrencyCode)
		}
		return fmt.Errorf("failed to save company %s: %w", m.CompanyID, err)
	}
	return nil
}

// FindCompanyByID retrieves a company by its ID.
func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1;`
	m, err := scanCompany(r.db().QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find company %s: %w", companyID, err)
	}
	company := mapping.ToDomainCompany(m)
	return &company, nil
}

// ListCompanies retrieves all companies ordered by name.
func (r *PgxCompanyRepository) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name, company_id;`
	rows, err := r.db().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	companies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Company, error) {
		return scanCompany(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan companies: %w", err)
	}
	return mapping.ToDomainCompanySlice(companies), nil
}

func scanCompany(row pgx.Row) (models.Company, error) {
	var c models.Company
	err := row.Scan(
		&c.CompanyID,
		&c.Name,
		&c.CurrencyCode,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	return c, err
}
