package repositories

import (
	"context"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// MoveReader defines read operations for ledger moves
type MoveReader interface {
	// FindMoveByID retrieves a move with its lines.
	FindMoveByID(ctx context.Context, moveID string) (*domain.Move, error)

	// SumMoveLines aggregates the company-currency lines of the move linked to
	// the invoice, split by the invoice account, the invoice line accounts and
	// the remaining accounts.
	SumMoveLines(ctx context.Context, invoiceID string) (domain.MoveLineSums, error)
}

// MoveWriter defines write operations for ledger moves
type MoveWriter interface {
	// SaveMove inserts a move and its lines.
	SaveMove(ctx context.Context, move domain.Move) error

	// DeleteMove removes a move and its lines.
	DeleteMove(ctx context.Context, moveID string) error
}

// MoveRepositoryFacade combines all move-related repository interfaces
type MoveRepositoryFacade interface {
	MoveReader
	MoveWriter
}

// MoveRepositoryWithTx extends MoveRepositoryFacade with transaction capabilities
type MoveRepositoryWithTx interface {
	MoveRepositoryFacade
	WithTx(tx pgx.Tx) MoveRepositoryFacade
}
