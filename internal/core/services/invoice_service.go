package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/apperrors"
	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_company_currency/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_company_currency/internal/core/ports/services"
	"github.com/SscSPs/invoice_company_currency/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotDraft     = errors.New("only draft invoices can be edited")
	ErrInvalidTransition   = errors.New("invoice state does not allow this action")
	ErrInvoiceWithoutParty = errors.New("invoice has no receivable or payable account")
)

const defaultInvoicePageSize = 20

// invoiceService implements the invoice workflow and fires the company amount
// cache hooks around each transition.
type invoiceService struct {
	BaseService
	invoiceRepo  portsrepo.InvoiceRepositoryWithTx
	moveRepo     portsrepo.MoveRepositoryWithTx
	companyRepo  portsrepo.CompanyReader
	currencyRepo portsrepo.CurrencyReader
	amounts      portssvc.CompanyAmountSvc
	converter    portssvc.CurrencyConverterSvc
	builder      *moveBuilder
	strategy     domain.TaxAmountStrategy
	newID        func() string
	now          func() time.Time
}

// InvoiceServiceOption is a functional option for configuring the invoice service
type InvoiceServiceOption func(*invoiceService)

// WithInvoiceTaxAmountStrategy stores tax-line company amounts on posting when set to cached.
func WithInvoiceTaxAmountStrategy(strategy domain.TaxAmountStrategy) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.strategy = strategy
	}
}

// WithInvoiceClock overrides time.Now.
func WithInvoiceClock(now func() time.Time) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.now = now
	}
}

// WithIDGenerator overrides uuid.NewString.
func WithIDGenerator(newID func() string) InvoiceServiceOption {
	return func(s *invoiceService) {
		s.newID = newID
	}
}

// NewInvoiceService creates the invoice service.
func NewInvoiceService(
	invoiceRepo portsrepo.InvoiceRepositoryWithTx,
	moveRepo portsrepo.MoveRepositoryWithTx,
	companyRepo portsrepo.CompanyReader,
	currencyRepo portsrepo.CurrencyReader,
	amounts portssvc.CompanyAmountSvc,
	converter portssvc.CurrencyConverterSvc,
	options ...InvoiceServiceOption,
) portssvc.InvoiceSvcFacade {
	svc := &invoiceService{
		invoiceRepo:  invoiceRepo,
		moveRepo:     moveRepo,
		companyRepo:  companyRepo,
		currencyRepo: currencyRepo,
		amounts:      amounts,
		converter:    converter,
		strategy:     domain.TaxAmountsLive,
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	svc.builder = &moveBuilder{converter: converter, newID: svc.newID}
	return svc
}

var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// invoiceTx bundles the repositories and services bound to one transaction.
type invoiceTx struct {
	invoices portsrepo.InvoiceRepositoryFacade
	moves    portsrepo.MoveRepositoryFacade
	amounts  portssvc.CompanyAmountSvc
}

// withTransaction runs fn inside a database transaction, rolling back on error.
func (s *invoiceService) withTransaction(ctx context.Context, fn func(scope invoiceTx) error) error {
	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	scope := invoiceTx{
		invoices: s.invoiceRepo.WithTx(tx),
		moves:    s.moveRepo.WithTx(tx),
		amounts:  s.amounts.WithTx(tx),
	}

	if err := fn(scope); err != nil {
		if rbErr := s.invoiceRepo.Rollback(ctx, tx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to roll back invoice transaction")
		}
		return err
	}
	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *invoiceService) audit(userID string) domain.AuditFields {
	now := s.now().UTC()
	return domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
}

func (s *invoiceService) requireCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, code)
		}
		return nil, fmt.Errorf("failed to load currency '%s': %w", code, err)
	}
	return currency, nil
}

func (s *invoiceService) requireCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: company '%s' not found", apperrors.ErrValidation, companyID)
		}
		return nil, fmt.Errorf("failed to load company '%s': %w", companyID, err)
	}
	return company, nil
}

func (s *invoiceService) buildLines(invoiceID string, currency domain.Currency, reqs []dto.InvoiceLineRequest) []domain.InvoiceLine {
	lines := make([]domain.InvoiceLine, len(reqs))
	for i, req := range reqs {
		lines[i] = domain.InvoiceLine{
			InvoiceLineID: s.newID(),
			InvoiceID:     invoiceID,
			Description:   req.Description,
			AccountID:     req.AccountID,
			Quantity:      req.Quantity,
			UnitPrice:     req.UnitPrice,
			Sequence:      i + 1,
		}
		lines[i].ComputeAmount(currency)
	}
	return lines
}

func (s *invoiceService) buildTaxes(invoiceID string, currency domain.Currency, reqs []dto.InvoiceTaxRequest) []domain.InvoiceTax {
	taxes := make([]domain.InvoiceTax, len(reqs))
	for i, req := range reqs {
		taxes[i] = domain.InvoiceTax{
			InvoiceTaxID: s.newID(),
			InvoiceID:    invoiceID,
			Description:  req.Description,
			AccountID:    req.AccountID,
			Base:         currency.Round(req.Base),
			Amount:       currency.Round(req.Amount),
			Sequence:     i + 1,
		}
	}
	return taxes
}

// CreateInvoice stores a new draft invoice. Cached company amounts start absent.
func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	invoiceType := domain.InvoiceType(req.Type)
	if invoiceType != domain.InvoiceTypeOut && invoiceType != domain.InvoiceTypeIn {
		return nil, fmt.Errorf("%w: invoice type must be 'out' or 'in'", apperrors.ErrValidation)
	}
	if _, err := s.requireCompany(ctx, req.CompanyID); err != nil {
		return nil, err
	}
	currency, err := s.requireCurrency(ctx, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	invoiceID := s.newID()
	invoice := domain.Invoice{
		InvoiceID:      invoiceID,
		CompanyID:      req.CompanyID,
		Number:         req.Number,
		Type:           invoiceType,
		State:          domain.InvoiceStateDraft,
		CurrencyCode:   req.CurrencyCode,
		InvoiceDate:    dateOnlyPtr(req.InvoiceDate),
		AccountingDate: dateOnlyPtr(req.AccountingDate),
		AccountID:      req.AccountID,
		Description:    req.Description,
		Lines:          s.buildLines(invoiceID, *currency, req.Lines),
		Taxes:          s.buildTaxes(invoiceID, *currency, req.Taxes),
		AuditFields:    s.audit(creatorUserID),
	}

	err = s.withTransaction(ctx, func(scope invoiceTx) error {
		return scope.invoices.SaveInvoice(ctx, invoice)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save invoice", slog.String("company_id", req.CompanyID))
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.LogInfo(ctx, "Invoice created", slog.String("invoice_id", invoice.InvoiceID), slog.String("company_id", invoice.CompanyID))
	return &invoice, nil
}

// GetInvoice retrieves an invoice and its company-currency valuation.
func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, *domain.InvoiceValuation, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	valuation, err := s.amounts.Valuate(ctx, *invoice)
	if err != nil {
		s.LogError(ctx, err, "Failed to valuate invoice", slog.String("invoice_id", invoiceID))
		return nil, nil, fmt.Errorf("failed to compute company amounts: %w", err)
	}
	return invoice, valuation, nil
}

// ListInvoices returns a page of invoices with their company amounts.
func (s *invoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, map[string]domain.CompanyAmounts, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultInvoicePageSize
	}
	invoices, nextToken, err := s.invoiceRepo.ListInvoices(ctx, params.CompanyID, limit, params.NextToken)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	amounts, err := s.amounts.CompanyAmounts(ctx, invoices, domain.AmountKinds)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to compute company amounts: %w", err)
	}
	return invoices, amounts, nextToken, nil
}

// GetTaxCompanyAmounts returns the company amounts of the invoice tax lines.
func (s *invoiceService) GetTaxCompanyAmounts(ctx context.Context, invoiceID string) (*domain.Invoice, []domain.TaxCompanyAmounts, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	result := make([]domain.TaxCompanyAmounts, 0, len(invoice.Taxes))
	for _, tax := range invoice.Taxes {
		amounts, err := s.amounts.TaxCompanyAmounts(ctx, *invoice, tax)
		if err != nil {
			return nil, nil, err
		}
		result = append(result, amounts)
	}
	return invoice, result, nil
}

// GetLineCompanyAmounts returns the company amount of each invoice line.
func (s *invoiceService) GetLineCompanyAmounts(ctx context.Context, invoiceID string) (*domain.Invoice, map[string]decimal.Decimal, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	result := make(map[string]decimal.Decimal, len(invoice.Lines))
	for _, line := range invoice.Lines {
		amount, err := s.amounts.LineCompanyAmount(ctx, *invoice, line)
		if err != nil {
			return nil, nil, err
		}
		result[line.InvoiceLineID] = amount
	}
	return invoice, result, nil
}

// UpdateInvoice edits a draft invoice. Cached company amounts are not writable here.
// The invoice row stays locked from the state check until the edit commits.
func (s *invoiceService) UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := s.withTransaction(ctx, func(scope invoiceTx) error {
		locked, err := scope.invoices.FindInvoicesByIDsForUpdate(ctx, []string{invoiceID})
		if err != nil {
			return fmt.Errorf("failed to lock invoice: %w", err)
		}
		if len(locked) == 0 {
			return apperrors.NewNotFoundError(fmt.Sprintf("invoice %s", invoiceID))
		}
		invoice = locked[0]
		if invoice.State != domain.InvoiceStateDraft {
			return fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrInvoiceNotDraft)
		}
		if err := s.applyUpdate(ctx, &invoice, req); err != nil {
			return err
		}
		invoice.LastUpdatedAt = s.now().UTC()
		invoice.LastUpdatedBy = userID
		return scope.invoices.UpdateInvoice(ctx, invoice)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update invoice", slog.String("invoice_id", invoiceID))
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return &invoice, nil
}

func (s *invoiceService) applyUpdate(ctx context.Context, invoice *domain.Invoice, req dto.UpdateInvoiceRequest) error {
	if req.CurrencyCode != nil {
		invoice.CurrencyCode = *req.CurrencyCode
	}
	currency, err := s.requireCurrency(ctx, invoice.CurrencyCode)
	if err != nil {
		return err
	}

	if req.Number != nil {
		invoice.Number = *req.Number
	}
	if req.InvoiceDate != nil {
		invoice.InvoiceDate = dateOnlyPtr(req.InvoiceDate)
	}
	if req.AccountingDate != nil {
		invoice.AccountingDate = dateOnlyPtr(req.AccountingDate)
	}
	if req.AccountID != nil {
		invoice.AccountID = *req.AccountID
	}
	if req.Description != nil {
		invoice.Description = *req.Description
	}
	if req.Lines != nil {
		invoice.Lines = s.buildLines(invoice.InvoiceID, *currency, *req.Lines)
	} else if req.CurrencyCode != nil {
		for i := range invoice.Lines {
			invoice.Lines[i].ComputeAmount(*currency)
		}
	}
	if req.Taxes != nil {
		invoice.Taxes = s.buildTaxes(invoice.InvoiceID, *currency, *req.Taxes)
	} else if req.CurrencyCode != nil {
		for i := range invoice.Taxes {
			invoice.Taxes[i].Base = currency.Round(invoice.Taxes[i].Base)
			invoice.Taxes[i].Amount = currency.Round(invoice.Taxes[i].Amount)
		}
	}
	return nil
}

// CopyInvoice duplicates an invoice into a new draft without cached amounts.
func (s *invoiceService) CopyInvoice(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error) {
	original, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	dup := original.Duplicate(s.newID, userID, s.now().UTC())
	err = s.withTransaction(ctx, func(scope invoiceTx) error {
		return scope.invoices.SaveInvoice(ctx, dup)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save invoice copy", slog.String("invoice_id", invoiceID))
		return nil, fmt.Errorf("failed to copy invoice: %w", err)
	}

	s.LogInfo(ctx, "Invoice copied", slog.String("invoice_id", invoiceID), slog.String("copy_id", dup.InvoiceID))
	return &dup, nil
}

// lockInvoices loads and locks the invoices and checks that each may move to target.
func (s *invoiceService) lockInvoices(ctx context.Context, scope invoiceTx, invoiceIDs []string, target domain.InvoiceState) ([]domain.Invoice, error) {
	ids := uniqueStrings(invoiceIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no invoice given", apperrors.ErrValidation)
	}

	found, err := scope.invoices.FindInvoicesByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock invoices: %w", err)
	}
	byID := make(map[string]domain.Invoice, len(found))
	for _, inv := range found {
		byID[inv.InvoiceID] = inv
	}

	invoices := make([]domain.Invoice, 0, len(ids))
	for _, id := range ids {
		inv, ok := byID[id]
		if !ok {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("invoice %s", id))
		}
		if !inv.State.CanTransitionTo(target) {
			return nil, fmt.Errorf("%w: %w: invoice %s is %s, cannot become %s",
				apperrors.ErrValidation, ErrInvalidTransition, id, inv.State, target)
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (s *invoiceService) setState(ctx context.Context, scope invoiceTx, invoices []domain.Invoice, state domain.InvoiceState, userID string) error {
	now := s.now().UTC()
	if err := scope.invoices.UpdateInvoiceStates(ctx, invoiceIDsOf(invoices), state, userID, now); err != nil {
		return fmt.Errorf("failed to update invoice state: %w", err)
	}
	for i := range invoices {
		invoices[i].State = state
		invoices[i].LastUpdatedAt = now
		invoices[i].LastUpdatedBy = userID
	}
	return nil
}

// ValidateInvoices validates invoices. Supplier invoices get their company
// amounts cached before the state change.
func (s *invoiceService) ValidateInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := s.withTransaction(ctx, func(scope invoiceTx) error {
		var err error
		invoices, err = s.lockInvoices(ctx, scope, invoiceIDs, domain.InvoiceStateValidated)
		if err != nil {
			return err
		}

		groups := amountGroups{}
		for i := range invoices {
			if invoices[i].Type != domain.InvoiceTypeIn {
				continue
			}
			amounts, err := scope.amounts.SaveCompanyAmounts(ctx, invoices[i])
			if err != nil {
				return err
			}
			invoices[i].CompanyAmountCache = amounts
			groups.add(invoices[i].InvoiceID, amounts)
		}
		if err := groups.write(ctx, scope.invoices); err != nil {
			return err
		}
		return s.setState(ctx, scope, invoices, domain.InvoiceStateValidated, userID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to validate invoices", slog.Any("invoice_ids", invoiceIDs))
		return nil, err
	}

	s.LogInfo(ctx, "Invoices validated", slog.Int("count", len(invoices)))
	return invoices, nil
}

// PostInvoices posts invoices: the ledger move is created and the state set
// first, then the company amounts are derived from the move and cached.
func (s *invoiceService) PostInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := s.withTransaction(ctx, func(scope invoiceTx) error {
		var err error
		invoices, err = s.lockInvoices(ctx, scope, invoiceIDs, domain.InvoiceStatePosted)
		if err != nil {
			return err
		}

		for i := range invoices {
			if invoices[i].HasMove() {
				continue
			}
			move, err := s.buildMove(ctx, invoices[i], userID)
			if err != nil {
				return err
			}
			if err := scope.moves.SaveMove(ctx, move); err != nil {
				return fmt.Errorf("failed to save move of invoice %s: %w", invoices[i].InvoiceID, err)
			}
			if err := scope.invoices.SetInvoiceMove(ctx, invoices[i].InvoiceID, &move.MoveID); err != nil {
				return fmt.Errorf("failed to link move of invoice %s: %w", invoices[i].InvoiceID, err)
			}
			moveID := move.MoveID
			invoices[i].MoveID = &moveID
		}
		if err := s.setState(ctx, scope, invoices, domain.InvoiceStatePosted, userID); err != nil {
			return err
		}

		groups := amountGroups{}
		for i := range invoices {
			amounts, err := scope.amounts.SaveCompanyAmounts(ctx, invoices[i])
			if err != nil {
				return err
			}
			invoices[i].CompanyAmountCache = amounts
			groups.add(invoices[i].InvoiceID, amounts)
		}
		if err := groups.write(ctx, scope.invoices); err != nil {
			return err
		}

		if s.strategy != domain.TaxAmountsCached {
			return nil
		}
		var taxes []domain.InvoiceTax
		for i := range invoices {
			computed, err := scope.amounts.ComputeTaxCompanyCaches(ctx, invoices[i])
			if err != nil {
				return err
			}
			invoices[i].Taxes = computed
			taxes = append(taxes, computed...)
		}
		if len(taxes) == 0 {
			return nil
		}
		if err := scope.invoices.WriteTaxCompanyCache(ctx, taxes); err != nil {
			return fmt.Errorf("failed to store tax company amounts: %w", err)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to post invoices", slog.Any("invoice_ids", invoiceIDs))
		return nil, err
	}

	s.LogInfo(ctx, "Invoices posted", slog.Int("count", len(invoices)))
	return invoices, nil
}

func (s *invoiceService) buildMove(ctx context.Context, invoice domain.Invoice, userID string) (domain.Move, error) {
	if invoice.AccountID == "" {
		return domain.Move{}, fmt.Errorf("%w: %w: invoice %s", apperrors.ErrValidation, ErrInvoiceWithoutParty, invoice.InvoiceID)
	}
	company, err := s.requireCompany(ctx, invoice.CompanyID)
	if err != nil {
		return domain.Move{}, err
	}
	companyCurrency, err := s.requireCurrency(ctx, company.CurrencyCode)
	if err != nil {
		return domain.Move{}, err
	}
	invoiceCurrency, err := s.requireCurrency(ctx, invoice.CurrencyCode)
	if err != nil {
		return domain.Move{}, err
	}

	now := s.now().UTC()
	return s.builder.Build(ctx, moveSource{
		invoice:         invoice,
		company:         *company,
		invoiceCurrency: *invoiceCurrency,
		companyCurrency: *companyCurrency,
		date:            invoice.RateDate(now),
	}, userID, now)
}

// DraftInvoices reverts invoices to draft. All cached amounts of the batch are
// cleared in one write and the ledger moves are removed.
func (s *invoiceService) DraftInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := s.withTransaction(ctx, func(scope invoiceTx) error {
		var err error
		invoices, err = s.lockInvoices(ctx, scope, invoiceIDs, domain.InvoiceStateDraft)
		if err != nil {
			return err
		}

		ids := invoiceIDsOf(invoices)
		if err := scope.invoices.WriteCompanyAmountCache(ctx, ids, domain.CompanyAmounts{}); err != nil {
			return fmt.Errorf("failed to clear company amounts: %w", err)
		}
		if err := scope.invoices.ClearTaxCompanyCache(ctx, ids); err != nil {
			return fmt.Errorf("failed to clear tax company amounts: %w", err)
		}
		if err := s.removeMoves(ctx, scope, invoices); err != nil {
			return err
		}
		for i := range invoices {
			invoices[i].ClearCompanyAmountCache()
		}
		return s.setState(ctx, scope, invoices, domain.InvoiceStateDraft, userID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reset invoices to draft", slog.Any("invoice_ids", invoiceIDs))
		return nil, err
	}

	s.LogInfo(ctx, "Invoices reset to draft", slog.Int("count", len(invoices)))
	return invoices, nil
}

// CancelInvoices cancels invoices. Cached amounts are left as they are.
func (s *invoiceService) CancelInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := s.withTransaction(ctx, func(scope invoiceTx) error {
		var err error
		invoices, err = s.lockInvoices(ctx, scope, invoiceIDs, domain.InvoiceStateCancelled)
		if err != nil {
			return err
		}
		if err := s.removeMoves(ctx, scope, invoices); err != nil {
			return err
		}
		return s.setState(ctx, scope, invoices, domain.InvoiceStateCancelled, userID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cancel invoices", slog.Any("invoice_ids", invoiceIDs))
		return nil, err
	}

	s.LogInfo(ctx, "Invoices cancelled", slog.Int("count", len(invoices)))
	return invoices, nil
}

func (s *invoiceService) removeMoves(ctx context.Context, scope invoiceTx, invoices []domain.Invoice) error {
	for i := range invoices {
		if !invoices[i].HasMove() {
			continue
		}
		moveID := *invoices[i].MoveID
		if err := scope.invoices.SetInvoiceMove(ctx, invoices[i].InvoiceID, nil); err != nil {
			return fmt.Errorf("failed to unlink move of invoice %s: %w", invoices[i].InvoiceID, err)
		}
		if err := scope.moves.DeleteMove(ctx, moveID); err != nil {
			return fmt.Errorf("failed to delete move %s: %w", moveID, err)
		}
		invoices[i].MoveID = nil
	}
	return nil
}

// amountGroups batches cache writes so that invoices sharing the same values
// are updated by one statement.
type amountGroups []amountGroup

type amountGroup struct {
	amounts    domain.CompanyAmounts
	invoiceIDs []string
}

func (g *amountGroups) add(invoiceID string, amounts domain.CompanyAmounts) {
	for i := range *g {
		if (*g)[i].amounts.Equal(amounts) {
			(*g)[i].invoiceIDs = append((*g)[i].invoiceIDs, invoiceID)
			return
		}
	}
	*g = append(*g, amountGroup{amounts: amounts, invoiceIDs: []string{invoiceID}})
}

func (g amountGroups) write(ctx context.Context, repo portsrepo.InvoiceCacheWriter) error {
	for _, group := range g {
		if err := repo.WriteCompanyAmountCache(ctx, group.invoiceIDs, group.amounts); err != nil {
			return fmt.Errorf("failed to store company amounts: %w", err)
		}
	}
	return nil
}

func invoiceIDsOf(invoices []domain.Invoice) []string {
	ids := make([]string, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.InvoiceID
	}
	return ids
}

func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, s := range input {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.DateOnly(*t)
	return &d
}
