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
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// companyAmountService computes invoice amounts in the company currency.
// Lookup order for invoice totals: cache, ledger move, conversion.
type companyAmountService struct {
	BaseService
	companyRepo  portsrepo.CompanyReader
	currencyRepo portsrepo.CurrencyReader
	moveRepo     portsrepo.MoveRepositoryWithTx
	moveReader   portsrepo.MoveReader
	converter    portssvc.CurrencyConverterSvc
	strategy     domain.TaxAmountStrategy
	now          func() time.Time
}

// CompanyAmountOption configures the company amount service
type CompanyAmountOption func(*companyAmountService)

// WithTaxAmountStrategy selects how tax-line company amounts are produced.
func WithTaxAmountStrategy(strategy domain.TaxAmountStrategy) CompanyAmountOption {
	return func(s *companyAmountService) {
		s.strategy = strategy
	}
}

// WithAmountClock overrides the clock used when an invoice has no currency date.
func WithAmountClock(now func() time.Time) CompanyAmountOption {
	return func(s *companyAmountService) {
		s.now = now
	}
}

// NewCompanyAmountService creates the company amount service.
func NewCompanyAmountService(
	companyRepo portsrepo.CompanyReader,
	currencyRepo portsrepo.CurrencyReader,
	moveRepo portsrepo.MoveRepositoryWithTx,
	converter portssvc.CurrencyConverterSvc,
	options ...CompanyAmountOption,
) portssvc.CompanyAmountSvc {
	svc := &companyAmountService{
		companyRepo:  companyRepo,
		currencyRepo: currencyRepo,
		moveRepo:     moveRepo,
		moveReader:   moveRepo,
		converter:    converter,
		strategy:     domain.TaxAmountsLive,
		now:          time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CompanyAmountSvc = (*companyAmountService)(nil)

// WithTx returns a copy whose ledger reads see the writes of tx.
func (s *companyAmountService) WithTx(tx pgx.Tx) portssvc.CompanyAmountSvc {
	clone := *s
	clone.moveReader = s.moveRepo.WithTx(tx)
	return &clone
}

// currencyPair is the company side of an invoice. company is nil when the
// invoice has no company or the company no longer exists.
type currencyPair struct {
	company         *domain.Company
	invoiceCurrency domain.Currency
	companyCurrency domain.Currency
	companyKnown    bool
}

func (p currencyPair) different() bool {
	return p.company != nil && p.company.CurrencyCode != "" &&
		p.company.CurrencyCode != p.invoiceCurrency.CurrencyCode
}

func (p currencyPair) digits() int {
	if !p.companyKnown {
		return domain.DefaultPrecision
	}
	return p.companyCurrency.Precision
}

// pairResolver memoizes company and currency lookups across a batch.
type pairResolver struct {
	svc        *companyAmountService
	companies  map[string]*domain.Company
	currencies map[string]*domain.Currency
}

func (s *companyAmountService) newResolver() *pairResolver {
	return &pairResolver{
		svc:        s,
		companies:  make(map[string]*domain.Company),
		currencies: make(map[string]*domain.Currency),
	}
}

func (r *pairResolver) company(ctx context.Context, companyID string) (*domain.Company, error) {
	if c, ok := r.companies[companyID]; ok {
		return c, nil
	}
	c, err := r.svc.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load company %s: %w", companyID, err)
		}
		r.svc.LogDebug(ctx, "Company not found, using neutral currency defaults", slog.String("company_id", companyID))
		c = nil
	}
	r.companies[companyID] = c
	return c, nil
}

// currency returns the currency for code; unknown codes get the default precision.
func (r *pairResolver) currency(ctx context.Context, code string) (domain.Currency, bool, error) {
	if c, ok := r.currencies[code]; ok {
		if c == nil {
			return domain.Currency{CurrencyCode: code, Precision: domain.DefaultPrecision}, false, nil
		}
		return *c, true, nil
	}
	c, err := r.svc.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return domain.Currency{}, false, fmt.Errorf("failed to load currency %s: %w", code, err)
		}
		c = nil
	}
	r.currencies[code] = c
	if c == nil {
		return domain.Currency{CurrencyCode: code, Precision: domain.DefaultPrecision}, false, nil
	}
	return *c, true, nil
}

func (r *pairResolver) resolve(ctx context.Context, invoice domain.Invoice) (currencyPair, error) {
	pair := currencyPair{invoiceCurrency: domain.Currency{CurrencyCode: invoice.CurrencyCode, Precision: domain.DefaultPrecision}}
	if invoice.CompanyID == "" {
		return pair, nil
	}

	company, err := r.company(ctx, invoice.CompanyID)
	if err != nil || company == nil {
		return pair, err
	}
	pair.company = company

	if company.CurrencyCode != "" {
		pair.companyCurrency, pair.companyKnown, err = r.currency(ctx, company.CurrencyCode)
		if err != nil {
			return pair, err
		}
	}
	if pair.different() {
		pair.invoiceCurrency, _, err = r.currency(ctx, invoice.CurrencyCode)
		if err != nil {
			return pair, err
		}
	}
	return pair, nil
}

// DifferentCurrencies reports whether the invoice and company currencies differ.
func (s *companyAmountService) DifferentCurrencies(ctx context.Context, invoice domain.Invoice) (bool, error) {
	pair, err := s.newResolver().resolve(ctx, invoice)
	if err != nil {
		return false, err
	}
	return pair.different(), nil
}

// CompanyCurrencyDigits returns the precision of the company currency.
func (s *companyAmountService) CompanyCurrencyDigits(ctx context.Context, invoice domain.Invoice) (int, error) {
	pair, err := s.newResolver().resolve(ctx, invoice)
	if err != nil {
		return domain.DefaultPrecision, err
	}
	return pair.digits(), nil
}

// CompanyAmount returns one invoice total in the company currency. It never persists.
func (s *companyAmountService) CompanyAmount(ctx context.Context, invoice domain.Invoice, kind domain.AmountKind) (decimal.Decimal, error) {
	if !kind.IsValid() {
		return decimal.Zero, fmt.Errorf("%w: unknown amount kind %q", apperrors.ErrValidation, kind)
	}
	amounts, err := s.companyAmounts(ctx, s.newResolver(), invoice, []domain.AmountKind{kind})
	if err != nil {
		return decimal.Zero, err
	}
	return *amounts.Get(kind), nil
}

// CompanyAmounts computes the requested kinds for every invoice.
func (s *companyAmountService) CompanyAmounts(ctx context.Context, invoices []domain.Invoice, kinds []domain.AmountKind) (map[string]domain.CompanyAmounts, error) {
	for _, kind := range kinds {
		if !kind.IsValid() {
			return nil, fmt.Errorf("%w: unknown amount kind %q", apperrors.ErrValidation, kind)
		}
	}

	resolver := s.newResolver()
	result := make(map[string]domain.CompanyAmounts, len(invoices))
	for _, invoice := range invoices {
		amounts, err := s.companyAmounts(ctx, resolver, invoice, kinds)
		if err != nil {
			return nil, err
		}
		result[invoice.InvoiceID] = amounts
	}
	return result, nil
}

func (s *companyAmountService) companyAmounts(ctx context.Context, resolver *pairResolver, invoice domain.Invoice, kinds []domain.AmountKind) (domain.CompanyAmounts, error) {
	var (
		result  domain.CompanyAmounts
		missing []domain.AmountKind
	)
	for _, kind := range kinds {
		if cached := invoice.CompanyAmountCache.Get(kind); cached != nil {
			result.Set(kind, *cached)
			continue
		}
		missing = append(missing, kind)
	}
	if len(missing) == 0 {
		return result, nil
	}

	computed, err := s.deriveAmounts(ctx, resolver, invoice, missing)
	if err != nil {
		return result, err
	}
	for _, kind := range missing {
		result.Set(kind, *computed.Get(kind))
	}
	return result, nil
}

// SaveCompanyAmounts derives the three totals without looking at the cache.
func (s *companyAmountService) SaveCompanyAmounts(ctx context.Context, invoice domain.Invoice) (domain.CompanyAmounts, error) {
	return s.deriveAmounts(ctx, s.newResolver(), invoice, domain.AmountKinds)
}

// deriveAmounts reads the ledger when the invoice has a move and converts otherwise.
func (s *companyAmountService) deriveAmounts(ctx context.Context, resolver *pairResolver, invoice domain.Invoice, kinds []domain.AmountKind) (domain.CompanyAmounts, error) {
	var result domain.CompanyAmounts

	if invoice.HasMove() {
		sums, err := s.moveReader.SumMoveLines(ctx, invoice.InvoiceID)
		if err != nil {
			return result, fmt.Errorf("failed to sum ledger lines of invoice %s: %w", invoice.InvoiceID, err)
		}
		for _, kind := range kinds {
			result.Set(kind, sums.CompanyAmount(kind, invoice.Type))
		}
		return result, nil
	}

	pair, err := resolver.resolve(ctx, invoice)
	if err != nil {
		return result, err
	}
	for _, kind := range kinds {
		value, err := s.toCompany(ctx, pair, invoice, invoice.Amount(kind))
		if err != nil {
			return result, err
		}
		result.Set(kind, value)
	}
	return result, nil
}

// toCompany converts an invoice-currency amount at the invoice rate date.
// Identical currencies return the amount unchanged.
func (s *companyAmountService) toCompany(ctx context.Context, pair currencyPair, invoice domain.Invoice, amount decimal.Decimal) (decimal.Decimal, error) {
	if !pair.different() {
		return amount, nil
	}
	converted, err := s.converter.Compute(ctx, pair.invoiceCurrency, amount, pair.companyCurrency, true, invoice.RateDate(s.now()))
	if err != nil {
		s.LogError(ctx, err, "Currency conversion failed",
			slog.String("invoice_id", invoice.InvoiceID),
			slog.String("from", pair.invoiceCurrency.CurrencyCode),
			slog.String("to", pair.companyCurrency.CurrencyCode))
		return decimal.Zero, err
	}
	return converted, nil
}

// TaxCompanyAmounts returns the company base and amount of a tax line. Under the
// cached strategy a present cache field is used as is.
func (s *companyAmountService) TaxCompanyAmounts(ctx context.Context, invoice domain.Invoice, tax domain.InvoiceTax) (domain.TaxCompanyAmounts, error) {
	return s.taxCompanyAmounts(ctx, s.newResolver(), invoice, tax, s.strategy == domain.TaxAmountsCached)
}

func (s *companyAmountService) taxCompanyAmounts(ctx context.Context, resolver *pairResolver, invoice domain.Invoice, tax domain.InvoiceTax, useCache bool) (domain.TaxCompanyAmounts, error) {
	result := domain.TaxCompanyAmounts{InvoiceTaxID: tax.InvoiceTaxID}

	var baseCache, amountCache *decimal.Decimal
	if useCache {
		baseCache, amountCache = tax.CompanyBaseCache, tax.CompanyAmountCache
	}
	if baseCache != nil && amountCache != nil {
		result.CompanyBase, result.CompanyAmount = *baseCache, *amountCache
		return result, nil
	}

	pair, err := resolver.resolve(ctx, invoice)
	if err != nil {
		return result, err
	}
	if baseCache != nil {
		result.CompanyBase = *baseCache
	} else if result.CompanyBase, err = s.toCompany(ctx, pair, invoice, tax.Base); err != nil {
		return result, err
	}
	if amountCache != nil {
		result.CompanyAmount = *amountCache
	} else if result.CompanyAmount, err = s.toCompany(ctx, pair, invoice, tax.Amount); err != nil {
		return result, err
	}
	return result, nil
}

// ComputeTaxCompanyCaches converts every tax line and returns copies carrying the results.
func (s *companyAmountService) ComputeTaxCompanyCaches(ctx context.Context, invoice domain.Invoice) ([]domain.InvoiceTax, error) {
	resolver := s.newResolver()
	taxes := make([]domain.InvoiceTax, len(invoice.Taxes))
	for i, tax := range invoice.Taxes {
		amounts, err := s.taxCompanyAmounts(ctx, resolver, invoice, tax, false)
		if err != nil {
			return nil, err
		}
		tax.CompanyBaseCache = &amounts.CompanyBase
		tax.CompanyAmountCache = &amounts.CompanyAmount
		taxes[i] = tax
	}
	return taxes, nil
}

// LineCompanyAmount converts the amount of an invoice line.
func (s *companyAmountService) LineCompanyAmount(ctx context.Context, invoice domain.Invoice, line domain.InvoiceLine) (decimal.Decimal, error) {
	pair, err := s.newResolver().resolve(ctx, invoice)
	if err != nil {
		return decimal.Zero, err
	}
	return s.toCompany(ctx, pair, invoice, line.Amount)
}

// Valuate gathers the company-currency view of an invoice.
func (s *companyAmountService) Valuate(ctx context.Context, invoice domain.Invoice) (*domain.InvoiceValuation, error) {
	resolver := s.newResolver()
	pair, err := resolver.resolve(ctx, invoice)
	if err != nil {
		return nil, err
	}
	amounts, err := s.companyAmounts(ctx, resolver, invoice, domain.AmountKinds)
	if err != nil {
		return nil, err
	}

	valuation := &domain.InvoiceValuation{
		DifferentCurrencies:   pair.different(),
		CompanyCurrencyDigits: pair.digits(),
		Amounts:               amounts,
	}
	if pair.company != nil {
		valuation.CompanyCurrencyCode = pair.company.CurrencyCode
	}
	return valuation, nil
}
