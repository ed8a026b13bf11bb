package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_company_currency/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) FindExchangeRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrencyCode, toCurrencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) FindExchangeRateAsOf(ctx context.Context, fromCurrencyCode, toCurrencyCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrencyCode, toCurrencyCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

// --- Mock CompanyRepository ---
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepository) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Company), args.Error(1)
}

// --- Mock transaction handling shared by the tx-aware repositories ---
type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *mockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock InvoiceRepository ---
// WithTx returns the mock itself so expectations cover both scopes.
type MockInvoiceRepository struct {
	mockTxManager
}

var _ portsrepo.InvoiceRepositoryWithTx = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) WithTx(pgx.Tx) portsrepo.InvoiceRepositoryFacade {
	return m
}

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListInvoices(ctx context.Context, companyID string, limit int, nextToken *string) ([]domain.Invoice, *string, error) {
	args := m.Called(ctx, companyID, limit, nextToken)
	var token *string
	if t := args.Get(1); t != nil {
		token = t.(*string)
	}
	if args.Get(0) == nil {
		return nil, token, args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), token, args.Error(2)
}

func (m *MockInvoiceRepository) FindInvoicesByIDsForUpdate(ctx context.Context, invoiceIDs []string) ([]domain.Invoice, error) {
	args := m.Called(ctx, invoiceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateInvoiceStates(ctx context.Context, invoiceIDs []string, state domain.InvoiceState, userID string, now time.Time) error {
	args := m.Called(ctx, invoiceIDs, state, userID, now)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SetInvoiceMove(ctx context.Context, invoiceID string, moveID *string) error {
	args := m.Called(ctx, invoiceID, moveID)
	return args.Error(0)
}

func (m *MockInvoiceRepository) WriteCompanyAmountCache(ctx context.Context, invoiceIDs []string, amounts domain.CompanyAmounts) error {
	args := m.Called(ctx, invoiceIDs, amounts)
	return args.Error(0)
}

func (m *MockInvoiceRepository) WriteTaxCompanyCache(ctx context.Context, taxes []domain.InvoiceTax) error {
	args := m.Called(ctx, taxes)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ClearTaxCompanyCache(ctx context.Context, invoiceIDs []string) error {
	args := m.Called(ctx, invoiceIDs)
	return args.Error(0)
}

// --- Mock MoveRepository ---
type MockMoveRepository struct {
	mock.Mock
}

var _ portsrepo.MoveRepositoryWithTx = (*MockMoveRepository)(nil)

func (m *MockMoveRepository) WithTx(pgx.Tx) portsrepo.MoveRepositoryFacade {
	return m
}

func (m *MockMoveRepository) FindMoveByID(ctx context.Context, moveID string) (*domain.Move, error) {
	args := m.Called(ctx, moveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Move), args.Error(1)
}

func (m *MockMoveRepository) SumMoveLines(ctx context.Context, invoiceID string) (domain.MoveLineSums, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).(domain.MoveLineSums), args.Error(1)
}

func (m *MockMoveRepository) SaveMove(ctx context.Context, move domain.Move) error {
	args := m.Called(ctx, move)
	return args.Error(0)
}

func (m *MockMoveRepository) DeleteMove(ctx context.Context, moveID string) error {
	args := m.Called(ctx, moveID)
	return args.Error(0)
}

// --- Mock CurrencyConverterSvc ---
type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Compute(ctx context.Context, from domain.Currency, amount decimal.Decimal, to domain.Currency, round bool, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from.CurrencyCode, amount.String(), to.CurrencyCode, round, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockConverter) ConvertAmount(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, round bool, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, amount.String(), fromCode, toCode, round, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func strPtr(v string) *string { return &v }
