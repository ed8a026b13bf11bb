package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_company_currency/internal/core/ports/services"
	"github.com/SscSPs/invoice_company_currency/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock InvoiceService ---
type MockInvoiceService struct {
	mock.Mock
}

var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

func (m *MockInvoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, *domain.InvoiceValuation, error) {
	args := m.Called(ctx, invoiceID)
	inv, _ := args.Get(0).(*domain.Invoice)
	val, _ := args.Get(1).(*domain.InvoiceValuation)
	return inv, val, args.Error(2)
}

func (m *MockInvoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) ([]domain.Invoice, map[string]domain.CompanyAmounts, *string, error) {
	args := m.Called(ctx, params)
	invoices, _ := args.Get(0).([]domain.Invoice)
	amounts, _ := args.Get(1).(map[string]domain.CompanyAmounts)
	token, _ := args.Get(2).(*string)
	return invoices, amounts, token, args.Error(3)
}

func (m *MockInvoiceService) GetTaxCompanyAmounts(ctx context.Context, invoiceID string) (*domain.Invoice, []domain.TaxCompanyAmounts, error) {
	args := m.Called(ctx, invoiceID)
	inv, _ := args.Get(0).(*domain.Invoice)
	amounts, _ := args.Get(1).([]domain.TaxCompanyAmounts)
	return inv, amounts, args.Error(2)
}

func (m *MockInvoiceService) GetLineCompanyAmounts(ctx context.Context, invoiceID string) (*domain.Invoice, map[string]decimal.Decimal, error) {
	args := m.Called(ctx, invoiceID)
	inv, _ := args.Get(0).(*domain.Invoice)
	amounts, _ := args.Get(1).(map[string]decimal.Decimal)
	return inv, amounts, args.Error(2)
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, req, creatorUserID)
	inv, _ := args.Get(0).(*domain.Invoice)
	return inv, args.Error(1)
}

func (m *MockInvoiceService) UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, req, userID)
	inv, _ := args.Get(0).(*domain.Invoice)
	return inv, args.Error(1)
}

func (m *MockInvoiceService) CopyInvoice(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, userID)
	inv, _ := args.Get(0).(*domain.Invoice)
	return inv, args.Error(1)
}

func (m *MockInvoiceService) workflow(ctx context.Context, method string, invoiceIDs []string, userID string) ([]domain.Invoice, error) {
	args := m.MethodCalled(method, ctx, invoiceIDs, userID)
	invoices, _ := args.Get(0).([]domain.Invoice)
	return invoices, args.Error(1)
}

func (m *MockInvoiceService) ValidateInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error) {
	return m.workflow(ctx, "ValidateInvoices", invoiceIDs, userID)
}

func (m *MockInvoiceService) PostInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error) {
	return m.workflow(ctx, "PostInvoices", invoiceIDs, userID)
}

func (m *MockInvoiceService) DraftInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error) {
	return m.workflow(ctx, "DraftInvoices", invoiceIDs, userID)
}

func (m *MockInvoiceService) CancelInvoices(ctx context.Context, invoiceIDs []string, userID string) ([]domain.Invoice, error) {
	return m.workflow(ctx, "CancelInvoices", invoiceIDs, userID)
}

// --- Mock ExchangeRateService ---
type MockExchangeRateService struct {
	mock.Mock
}

var _ portssvc.ExchangeRateSvcFacade = (*MockExchangeRateService)(nil)

func (m *MockExchangeRateService) GetExchangeRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode)
	rate, _ := args.Get(0).(*domain.ExchangeRate)
	return rate, args.Error(1)
}

func (m *MockExchangeRateService) GetExchangeRateAsOf(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode, asOf)
	rate, _ := args.Get(0).(*domain.ExchangeRate)
	return rate, args.Error(1)
}

func (m *MockExchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, req, creatorUserID)
	rate, _ := args.Get(0).(*domain.ExchangeRate)
	return rate, args.Error(1)
}

func (m *MockExchangeRateService) Compute(ctx context.Context, from domain.Currency, amount decimal.Decimal, to domain.Currency, round bool, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, from, amount, to, round, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockExchangeRateService) ConvertAmount(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, round bool, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, amount.String(), fromCode, toCode, round, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

var _ portssvc.CurrencySvcFacade = (*MockCurrencyService)(nil)

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	currency, _ := args.Get(0).(*domain.Currency)
	return currency, args.Error(1)
}

func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	currencies, _ := args.Get(0).([]domain.Currency)
	return currencies, args.Error(1)
}

func (m *MockCurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	args := m.Called(ctx, req, creatorUserID)
	currency, _ := args.Get(0).(*domain.Currency)
	return currency, args.Error(1)
}

// --- Mock CompanyService ---
type MockCompanyService struct {
	mock.Mock
}

var _ portssvc.CompanySvcFacade = (*MockCompanyService)(nil)

func (m *MockCompanyService) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	company, _ := args.Get(0).(*domain.Company)
	return company, args.Error(1)
}

func (m *MockCompanyService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	args := m.Called(ctx)
	companies, _ := args.Get(0).([]domain.Company)
	return companies, args.Error(1)
}

func (m *MockCompanyService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, creatorUserID string) (*domain.Company, error) {
	args := m.Called(ctx, req, creatorUserID)
	company, _ := args.Get(0).(*domain.Company)
	return company, args.Error(1)
}
