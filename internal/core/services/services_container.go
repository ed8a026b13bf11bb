package services

import (
	portsrepo "github.com/SscSPs/invoice_company_currency/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_company_currency/internal/core/ports/services"
	"github.com/SscSPs/invoice_company_currency/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, container.Currency)
	container.Company = NewCompanyService(repos.CompanyRepo, repos.CurrencyRepo)

	// Company amounts depend on the converter; invoices depend on both.
	container.CompanyAmount = NewCompanyAmountService(
		repos.CompanyRepo,
		repos.CurrencyRepo,
		repos.MoveRepo,
		container.ExchangeRate,
		WithTaxAmountStrategy(cfg.TaxAmountStrategy),
	)
	container.Invoice = NewInvoiceService(
		repos.InvoiceRepo,
		repos.MoveRepo,
		repos.CompanyRepo,
		repos.CurrencyRepo,
		container.CompanyAmount,
		container.ExchangeRate,
		WithInvoiceTaxAmountStrategy(cfg.TaxAmountStrategy),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.CurrencySvcFacade     = (*currencyService)(nil)
	_ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)
	_ portssvc.CompanySvcFacade      = (*companyService)(nil)
)
