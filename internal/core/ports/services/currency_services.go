package services

import (
	"context"
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/SscSPs/invoice_company_currency/internal/dto"
	"github.com/shopspring/decimal"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriterSvc defines write operations for currency data
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// GetExchangeRate retrieves the latest rate stored for the pair.
	GetExchangeRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error)

	// GetExchangeRateAsOf retrieves the rate between two currencies in force on
	// asOf. The inverse of the reverse pair is used when no direct rate exists.
	GetExchangeRateAsOf(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// CreateExchangeRate persists a new exchange rate.
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error)
}

// CurrencyConverterSvc converts amounts between currencies.
type CurrencyConverterSvc interface {
	// Compute converts amount from one currency to another with the rate in force
	// on asOf. Identical currencies convert without a rate lookup. When round is
	// set the result is rounded to the target currency.
	Compute(ctx context.Context, from domain.Currency, amount decimal.Decimal, to domain.Currency, round bool, asOf time.Time) (decimal.Decimal, error)

	// ConvertAmount is Compute for currency codes.
	ConvertAmount(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, round bool, asOf time.Time) (decimal.Decimal, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
	CurrencyConverterSvc
}
