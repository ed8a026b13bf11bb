package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/apperrors"
	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	portsrepo "github.com/SscSPs/invoice_company_currency/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_company_currency/internal/core/ports/services"
	"github.com/SscSPs/invoice_company_currency/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// exchangeRateService provides business logic for exchange rates and conversion.
type exchangeRateService struct {
	BaseService
	rateRepo        portsrepo.ExchangeRateRepositoryFacade
	currencyService portssvc.CurrencyReaderSvc
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, currencyService portssvc.CurrencyReaderSvc) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		rateRepo:        rateRepo,
		currencyService: currencyService,
	}
}

// CreateExchangeRate handles the creation of a new exchange rate.
func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if req.FromCurrencyCode == req.ToCurrencyCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	for _, code := range []string{req.FromCurrencyCode, req.ToCurrencyCode} {
		if _, err := s.currencyService.GetCurrencyByCode(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, code)
			}
			return nil, fmt.Errorf("failed to validate currency '%s': %w", code, err)
		}
	}

	now := time.Now().UTC()
	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: req.FromCurrencyCode,
		ToCurrencyCode:   req.ToCurrencyCode,
		Rate:             req.Rate,
		DateEffective:    domain.DateOnly(req.DateEffective),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		s.LogError(ctx, err, "Failed to save exchange rate",
			slog.String("from", rate.FromCurrencyCode),
			slog.String("to", rate.ToCurrencyCode))
		return nil, fmt.Errorf("failed to create exchange rate in service: %w", err)
	}

	return &rate, nil
}

// GetExchangeRate retrieves the latest exchange rate stored for a currency pair.
func (s *exchangeRateService) GetExchangeRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	fromCode, toCode, err := normalizePair(fromCode, toCode)
	if err != nil {
		return nil, err
	}

	rate, err := s.rateRepo.FindExchangeRate(ctx, fromCode, toCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate in service: %w", err)
	}
	return rate, nil
}

// GetExchangeRateAsOf retrieves the rate in force on asOf, falling back to the
// inverse of the reverse pair.
func (s *exchangeRateService) GetExchangeRateAsOf(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	fromCode, toCode, err := normalizePair(fromCode, toCode)
	if err != nil {
		return nil, err
	}
	return s.findRate(ctx, fromCode, toCode, domain.DateOnly(asOf))
}

func (s *exchangeRateService) findRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindExchangeRateAsOf(ctx, fromCode, toCode, asOf)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to find exchange rate %s/%s: %w", fromCode, toCode, err)
	}

	reverse, err := s.rateRepo.FindExchangeRateAsOf(ctx, toCode, fromCode, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no exchange rate from %s to %s on %s",
				apperrors.ErrNotFound, fromCode, toCode, asOf.Format(time.DateOnly))
		}
		return nil, fmt.Errorf("failed to find exchange rate %s/%s: %w", toCode, fromCode, err)
	}
	if reverse.Rate.IsZero() {
		return nil, fmt.Errorf("%w: zero exchange rate from %s to %s", apperrors.ErrValidation, toCode, fromCode)
	}
	inverse := reverse.Inverse()
	return &inverse, nil
}

// Compute converts amount between two currencies with the rate in force on asOf.
func (s *exchangeRateService) Compute(ctx context.Context, from domain.Currency, amount decimal.Decimal, to domain.Currency, round bool, asOf time.Time) (decimal.Decimal, error) {
	if from.CurrencyCode == to.CurrencyCode {
		if round {
			return to.Round(amount), nil
		}
		return amount, nil
	}

	rate, err := s.findRate(ctx, from.CurrencyCode, to.CurrencyCode, domain.DateOnly(asOf))
	if err != nil {
		return decimal.Zero, err
	}

	converted := amount.Mul(rate.Rate)
	if round {
		converted = to.Round(converted)
	}
	s.LogDebug(ctx, "Converted amount",
		slog.String("from", from.CurrencyCode),
		slog.String("to", to.CurrencyCode),
		slog.String("amount", amount.String()),
		slog.String("converted", converted.String()),
		slog.String("rate", rate.Rate.String()))
	return converted, nil
}

// ConvertAmount loads both currencies and delegates to Compute.
func (s *exchangeRateService) ConvertAmount(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, round bool, asOf time.Time) (decimal.Decimal, error) {
	fromCode, toCode, err := normalizePair(fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	from, err := s.currencyService.GetCurrencyByCode(ctx, fromCode)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := s.currencyService.GetCurrencyByCode(ctx, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return s.Compute(ctx, *from, amount, *to, round, asOf)
}

func normalizePair(fromCode, toCode string) (string, string, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if len(fromCode) != 3 || len(toCode) != 3 {
		return "", "", fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	return fromCode, toCode, nil
}
