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
)

type companyService struct {
	BaseService
	companyRepo  portsrepo.CompanyRepositoryFacade
	currencyRepo portsrepo.CurrencyReader
}

// NewCompanyService creates a company service.
func NewCompanyService(companyRepo portsrepo.CompanyRepositoryFacade, currencyRepo portsrepo.CurrencyReader) portssvc.CompanySvcFacade {
	return &companyService{companyRepo: companyRepo, currencyRepo: currencyRepo}
}

func (s *companyService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, creatorUserID string) (*domain.Company, error) {
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, req.CurrencyCode)
		}
		return nil, fmt.Errorf("failed to validate currency '%s': %w", req.CurrencyCode, err)
	}

	now := time.Now().UTC()
	company := domain.Company{
		CompanyID:    uuid.NewString(),
		Name:         req.Name,
		CurrencyCode: req.CurrencyCode,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		s.LogError(ctx, err, "Failed to save company", slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.LogInfo(ctx, "Company created", slog.String("company_id", company.CompanyID))
	return &company, nil
}

func (s *companyService) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

func (s *companyService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	companies, err := s.companyRepo.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	if companies == nil {
		return []domain.Company{}, nil
	}
	return companies, nil
}
