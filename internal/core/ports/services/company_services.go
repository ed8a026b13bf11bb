package services

import (
	"context"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/SscSPs/invoice_company_currency/internal/dto"
)

// CompanySvcFacade defines operations on companies
type CompanySvcFacade interface {
	GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, creatorUserID string) (*domain.Company, error)
}
