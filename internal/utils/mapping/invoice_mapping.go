package mapping

import (
	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/SscSPs/invoice_company_currency/internal/models"
)

// ToModelInvoice converts a domain Invoice header to a model Invoice.
// Lines and taxes are mapped separately.
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:            d.InvoiceID,
		CompanyID:            d.CompanyID,
		Number:               d.Number,
		Type:                 string(d.Type),
		State:                string(d.State),
		CurrencyCode:         d.CurrencyCode,
		InvoiceDate:          d.InvoiceDate,
		AccountingDate:       d.AccountingDate,
		AccountID:            d.AccountID,
		MoveID:               d.MoveID,
		Description:          d.Description,
		CompanyUntaxedAmount: ToNullDecimal(d.CompanyAmountCache.Untaxed),
		CompanyTaxAmount:     ToNullDecimal(d.CompanyAmountCache.Tax),
		CompanyTotalAmount:   ToNullDecimal(d.CompanyAmountCache.Total),
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice with its lines and taxes to a domain Invoice.
func ToDomainInvoice(m models.Invoice, lines []models.InvoiceLine, taxes []models.InvoiceTax) domain.Invoice {
	d := domain.Invoice{
		InvoiceID:      m.InvoiceID,
		CompanyID:      m.CompanyID,
		Number:         m.Number,
		Type:           domain.InvoiceType(m.Type),
		State:          domain.InvoiceState(m.State),
		CurrencyCode:   m.CurrencyCode,
		InvoiceDate:    m.InvoiceDate,
		AccountingDate: m.AccountingDate,
		AccountID:      m.AccountID,
		MoveID:         m.MoveID,
		Description:    m.Description,
		CompanyAmountCache: domain.CompanyAmounts{
			Untaxed: FromNullDecimal(m.CompanyUntaxedAmount),
			Tax:     FromNullDecimal(m.CompanyTaxAmount),
			Total:   FromNullDecimal(m.CompanyTotalAmount),
		},
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	d.Lines = make([]domain.InvoiceLine, len(lines))
	for i, l := range lines {
		d.Lines[i] = ToDomainInvoiceLine(l)
	}
	d.Taxes = make([]domain.InvoiceTax, len(taxes))
	for i, t := range taxes {
		d.Taxes[i] = ToDomainInvoiceTax(t)
	}
	return d
}

// ToModelInvoiceLine converts a domain InvoiceLine to a model InvoiceLine
func ToModelInvoiceLine(d domain.InvoiceLine) models.InvoiceLine {
	return models.InvoiceLine(d)
}

// ToDomainInvoiceLine converts a model InvoiceLine to a domain InvoiceLine
func ToDomainInvoiceLine(m models.InvoiceLine) domain.InvoiceLine {
	return domain.InvoiceLine(m)
}

// ToModelInvoiceTax converts a domain InvoiceTax to a model InvoiceTax
func ToModelInvoiceTax(d domain.InvoiceTax) models.InvoiceTax {
	return models.InvoiceTax{
		InvoiceTaxID:       d.InvoiceTaxID,
		InvoiceID:          d.InvoiceID,
		Description:        d.Description,
		AccountID:          d.AccountID,
		Base:               d.Base,
		Amount:             d.Amount,
		CompanyBaseCache:   ToNullDecimal(d.CompanyBaseCache),
		CompanyAmountCache: ToNullDecimal(d.CompanyAmountCache),
		Sequence:           d.Sequence,
	}
}

// ToDomainInvoiceTax converts a model InvoiceTax to a domain InvoiceTax
func ToDomainInvoiceTax(m models.InvoiceTax) domain.InvoiceTax {
	return domain.InvoiceTax{
		InvoiceTaxID:       m.InvoiceTaxID,
		InvoiceID:          m.InvoiceID,
		Description:        m.Description,
		AccountID:          m.AccountID,
		Base:               m.Base,
		Amount:             m.Amount,
		CompanyBaseCache:   FromNullDecimal(m.CompanyBaseCache),
		CompanyAmountCache: FromNullDecimal(m.CompanyAmountCache),
		Sequence:           m.Sequence,
	}
}
