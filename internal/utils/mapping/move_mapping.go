package mapping

import (
	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/SscSPs/invoice_company_currency/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelMove converts a domain Move header to a model Move
func ToModelMove(d domain.Move) models.Move {
	m := models.Move{
		MoveID:       d.MoveID,
		CompanyID:    d.CompanyID,
		MoveDate:     d.Date,
		CurrencyCode: d.CurrencyCode,
		Description:  d.Description,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
	if d.InvoiceID != "" {
		invoiceID := d.InvoiceID
		m.InvoiceID = &invoiceID
	}
	return m
}

// ToModelMoveLine converts a domain MoveLine to a model MoveLine. The second
// currency columns stay NULL when the line has no second currency.
func ToModelMoveLine(d domain.MoveLine) models.MoveLine {
	m := models.MoveLine{
		MoveLineID:  d.MoveLineID,
		MoveID:      d.MoveID,
		AccountID:   d.AccountID,
		Debit:       d.Debit,
		Credit:      d.Credit,
		Description: d.Description,
	}
	if d.SecondCurrencyCode != "" {
		code := d.SecondCurrencyCode
		m.SecondCurrencyCode = &code
		m.AmountSecondCurrency = decimal.NewNullDecimal(d.AmountSecondCurrency)
	}
	return m
}

// ToDomainMove converts a model Move and its lines to a domain Move
func ToDomainMove(m models.Move, lines []models.MoveLine) domain.Move {
	d := domain.Move{
		MoveID:       m.MoveID,
		CompanyID:    m.CompanyID,
		Date:         m.MoveDate,
		CurrencyCode: m.CurrencyCode,
		Description:  m.Description,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
	if m.InvoiceID != nil {
		d.InvoiceID = *m.InvoiceID
	}
	d.Lines = make([]domain.MoveLine, len(lines))
	for i, l := range lines {
		line := domain.MoveLine{
			MoveLineID:  l.MoveLineID,
			MoveID:      l.MoveID,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
		if l.SecondCurrencyCode != nil {
			line.SecondCurrencyCode = *l.SecondCurrencyCode
			line.AmountSecondCurrency = l.AmountSecondCurrency.Decimal
		}
		d.Lines[i] = line
	}
	return d
}
