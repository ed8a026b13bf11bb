package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	portssvc "github.com/SscSPs/invoice_company_currency/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// moveBuilder produces the ledger move of an invoice in the company currency.
type moveBuilder struct {
	converter portssvc.CurrencyConverterSvc
	newID     func() string
}

// moveSource is everything needed to post one invoice.
type moveSource struct {
	invoice         domain.Invoice
	company         domain.Company
	invoiceCurrency domain.Currency
	companyCurrency domain.Currency
	date            time.Time
}

// Build converts every line and tax at src.date and balances the move on the
// invoice account. Customer invoices credit the line and tax accounts and debit
// the receivable; supplier invoices do the opposite. Lines worth zero are skipped.
func (b *moveBuilder) Build(ctx context.Context, src moveSource, userID string, now time.Time) (domain.Move, error) {
	inv := src.invoice
	different := src.invoiceCurrency.CurrencyCode != src.companyCurrency.CurrencyCode

	move := domain.Move{
		MoveID:       b.newID(),
		CompanyID:    src.company.CompanyID,
		InvoiceID:    inv.InvoiceID,
		Date:         domain.DateOnly(src.date),
		CurrencyCode: src.companyCurrency.CurrencyCode,
		Description:  moveDescription(inv),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// positive is debit
	sign := decimal.NewFromInt(1)
	if inv.Type == domain.InvoiceTypeOut {
		sign = sign.Neg()
	}

	balance, balanceSecond := decimal.Zero, decimal.Zero
	post := func(accountID, description string, amount decimal.Decimal) error {
		companyAmount := amount
		if different {
			var err error
			companyAmount, err = b.converter.Compute(ctx, src.invoiceCurrency, amount, src.companyCurrency, true, src.date)
			if err != nil {
				return fmt.Errorf("failed to convert %s for account %s: %w", amount, accountID, err)
			}
		}
		signed := companyAmount.Mul(sign)
		signedSecond := amount.Mul(sign)
		balance = balance.Add(signed)
		balanceSecond = balanceSecond.Add(signedSecond)
		b.appendLine(&move, accountID, description, signed, signedSecond, different, src.invoiceCurrency.CurrencyCode)
		return nil
	}

	for _, line := range inv.Lines {
		if err := post(line.AccountID, line.Description, line.Amount); err != nil {
			return domain.Move{}, err
		}
	}
	for _, tax := range inv.Taxes {
		if err := post(tax.AccountID, tax.Description, tax.Amount); err != nil {
			return domain.Move{}, err
		}
	}
	b.appendLine(&move, inv.AccountID, move.Description, balance.Neg(), balanceSecond.Neg(), different, src.invoiceCurrency.CurrencyCode)

	return move, nil
}

func (b *moveBuilder) appendLine(move *domain.Move, accountID, description string, signed, signedSecond decimal.Decimal, different bool, secondCode string) {
	if signed.IsZero() {
		return
	}
	line := domain.MoveLine{
		MoveLineID:  b.newID(),
		MoveID:      move.MoveID,
		AccountID:   accountID,
		Debit:       decimal.Zero,
		Credit:      decimal.Zero,
		Description: description,
	}
	if signed.IsPositive() {
		line.Debit = signed
	} else {
		line.Credit = signed.Neg()
	}
	if different {
		line.AmountSecondCurrency = signedSecond
		line.SecondCurrencyCode = secondCode
	}
	move.Lines = append(move.Lines, line)
}

func moveDescription(inv domain.Invoice) string {
	if inv.Number != "" {
		return fmt.Sprintf("Invoice %s", inv.Number)
	}
	if inv.Description != "" {
		return inv.Description
	}
	return fmt.Sprintf("Invoice %s", inv.InvoiceID)
}
