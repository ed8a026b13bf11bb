package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRateConverter converts with a single rate and rounds to the target currency.
type fixedRateConverter struct {
	rate decimal.Decimal
	err  error
}

func (c fixedRateConverter) Compute(_ context.Context, from domain.Currency, amount decimal.Decimal, to domain.Currency, round bool, _ time.Time) (decimal.Decimal, error) {
	if c.err != nil {
		return decimal.Zero, c.err
	}
	converted := amount
	if from.CurrencyCode != to.CurrencyCode {
		converted = amount.Mul(c.rate)
	}
	if round {
		converted = to.Round(converted)
	}
	return converted, nil
}

func (c fixedRateConverter) ConvertAmount(ctx context.Context, amount decimal.Decimal, fromCode, toCode string, round bool, asOf time.Time) (decimal.Decimal, error) {
	return c.Compute(ctx, domain.Currency{CurrencyCode: fromCode, Precision: 2}, amount, domain.Currency{CurrencyCode: toCode, Precision: 2}, round, asOf)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func builderSource(invType domain.InvoiceType, invoiceCurrency, companyCurrency string) moveSource {
	return moveSource{
		invoice: domain.Invoice{
			InvoiceID:    "inv-1",
			CompanyID:    "company-1",
			Number:       "INV/2024/001",
			Type:         invType,
			CurrencyCode: invoiceCurrency,
			AccountID:    "partner",
			Lines:        []domain.InvoiceLine{{InvoiceLineID: "l1", AccountID: "revenue", Amount: d("100.00"), Description: "consulting"}},
			Taxes:        []domain.InvoiceTax{{InvoiceTaxID: "t1", AccountID: "vat", Base: d("100.00"), Amount: d("20.00"), Description: "VAT 20%"}},
		},
		company:         domain.Company{CompanyID: "company-1", CurrencyCode: companyCurrency},
		invoiceCurrency: domain.Currency{CurrencyCode: invoiceCurrency, Precision: 2},
		companyCurrency: domain.Currency{CurrencyCode: companyCurrency, Precision: 2},
		date:            time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func lineFor(t *testing.T, move domain.Move, accountID string) domain.MoveLine {
	t.Helper()
	for _, line := range move.Lines {
		if line.AccountID == accountID {
			return line
		}
	}
	require.Failf(t, "missing move line", "no line on account %s", accountID)
	return domain.MoveLine{}
}

func TestMoveBuilder_CustomerInvoiceInForeignCurrency(t *testing.T) {
	builder := &moveBuilder{converter: fixedRateConverter{rate: d("0.9")}, newID: sequentialIDs()}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	move, err := builder.Build(context.Background(), builderSource(domain.InvoiceTypeOut, "USD", "EUR"), "user-1", now)

	require.NoError(t, err)
	assert.True(t, move.IsBalanced())
	assert.Equal(t, "EUR", move.CurrencyCode)
	assert.Equal(t, "inv-1", move.InvoiceID)
	assert.Equal(t, "Invoice INV/2024/001", move.Description)
	assert.Equal(t, "user-1", move.CreatedBy)
	require.Len(t, move.Lines, 3)

	revenue := lineFor(t, move, "revenue")
	assert.True(t, revenue.Credit.Equal(d("90.00")))
	assert.True(t, revenue.Debit.IsZero())
	assert.True(t, revenue.AmountSecondCurrency.Equal(d("-100.00")))
	assert.Equal(t, "USD", revenue.SecondCurrencyCode)

	vat := lineFor(t, move, "vat")
	assert.True(t, vat.Credit.Equal(d("18.00")))

	partner := lineFor(t, move, "partner")
	assert.True(t, partner.Debit.Equal(d("108.00")))
	assert.True(t, partner.AmountSecondCurrency.Equal(d("120.00")))
	for _, line := range move.Lines {
		assert.Equal(t, move.MoveID, line.MoveID)
	}
}

func TestMoveBuilder_SupplierInvoiceInCompanyCurrency(t *testing.T) {
	builder := &moveBuilder{converter: fixedRateConverter{err: errors.New("must not convert")}, newID: sequentialIDs()}

	move, err := builder.Build(context.Background(), builderSource(domain.InvoiceTypeIn, "EUR", "EUR"), "user-1", time.Now())

	require.NoError(t, err)
	assert.True(t, move.IsBalanced())
	assert.True(t, lineFor(t, move, "revenue").Debit.Equal(d("100.00")))
	assert.True(t, lineFor(t, move, "vat").Debit.Equal(d("20.00")))
	partner := lineFor(t, move, "partner")
	assert.True(t, partner.Credit.Equal(d("120.00")))
	assert.Empty(t, partner.SecondCurrencyCode)
	assert.True(t, partner.AmountSecondCurrency.IsZero())
}

func TestMoveBuilder_SkipsZeroLines(t *testing.T) {
	builder := &moveBuilder{converter: fixedRateConverter{rate: d("0.9")}, newID: sequentialIDs()}
	src := builderSource(domain.InvoiceTypeOut, "USD", "EUR")
	src.invoice.Taxes[0].Amount = d("0.001") // converts to zero in EUR

	move, err := builder.Build(context.Background(), src, "user-1", time.Now())

	require.NoError(t, err)
	require.Len(t, move.Lines, 2)
	assert.True(t, move.IsBalanced())
	assert.True(t, lineFor(t, move, "partner").Debit.Equal(d("90.00")))
}

func TestMoveBuilder_ConversionError(t *testing.T) {
	convErr := errors.New("no rate")
	builder := &moveBuilder{converter: fixedRateConverter{err: convErr}, newID: sequentialIDs()}

	_, err := builder.Build(context.Background(), builderSource(domain.InvoiceTypeOut, "USD", "EUR"), "user-1", time.Now())

	assert.ErrorIs(t, err, convErr)
}

func TestMoveDescription(t *testing.T) {
	assert.Equal(t, "Invoice A-1", moveDescription(domain.Invoice{InvoiceID: "x", Number: "A-1", Description: "desc"}))
	assert.Equal(t, "desc", moveDescription(domain.Invoice{InvoiceID: "x", Description: "desc"}))
	assert.Equal(t, "Invoice x", moveDescription(domain.Invoice{InvoiceID: "x"}))
}
