package mapping_test

import (
	"testing"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/SscSPs/invoice_company_currency/internal/models"
	"github.com/SscSPs/invoice_company_currency/internal/utils/mapping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullDecimalKeepsZeroPresent(t *testing.T) {
	zero := decimal.Zero
	n := mapping.ToNullDecimal(&zero)
	assert.True(t, n.Valid)

	back := mapping.FromNullDecimal(n)
	require.NotNil(t, back)
	assert.True(t, back.IsZero())

	assert.False(t, mapping.ToNullDecimal(nil).Valid)
	assert.Nil(t, mapping.FromNullDecimal(decimal.NullDecimal{}))
}

func TestInvoiceCacheRoundTrip(t *testing.T) {
	untaxed := decimal.RequireFromString("90.00")
	zero := decimal.Zero
	inv := domain.Invoice{
		InvoiceID:          "inv-1",
		Type:               domain.InvoiceTypeIn,
		State:              domain.InvoiceStateValidated,
		CompanyAmountCache: domain.CompanyAmounts{Untaxed: &untaxed, Tax: &zero},
	}

	m := mapping.ToModelInvoice(inv)
	assert.True(t, m.CompanyUntaxedAmount.Valid)
	assert.True(t, m.CompanyTaxAmount.Valid)
	assert.False(t, m.CompanyTotalAmount.Valid)

	back := mapping.ToDomainInvoice(m, nil, nil)
	assert.True(t, back.CompanyAmountCache.Equal(inv.CompanyAmountCache))
	assert.Equal(t, domain.InvoiceTypeIn, back.Type)
	assert.Empty(t, back.Lines)
}

func TestMoveLineSecondCurrency(t *testing.T) {
	line := domain.MoveLine{MoveLineID: "l1", Debit: decimal.NewFromInt(90)}
	m := mapping.ToModelMoveLine(line)
	assert.Nil(t, m.SecondCurrencyCode)
	assert.False(t, m.AmountSecondCurrency.Valid)

	line.SecondCurrencyCode = "USD"
	line.AmountSecondCurrency = decimal.NewFromInt(100)
	m = mapping.ToModelMoveLine(line)
	require.NotNil(t, m.SecondCurrencyCode)
	assert.Equal(t, "USD", *m.SecondCurrencyCode)

	move := mapping.ToDomainMove(models.Move{MoveID: "m1"}, []models.MoveLine{m})
	require.Len(t, move.Lines, 1)
	assert.True(t, move.Lines[0].AmountSecondCurrency.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "", move.InvoiceID)
}

func TestCurrencyRounding(t *testing.T) {
	c := domain.Currency{CurrencyCode: "CHF", Precision: 2, Rounding: decimal.RequireFromString("0.05")}
	m := mapping.ToModelCurrency(c)
	assert.True(t, m.Rounding.Valid)
	assert.True(t, mapping.ToDomainCurrency(m).Rounding.Equal(c.Rounding))

	m = mapping.ToModelCurrency(domain.Currency{CurrencyCode: "EUR", Precision: 2})
	assert.False(t, m.Rounding.Valid)
}
