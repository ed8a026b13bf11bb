package domain_test

import (
	"testing"

	"github.com/SscSPs/invoice_company_currency/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestMoveLineSums_CompanyAmount(t *testing.T) {
	// Customer invoice: receivable debited 113.95, revenue credited 94.95, tax credited 19.00.
	out := domain.MoveLineSums{
		InvoiceAccount: dec("113.95"),
		LineAccounts:   dec("-94.95"),
		OtherAccounts:  dec("-19.00"),
	}
	// Supplier invoice: payable credited, expense and tax debited.
	in := domain.MoveLineSums{
		InvoiceAccount: dec("-145.00"),
		LineAccounts:   dec("100.00"),
		OtherAccounts:  dec("45.00"),
	}

	tests := []struct {
		name        string
		sums        domain.MoveLineSums
		invoiceType domain.InvoiceType
		kind        domain.AmountKind
		want        string
	}{
		{"out total", out, domain.InvoiceTypeOut, domain.AmountTotal, "113.95"},
		{"out untaxed", out, domain.InvoiceTypeOut, domain.AmountUntaxed, "94.95"},
		{"out tax", out, domain.InvoiceTypeOut, domain.AmountTax, "19.00"},
		{"in total", in, domain.InvoiceTypeIn, domain.AmountTotal, "145.00"},
		{"in untaxed", in, domain.InvoiceTypeIn, domain.AmountUntaxed, "100.00"},
		{"in tax", in, domain.InvoiceTypeIn, domain.AmountTax, "45.00"},
		{"no rows", domain.MoveLineSums{}, domain.InvoiceTypeIn, domain.AmountTax, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sums.CompanyAmount(tt.kind, tt.invoiceType)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestMoveLineSums_CompanyAmounts(t *testing.T) {
	sums := domain.MoveLineSums{InvoiceAccount: dec("110"), LineAccounts: dec("-100"), OtherAccounts: dec("-10")}

	amounts := sums.CompanyAmounts(domain.InvoiceTypeOut)

	assert.True(t, amounts.Total.Equal(amounts.Untaxed.Add(*amounts.Tax)))
}

func TestMove_IsBalanced(t *testing.T) {
	move := domain.Move{Lines: []domain.MoveLine{
		{AccountID: "receivable", Debit: dec("110.00"), Credit: dec("0")},
		{AccountID: "revenue", Debit: dec("0"), Credit: dec("100.00")},
		{AccountID: "vat", Debit: dec("0"), Credit: dec("10.00")},
	}}
	assert.True(t, move.IsBalanced())

	move.Lines[2].Credit = dec("9.99")
	assert.False(t, move.IsBalanced())
}
