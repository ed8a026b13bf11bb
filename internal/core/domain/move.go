package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Move is the ledger move generated when an invoice is posted. Debits and credits
// of its lines are in the company currency.
type Move struct {
	MoveID       string     `json:"moveID"`
	CompanyID    string     `json:"companyID"`
	InvoiceID    string     `json:"invoiceID"`
	Date         time.Time  `json:"date"`
	CurrencyCode string     `json:"currencyCode"` // company currency
	Description  string     `json:"description"`
	Lines        []MoveLine `json:"lines"`
	AuditFields
}

// MoveLine is one debit or credit posting of a move.
type MoveLine struct {
	MoveLineID           string          `json:"moveLineID"`
	MoveID               string          `json:"moveID"`
	AccountID            string          `json:"accountID"`
	Debit                decimal.Decimal `json:"debit"`
	Credit               decimal.Decimal `json:"credit"`
	AmountSecondCurrency decimal.Decimal `json:"amountSecondCurrency"` // signed, invoice currency
	SecondCurrencyCode   string          `json:"secondCurrencyCode"`
	Description          string          `json:"description"`
}

// Totals returns the sum of debits and credits of the move.
func (m Move) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, line := range m.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// IsBalanced reports whether debits equal credits.
func (m Move) IsBalanced() bool {
	debit, credit := m.Totals()
	return debit.Equal(credit)
}

// MoveLineSums holds debit-minus-credit nets of an invoice move, split by the
// role of the account the lines are booked on.
type MoveLineSums struct {
	InvoiceAccount decimal.Decimal // lines on the invoice receivable/payable account
	LineAccounts   decimal.Decimal // lines on accounts used by invoice lines
	OtherAccounts  decimal.Decimal // every other line (taxes)
}

// CompanyAmount derives the company-currency amount of kind from the ledger.
// Customer invoices carry the total as a debit and revenue/taxes as credits;
// supplier invoices the reverse.
func (s MoveLineSums) CompanyAmount(kind AmountKind, invoiceType InvoiceType) decimal.Decimal {
	var net decimal.Decimal
	switch kind {
	case AmountTotal:
		net = s.InvoiceAccount
		if invoiceType == InvoiceTypeIn {
			net = net.Neg()
		}
		return net
	case AmountUntaxed:
		net = s.LineAccounts
	case AmountTax:
		net = s.OtherAccounts
	default:
		return decimal.Zero
	}
	if invoiceType == InvoiceTypeOut {
		net = net.Neg()
	}
	return net
}

// CompanyAmounts derives every kind from the ledger.
func (s MoveLineSums) CompanyAmounts(invoiceType InvoiceType) CompanyAmounts {
	var amounts CompanyAmounts
	for _, kind := range AmountKinds {
		amounts.Set(kind, s.CompanyAmount(kind, invoiceType))
	}
	return amounts
}
