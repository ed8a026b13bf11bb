package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType tells whether an invoice is issued to a customer or received from a supplier.
type InvoiceType string

const (
	InvoiceTypeOut InvoiceType = "out" // customer invoice
	InvoiceTypeIn  InvoiceType = "in"  // supplier invoice
)

// InvoiceState is the workflow state of an invoice.
type InvoiceState string

const (
	InvoiceStateDraft     InvoiceState = "draft"
	InvoiceStateValidated InvoiceState = "validated"
	InvoiceStatePosted    InvoiceState = "posted"
	InvoiceStatePaid      InvoiceState = "paid"
	InvoiceStateCancelled InvoiceState = "cancelled"
)

var invoiceTransitions = map[InvoiceState][]InvoiceState{
	InvoiceStateDraft:     {InvoiceStateValidated, InvoiceStatePosted, InvoiceStateCancelled},
	InvoiceStateValidated: {InvoiceStatePosted, InvoiceStateDraft, InvoiceStateCancelled},
	InvoiceStatePosted:    {InvoiceStatePaid, InvoiceStateDraft},
	InvoiceStateCancelled: {InvoiceStateDraft},
}

// CanTransitionTo reports whether the workflow allows moving from s to target.
func (s InvoiceState) CanTransitionTo(target InvoiceState) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AmountKind names one of the three invoice totals.
type AmountKind string

const (
	AmountUntaxed AmountKind = "untaxed_amount"
	AmountTax     AmountKind = "tax_amount"
	AmountTotal   AmountKind = "total_amount"
)

// AmountKinds lists every kind in a stable order.
var AmountKinds = []AmountKind{AmountUntaxed, AmountTax, AmountTotal}

// IsValid reports whether k is a known amount kind.
func (k AmountKind) IsValid() bool {
	switch k {
	case AmountUntaxed, AmountTax, AmountTotal:
		return true
	}
	return false
}

// CompanyAmounts holds the company-currency value of each amount kind.
// A nil field is absent; a non-nil zero is a real value.
type CompanyAmounts struct {
	Untaxed *decimal.Decimal `json:"untaxed"`
	Tax     *decimal.Decimal `json:"tax"`
	Total   *decimal.Decimal `json:"total"`
}

// Get returns the value stored for kind, or nil when absent.
func (a CompanyAmounts) Get(kind AmountKind) *decimal.Decimal {
	switch kind {
	case AmountUntaxed:
		return a.Untaxed
	case AmountTax:
		return a.Tax
	case AmountTotal:
		return a.Total
	}
	return nil
}

// Set stores value for kind.
func (a *CompanyAmounts) Set(kind AmountKind, value decimal.Decimal) {
	switch kind {
	case AmountUntaxed:
		a.Untaxed = &value
	case AmountTax:
		a.Tax = &value
	case AmountTotal:
		a.Total = &value
	}
}

// IsEmpty reports whether no kind is present.
func (a CompanyAmounts) IsEmpty() bool {
	return a.Untaxed == nil && a.Tax == nil && a.Total == nil
}

// Equal compares two sets of amounts, treating absent and present values as different.
func (a CompanyAmounts) Equal(b CompanyAmounts) bool {
	for _, kind := range AmountKinds {
		x, y := a.Get(kind), b.Get(kind)
		if (x == nil) != (y == nil) {
			return false
		}
		if x != nil && !x.Equal(*y) {
			return false
		}
	}
	return true
}

// Invoice is a customer or supplier invoice. Amounts on the invoice, its lines and
// its taxes are expressed in CurrencyCode; the cache holds the same totals in the
// company currency once the invoice has been validated or posted.
type Invoice struct {
	InvoiceID          string         `json:"invoiceID"`
	CompanyID          string         `json:"companyID"`
	Number             string         `json:"number"`
	Type               InvoiceType    `json:"type"`
	State              InvoiceState   `json:"state"`
	CurrencyCode       string         `json:"currencyCode"`
	InvoiceDate        *time.Time     `json:"invoiceDate"`
	AccountingDate     *time.Time     `json:"accountingDate"`
	AccountID          string         `json:"accountID"` // receivable or payable account
	MoveID             *string        `json:"moveID"`
	Description        string         `json:"description"`
	Lines              []InvoiceLine  `json:"lines"`
	Taxes              []InvoiceTax   `json:"taxes"`
	CompanyAmountCache CompanyAmounts `json:"companyAmountCache"`
	AuditFields
}

// CurrencyDate is the date used to pick exchange rates: the accounting date when
// set, the invoice date otherwise. It is nil for invoices without either.
func (i Invoice) CurrencyDate() *time.Time {
	if i.AccountingDate != nil {
		return i.AccountingDate
	}
	return i.InvoiceDate
}

// RateDate returns CurrencyDate, falling back to today.
func (i Invoice) RateDate(today time.Time) time.Time {
	if d := i.CurrencyDate(); d != nil {
		return DateOnly(*d)
	}
	return DateOnly(today)
}

// UntaxedAmount is the sum of the line amounts.
func (i Invoice) UntaxedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range i.Lines {
		total = total.Add(line.Amount)
	}
	return total
}

// TaxAmount is the sum of the tax amounts.
func (i Invoice) TaxAmount() decimal.Decimal {
	total := decimal.Zero
	for _, tax := range i.Taxes {
		total = total.Add(tax.Amount)
	}
	return total
}

// TotalAmount is the untaxed amount plus taxes.
func (i Invoice) TotalAmount() decimal.Decimal {
	return i.UntaxedAmount().Add(i.TaxAmount())
}

// Amount returns the invoice-currency amount of the given kind.
func (i Invoice) Amount(kind AmountKind) decimal.Decimal {
	switch kind {
	case AmountUntaxed:
		return i.UntaxedAmount()
	case AmountTax:
		return i.TaxAmount()
	case AmountTotal:
		return i.TotalAmount()
	}
	return decimal.Zero
}

// HasMove reports whether the ledger move of the invoice exists.
func (i Invoice) HasMove() bool {
	return i.MoveID != nil && *i.MoveID != ""
}

// LineAccountIDs returns the distinct accounts used by the invoice lines.
func (i Invoice) LineAccountIDs() []string {
	seen := make(map[string]struct{}, len(i.Lines))
	ids := make([]string, 0, len(i.Lines))
	for _, line := range i.Lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	return ids
}

// ClearCompanyAmountCache drops every cached company amount of the invoice and its taxes.
func (i *Invoice) ClearCompanyAmountCache() {
	i.CompanyAmountCache = CompanyAmounts{}
	for idx := range i.Taxes {
		i.Taxes[idx].ClearCompanyCache()
	}
}

// Duplicate returns a new draft copy of the invoice. The copy has no ledger move
// and no cached company amounts; newID generates identifiers for the invoice,
// its lines and its taxes.
func (i Invoice) Duplicate(newID func() string, userID string, now time.Time) Invoice {
	dup := i
	dup.InvoiceID = newID()
	dup.Number = ""
	dup.State = InvoiceStateDraft
	dup.MoveID = nil
	dup.AuditFields = AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}

	dup.Lines = make([]InvoiceLine, len(i.Lines))
	for idx, line := range i.Lines {
		line.InvoiceLineID = newID()
		line.InvoiceID = dup.InvoiceID
		dup.Lines[idx] = line
	}
	dup.Taxes = make([]InvoiceTax, len(i.Taxes))
	for idx, tax := range i.Taxes {
		tax.InvoiceTaxID = newID()
		tax.InvoiceID = dup.InvoiceID
		dup.Taxes[idx] = tax
	}
	dup.ClearCompanyAmountCache()
	return dup
}

// InvoiceValuation is the company-currency view of an invoice.
type InvoiceValuation struct {
	CompanyCurrencyCode   string         `json:"companyCurrencyCode"`
	DifferentCurrencies   bool           `json:"differentCurrencies"`
	CompanyCurrencyDigits int            `json:"companyCurrencyDigits"`
	Amounts               CompanyAmounts `json:"amounts"`
}
