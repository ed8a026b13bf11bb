package domain

// Company is the legal entity owning invoices. Its currency is the base
// bookkeeping currency used for every company-currency amount.
type Company struct {
	CompanyID    string `json:"companyID"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currencyCode"`
	AuditFields
}
