package models

// Company owns invoices and keeps its books in CurrencyCode.
type Company struct {
	CompanyID    string `json:"companyID"` // Primary Key (e.g., UUID)
	Name         string `json:"name"`
	CurrencyCode string `json:"currencyCode"` // FK -> Currency.currencyCode
	AuditFields
}
