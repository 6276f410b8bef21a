package domain

// Currency is reference data describing a supported ISO-4217 currency.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key, fixed length 3
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
}
