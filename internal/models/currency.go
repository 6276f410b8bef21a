package models

// Currency is the database representation of a supported currency.
type Currency struct {
	CurrencyCode string `db:"currency_code"`
	Name         string `db:"name"`
	Symbol       string `db:"symbol"`
}
