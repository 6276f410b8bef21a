package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType mirrors the domain transaction type at the storage layer.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Transaction is the database representation of a transaction row.
type Transaction struct {
	TransactionID         string          `db:"transaction_id"`
	AccountID             string          `db:"account_id"`
	CounterpartyAccountID *string         `db:"counterparty_account_id"` // Nullable
	Amount                decimal.Decimal `db:"amount"`
	TransactionType       TransactionType `db:"transaction_type"`
	CurrencyCode          string          `db:"currency_code"`
	Description           string          `db:"description"`
	CreatedAt             time.Time       `db:"created_at"`
}
