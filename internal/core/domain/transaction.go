package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates the direction of a balance mutation.
// Note the banking convention used here: a CREDIT decreases the account
// balance (money leaves the account) and a DEBIT increases it.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Transaction represents a single, immutable balance mutation against one account.
// It is created only as a side effect of a successful account mutation and is
// never updated or deleted afterwards.
type Transaction struct {
	TransactionID         string          `json:"transactionID"`                   // Primary Key (UUID)
	AccountID             string          `json:"accountID"`                       // FK -> Account.accountID; stamped by the aggregate
	CounterpartyAccountID *string         `json:"counterpartyAccountID,omitempty"` // Other leg of a transfer, nil otherwise
	Amount                decimal.Decimal `json:"amount"`                          // Always positive
	TransactionType       TransactionType `json:"transactionType"`                 // DEBIT or CREDIT
	CurrencyCode          string          `json:"currencyCode"`                    // Must match the account currency
	Description           string          `json:"description"`
	CreatedAt             time.Time       `json:"createdAt"`
}
