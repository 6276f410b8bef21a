package dto

import (
	"time"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionRequest is the payload for a single credit or debit; the
// direction comes from the route, not the body.
type TransactionRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Description  string          `json:"description"`
}

// TransactionResponse is the API representation of a transaction record.
type TransactionResponse struct {
	TransactionID         string          `json:"transactionID"`
	AccountID             string          `json:"accountID"`
	CounterpartyAccountID *string         `json:"counterpartyAccountID,omitempty"`
	Amount                decimal.Decimal `json:"amount"`
	TransactionType       string          `json:"transactionType"`
	CurrencyCode          string          `json:"currencyCode"`
	Description           string          `json:"description"`
	CreatedAt             time.Time       `json:"createdAt"`
}

// ToTransactionResponse converts a domain transaction to its API representation.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:         t.TransactionID,
		AccountID:             t.AccountID,
		CounterpartyAccountID: t.CounterpartyAccountID,
		Amount:                t.Amount,
		TransactionType:       string(t.TransactionType),
		CurrencyCode:          t.CurrencyCode,
		Description:           t.Description,
		CreatedAt:             t.CreatedAt,
	}
}

// ToTransactionResponseSlice converts a slice of domain transactions.
func ToTransactionResponseSlice(ts []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(ts))
	for i := range ts {
		out[i] = ToTransactionResponse(&ts[i])
	}
	return out
}
