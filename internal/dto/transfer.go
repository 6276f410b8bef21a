package dto

import "github.com/shopspring/decimal"

// TransferRequest is the payload for moving funds between two accounts.
type TransferRequest struct {
	SourceAccountID      string          `json:"sourceAccountID" binding:"required,uuid"`
	DestinationAccountID string          `json:"destinationAccountID" binding:"required,uuid"`
	Amount               decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode         string          `json:"currencyCode" binding:"required,len=3"`
	Description          string          `json:"description"`
}
