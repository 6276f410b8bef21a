package dto

import (
	"time"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the payload for opening a new account.
type CreateAccountRequest struct {
	OwnerID      string           `json:"ownerID" binding:"required,uuid"`
	AccountKind  string           `json:"accountKind" binding:"required,oneof=CHECKING DEPOSIT CREDIT"`
	CurrencyCode string           `json:"currencyCode" binding:"required,len=3,uppercase"`
	InterestRate *decimal.Decimal `json:"interestRate,omitempty"`
}

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	AccountID    string           `json:"accountID"`
	OwnerID      string           `json:"ownerID"`
	AccountKind  string           `json:"accountKind"`
	CurrencyCode string           `json:"currencyCode"`
	Balance      decimal.Decimal  `json:"balance"`
	InterestRate *decimal.Decimal `json:"interestRate,omitempty"`
	IsFrozen     bool             `json:"isFrozen"`
	OpenedAt     time.Time        `json:"openedAt"`
	ClosedAt     *time.Time       `json:"closedAt,omitempty"`
	Version      int64            `json:"version"`
}

// ToAccountResponse converts a domain account to its API representation.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:    a.AccountID,
		OwnerID:      a.OwnerID,
		AccountKind:  string(a.AccountKind),
		CurrencyCode: a.CurrencyCode,
		Balance:      a.Balance,
		InterestRate: a.InterestRate,
		IsFrozen:     a.IsFrozen,
		OpenedAt:     a.OpenedAt,
		ClosedAt:     a.ClosedAt,
		Version:      a.Version,
	}
}

// UpdateInterestRateRequest is the payload for changing an account's interest rate.
type UpdateInterestRateRequest struct {
	InterestRate decimal.Decimal `json:"interestRate" binding:"required"`
}
