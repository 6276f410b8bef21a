package services

import (
	"context"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	"github.com/fintrellis/bank-accounts/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountService defines the business operations exposed to the HTTP layer.
type AccountService interface {
	OpenAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	ListTransactions(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error)

	// RegisterTransaction runs the single-account mutation protocol: row lock,
	// aggregate apply, version-guarded persist, outbox append, one commit.
	RegisterTransaction(ctx context.Context, accountID string, kind domain.TransactionType, req dto.TransactionRequest) (*domain.Transaction, error)

	// Transfer moves funds between two accounts as one atomic operation.
	Transfer(ctx context.Context, req dto.TransferRequest) error

	CloseAccount(ctx context.Context, accountID string) error
	UpdateInterestRate(ctx context.Context, accountID string, rate decimal.Decimal) error

	// AccrueInterest applies one interest accrual to a deposit account as a
	// DEBIT transaction through the regular mutation protocol.
	AccrueInterest(ctx context.Context, accountID string) (*domain.Transaction, error)
}
