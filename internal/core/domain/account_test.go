package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrellis/bank-accounts/internal/apperrors"
	"github.com/fintrellis/bank-accounts/internal/core/domain"
)

func TestAccount_ApplyTransaction(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		txn         domain.Transaction
		wantErr     error
		wantBalance decimal.Decimal
	}{
		{
			name:    "debit increases balance",
			balance: decimal.NewFromInt(100),
			txn: domain.Transaction{
				TransactionID:   "txn-1",
				Amount:          decimal.NewFromInt(40),
				TransactionType: domain.Debit,
				CurrencyCode:    "USD",
			},
			wantBalance: decimal.NewFromInt(140),
		},
		{
			name:    "credit decreases balance",
			balance: decimal.NewFromInt(100),
			txn: domain.Transaction{
				TransactionID:   "txn-2",
				Amount:          decimal.NewFromInt(40),
				TransactionType: domain.Credit,
				CurrencyCode:    "USD",
			},
			wantBalance: decimal.NewFromInt(60),
		},
		{
			name:    "credit down to exactly zero",
			balance: decimal.NewFromInt(40),
			txn: domain.Transaction{
				TransactionID:   "txn-3",
				Amount:          decimal.NewFromInt(40),
				TransactionType: domain.Credit,
				CurrencyCode:    "USD",
			},
			wantBalance: decimal.Zero,
		},
		{
			name:    "credit exceeding balance is rejected",
			balance: decimal.NewFromInt(30),
			txn: domain.Transaction{
				TransactionID:   "txn-4",
				Amount:          decimal.NewFromInt(40),
				TransactionType: domain.Credit,
				CurrencyCode:    "USD",
			},
			wantErr: apperrors.ErrInsufficientFunds,
		},
		{
			name:    "currency mismatch is rejected",
			balance: decimal.NewFromInt(100),
			txn: domain.Transaction{
				TransactionID:   "txn-5",
				Amount:          decimal.NewFromInt(10),
				TransactionType: domain.Debit,
				CurrencyCode:    "EUR",
			},
			wantErr: apperrors.ErrCurrencyMismatch,
		},
		{
			name:    "currency comparison is case-insensitive",
			balance: decimal.NewFromInt(100),
			txn: domain.Transaction{
				TransactionID:   "txn-6",
				Amount:          decimal.NewFromInt(10),
				TransactionType: domain.Debit,
				CurrencyCode:    "usd",
			},
			wantBalance: decimal.NewFromInt(110),
		},
		{
			name:    "unknown transaction kind is rejected",
			balance: decimal.NewFromInt(100),
			txn: domain.Transaction{
				TransactionID:   "txn-7",
				Amount:          decimal.NewFromInt(10),
				TransactionType: domain.TransactionType("TRANSFER"),
				CurrencyCode:    "USD",
			},
			wantErr: apperrors.ErrInvalidTransactionKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := domain.Account{
				AccountID:    "acc-1",
				CurrencyCode: "USD",
				Balance:      tt.balance,
			}

			err := account.ApplyTransaction(&tt.txn)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				// No partial effect: the account is untouched on rejection.
				assert.True(t, account.Balance.Equal(tt.balance), "balance changed on rejected transaction")
				assert.Empty(t, account.Transactions)
				return
			}

			require.NoError(t, err)
			assert.True(t, account.Balance.Equal(tt.wantBalance), "balance = %s, want %s", account.Balance, tt.wantBalance)
			require.Len(t, account.Transactions, 1)
			assert.Equal(t, "acc-1", account.Transactions[0].AccountID)
		})
	}
}

func TestAccount_ApplyTransaction_RejectedForeignCurrencyLeavesNoTrace(t *testing.T) {
	account := domain.Account{
		AccountID:    "acc-usd",
		CurrencyCode: "USD",
		Balance:      decimal.NewFromInt(500),
	}

	txn := domain.Transaction{
		TransactionID:   "txn-eur",
		Amount:          decimal.NewFromInt(50),
		TransactionType: domain.Credit,
		CurrencyCode:    "EUR",
	}

	err := account.ApplyTransaction(&txn)

	require.ErrorIs(t, err, apperrors.ErrCurrencyMismatch)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(500)))
	assert.Empty(t, account.Transactions)
	assert.Empty(t, txn.AccountID, "rejected transaction must not be bound to the account")
}

func TestAccount_IsClosed(t *testing.T) {
	var account domain.Account
	assert.False(t, account.IsClosed())

	closedAt := time.Now().UTC()
	account.ClosedAt = &closedAt
	assert.True(t, account.IsClosed())
}

func TestAccountKind_IsValid(t *testing.T) {
	assert.True(t, domain.Checking.IsValid())
	assert.True(t, domain.Deposit.IsValid())
	assert.True(t, domain.CreditLine.IsValid())
	assert.False(t, domain.AccountKind("SAVINGS").IsValid())
	assert.False(t, domain.AccountKind("").IsValid())
}
