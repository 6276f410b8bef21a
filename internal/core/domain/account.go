package domain

import (
	"strings"
	"time"

	"github.com/fintrellis/bank-accounts/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccountKind defines the product type of an account.
type AccountKind string

const (
	Checking   AccountKind = "CHECKING"
	Deposit    AccountKind = "DEPOSIT"
	CreditLine AccountKind = "CREDIT"
)

// IsValid reports whether the kind is one of the known account kinds.
func (k AccountKind) IsValid() bool {
	switch k {
	case Checking, Deposit, CreditLine:
		return true
	}
	return false
}

// Account is the aggregate enforcing balance invariants for a single account.
// Currency is immutable after creation; the balance equals the fold of all
// transactions' signed amounts; Version increments on every persisted mutation
// and backs optimistic-concurrency detection independent of row locking.
type Account struct {
	AccountID    string           `json:"accountID"`    // Primary Key (UUID)
	OwnerID      string           `json:"ownerID"`      // Owning client reference
	AccountKind  AccountKind      `json:"accountKind"`  // CHECKING, DEPOSIT or CREDIT
	CurrencyCode string           `json:"currencyCode"` // ISO-4217, immutable
	Balance      decimal.Decimal  `json:"balance"`
	InterestRate *decimal.Decimal `json:"interestRate,omitempty"` // Percent, DEPOSIT/CREDIT only
	IsFrozen     bool             `json:"isFrozen"`               // Set by the antifraud consumer
	OpenedAt     time.Time        `json:"openedAt"`
	ClosedAt     *time.Time       `json:"closedAt,omitempty"`
	Version      int64            `json:"version"`
	Transactions []Transaction    `json:"transactions,omitempty"`
}

// IsClosed reports whether the account has been closed.
func (a *Account) IsClosed() bool {
	return a.ClosedAt != nil
}

// ApplyTransaction validates and applies a single balance mutation in memory.
// Persistence is the caller's responsibility. The account is left unmodified
// if any precondition fails: all validation happens before any state change.
func (a *Account) ApplyTransaction(txn *Transaction) error {
	if !strings.EqualFold(txn.CurrencyCode, a.CurrencyCode) {
		return apperrors.ErrCurrencyMismatch
	}

	var newBalance decimal.Decimal
	switch txn.TransactionType {
	case Credit:
		if a.Balance.LessThan(txn.Amount) {
			return apperrors.ErrInsufficientFunds
		}
		newBalance = a.Balance.Sub(txn.Amount)
	case Debit:
		newBalance = a.Balance.Add(txn.Amount)
	default:
		return apperrors.ErrInvalidTransactionKind
	}

	txn.AccountID = a.AccountID
	a.Balance = newBalance
	a.Transactions = append(a.Transactions, *txn)

	return nil
}
