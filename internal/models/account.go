package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind mirrors the domain account kind at the storage layer.
type AccountKind string

const (
	Checking   AccountKind = "CHECKING"
	Deposit    AccountKind = "DEPOSIT"
	CreditLine AccountKind = "CREDIT"
)

// Account is the database representation of an account row.
type Account struct {
	AccountID    string           `db:"account_id"`
	OwnerID      string           `db:"owner_id"`
	AccountKind  AccountKind      `db:"account_kind"`
	CurrencyCode string           `db:"currency_code"`
	Balance      decimal.Decimal  `db:"balance"`
	InterestRate *decimal.Decimal `db:"interest_rate"` // Nullable
	IsFrozen     bool             `db:"is_frozen"`
	OpenedAt     time.Time        `db:"opened_at"`
	ClosedAt     *time.Time       `db:"closed_at"` // Nullable
	Version      int64            `db:"version"`
}
