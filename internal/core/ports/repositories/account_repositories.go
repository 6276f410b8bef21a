package repositories

import (
	"context"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts and their
// transactions. The InTx variants must be called inside a transaction started
// through the embedded TxManager; balance updates are version-guarded and
// report concurrent modification as apperrors.ErrConcurrencyConflict.
type AccountRepository interface {
	TxManager

	// SaveAccountInTx inserts a new account row.
	SaveAccountInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error

	// FindAccountByID retrieves an account without locking it.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountForUpdate lock-reads a single account row (FOR UPDATE),
	// blocking concurrent mutators of the same account until commit/rollback.
	FindAccountForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)

	// FindAccountsForUpdate lock-reads multiple account rows. Locks are
	// acquired in ascending account id order to avoid lock-ordering deadlocks.
	// Missing accounts surface as apperrors.ErrNotFound.
	FindAccountsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateBalanceInTx persists the account's balance with a conditional
	// UPDATE guarded by the version counter. Zero affected rows means a
	// concurrent modification and returns apperrors.ErrConcurrencyConflict.
	UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error

	// UpdateDetailsInTx persists interest rate and closed-at changes,
	// version-guarded like UpdateBalanceInTx.
	UpdateDetailsInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error

	// SaveTransactionInTx appends an immutable transaction record.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// UpdateIsFrozenByOwnerInTx flips the frozen flag on every account owned
	// by the given client.
	UpdateIsFrozenByOwnerInTx(ctx context.Context, tx pgx.Tx, ownerID string, frozen bool) error

	// ListTransactionsByAccountID returns the account's transaction records,
	// newest first.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit, offset int) ([]domain.Transaction, error)
}
