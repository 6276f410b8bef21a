package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxManager exposes database transaction control to the services that
// orchestrate multi-step protocols. Implementations wrap a pgx pool.
type TxManager interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)
	// Commit commits the transaction.
	Commit(ctx context.Context, tx pgx.Tx) error
	// Rollback rolls the transaction back. Rolling back an already finished
	// transaction is a no-op.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
