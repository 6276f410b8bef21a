package repositories

import (
	"context"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InboxRepository is the durable dedup ledger gating idempotent event
// consumption, plus the audit and inbound dead-letter tables.
type InboxRepository interface {
	TxManager

	// IsProcessed reports whether the (message id, handler) pair was already
	// recorded. This is the exactly-once-effect gate at the consumer boundary.
	IsProcessed(ctx context.Context, tx pgx.Tx, messageID uuid.UUID, handlerName string) (bool, error)

	// MarkProcessedInTx records the pair inside the same transaction as the
	// handler's effect, so redelivery after a rollback replays safely.
	MarkProcessedInTx(ctx context.Context, tx pgx.Tx, messageID uuid.UUID, handlerName string) error

	// SaveAuditInTx stores a durable copy of an accepted event.
	SaveAuditInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error

	// SaveDeadLetter quarantines a malformed or failed inbound message. It
	// runs outside any consumer transaction: the quarantine must survive the
	// rollback of the attempt that produced it.
	SaveDeadLetter(ctx context.Context, record domain.DeadLetterRecord) error
}
