package repositories

import (
	"context"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OutboxRepository is the durable queue of pending domain events. Appends
// happen in the same transaction as the business mutation that produced the
// event; the dispatcher drains pending messages outside any business transaction.
type OutboxRepository interface {
	// AppendInTx writes the message in the caller's transaction so that the
	// event commits or rolls back atomically with the business state change.
	AppendInTx(ctx context.Context, tx pgx.Tx, msg domain.OutboxMessage) error

	// FetchPending returns up to limit unprocessed, non-dead-lettered
	// messages, oldest occurred-at first.
	FetchPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error)

	// MarkProcessed stamps the message's processed-at timestamp. Terminal.
	MarkProcessed(ctx context.Context, messageID uuid.UUID) error

	// MarkDeadLetter flags the message as dead-lettered, permanently excluding
	// it from FetchPending. Terminal, no automatic resurrection.
	MarkDeadLetter(ctx context.Context, messageID uuid.UUID) error

	// PendingCount reports how many messages are awaiting dispatch.
	PendingCount(ctx context.Context) (int64, error)
}
