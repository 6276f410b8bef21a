package pgsql

import (
	"context"
	"fmt"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	portsrepo "github.com/fintrellis/bank-accounts/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxInboxRepository struct {
	BaseRepository
}

// NewInboxRepository creates a new repository for the inbox dedup ledger,
// audit copies and inbound dead letters.
func NewInboxRepository(pool *pgxpool.Pool) portsrepo.InboxRepository {
	return &PgxInboxRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxInboxRepository implements portsrepo.InboxRepository
var _ portsrepo.InboxRepository = (*PgxInboxRepository)(nil)

// IsProcessed checks the dedup ledger for the (message id, handler) pair.
func (r *PgxInboxRepository) IsProcessed(ctx context.Context, tx pgx.Tx, messageID uuid.UUID, handlerName string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM inbox_consumed WHERE message_id = $1 AND handler_name = $2);`

	var exists bool
	var err error
	if tx != nil {
		err = tx.QueryRow(ctx, query, messageID, handlerName).Scan(&exists)
	} else {
		err = r.Pool.QueryRow(ctx, query, messageID, handlerName).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check inbox for message %s handler %s: %w", messageID, handlerName, err)
	}
	return exists, nil
}

// MarkProcessedInTx records the pair in the caller's transaction so the
// idempotency mark commits atomically with the handler's effect.
func (r *PgxInboxRepository) MarkProcessedInTx(ctx context.Context, tx pgx.Tx, messageID uuid.UUID, handlerName string) error {
	query := `INSERT INTO inbox_consumed (message_id, handler_name, processed_at) VALUES ($1, $2, NOW());`

	if _, err := tx.Exec(ctx, query, messageID, handlerName); err != nil {
		return fmt.Errorf("failed to mark message %s processed by %s: %w", messageID, handlerName, err)
	}
	return nil
}

// SaveAuditInTx stores a durable copy of an accepted event for replay and inspection.
func (r *PgxInboxRepository) SaveAuditInTx(ctx context.Context, tx pgx.Tx, record domain.AuditRecord) error {
	query := `
		INSERT INTO audit_events (message_id, event_type, payload, occurred_at, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (message_id) DO NOTHING;
	`

	_, err := tx.Exec(ctx, query,
		record.MessageID,
		record.EventType,
		record.Payload,
		record.OccurredAt,
		record.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit record for event %s: %w", record.MessageID, err)
	}
	return nil
}

// SaveDeadLetter quarantines an inbound message outside any consumer
// transaction; the quarantine must survive the failed attempt's rollback.
func (r *PgxInboxRepository) SaveDeadLetter(ctx context.Context, record domain.DeadLetterRecord) error {
	query := `
		INSERT INTO inbox_dead_letters (message_id, event_type, payload, error, received_at)
		VALUES ($1, $2, $3, $4, $5);
	`

	_, err := r.Pool.Exec(ctx, query,
		record.MessageID,
		record.EventType,
		record.Payload,
		record.Cause,
		record.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save inbound dead letter: %w", err)
	}
	return nil
}
