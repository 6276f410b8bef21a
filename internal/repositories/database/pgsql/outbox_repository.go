package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/fintrellis/bank-accounts/internal/apperrors"
	"github.com/fintrellis/bank-accounts/internal/core/domain"
	portsrepo "github.com/fintrellis/bank-accounts/internal/core/ports/repositories"
	"github.com/fintrellis/bank-accounts/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxOutboxRepository struct {
	BaseRepository
}

// NewOutboxRepository creates a new repository for outbox messages.
func NewOutboxRepository(pool *pgxpool.Pool) portsrepo.OutboxRepository {
	return &PgxOutboxRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxOutboxRepository implements portsrepo.OutboxRepository
var _ portsrepo.OutboxRepository = (*PgxOutboxRepository)(nil)

// AppendInTx writes an outbox row inside the caller's transaction so the event
// commits or rolls back atomically with the business mutation producing it.
func (r *PgxOutboxRepository) AppendInTx(ctx context.Context, tx pgx.Tx, msg domain.OutboxMessage) error {
	query := `
		INSERT INTO outbox_messages (message_id, event_type, payload, exchange, routing_key, is_dead_letter, occurred_at, processed_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, NULL);
	`

	_, err := tx.Exec(ctx, query,
		msg.MessageID,
		msg.EventType,
		msg.Payload,
		msg.Exchange,
		msg.RoutingKey,
		msg.OccurredAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: outbox message %s", apperrors.ErrDuplicate, msg.MessageID)
		}
		return fmt.Errorf("failed to append outbox message %s: %w", msg.MessageID, err)
	}
	return nil
}

// FetchPending returns up to limit unprocessed, non-dead-lettered messages,
// oldest occurred-at first.
func (r *PgxOutboxRepository) FetchPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT message_id, event_type, payload, exchange, routing_key, is_dead_letter, occurred_at, processed_at
		FROM outbox_messages
		WHERE processed_at IS NULL AND is_dead_letter = FALSE
		ORDER BY occurred_at ASC
		LIMIT $1;
	`

	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending outbox messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.OutboxMessage{}
	for rows.Next() {
		var m models.OutboxMessage
		err := rows.Scan(
			&m.MessageID,
			&m.EventType,
			&m.Payload,
			&m.Exchange,
			&m.RoutingKey,
			&m.IsDeadLetter,
			&m.OccurredAt,
			&m.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message row: %w", err)
		}
		messages = append(messages, domain.OutboxMessage(m))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox message rows: %w", err)
	}

	return messages, nil
}

// MarkProcessed stamps the processed-at timestamp. Terminal.
func (r *PgxOutboxRepository) MarkProcessed(ctx context.Context, messageID uuid.UUID) error {
	query := `UPDATE outbox_messages SET processed_at = NOW() WHERE message_id = $1 AND processed_at IS NULL;`

	cmdTag, err := r.Pool.Exec(ctx, query, messageID)
	if err != nil {
		return fmt.Errorf("failed to mark outbox message %s processed: %w", messageID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("outbox message " + messageID.String() + " not found or already processed")
	}
	return nil
}

// MarkDeadLetter flags the message as dead-lettered, excluding it from all
// future FetchPending calls. Terminal, no automatic resurrection.
func (r *PgxOutboxRepository) MarkDeadLetter(ctx context.Context, messageID uuid.UUID) error {
	query := `UPDATE outbox_messages SET is_dead_letter = TRUE WHERE message_id = $1 AND processed_at IS NULL;`

	cmdTag, err := r.Pool.Exec(ctx, query, messageID)
	if err != nil {
		return fmt.Errorf("failed to dead-letter outbox message %s: %w", messageID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("outbox message " + messageID.String() + " not found or already processed")
	}
	return nil
}

// PendingCount reports how many messages are awaiting dispatch.
func (r *PgxOutboxRepository) PendingCount(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM outbox_messages WHERE processed_at IS NULL AND is_dead_letter = FALSE;`

	var count int64
	if err := r.Pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending outbox messages: %w", err)
	}
	return count, nil
}
