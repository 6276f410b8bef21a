package models

import (
	"time"

	"github.com/google/uuid"
)

// OutboxMessage is the database representation of an outbox row.
type OutboxMessage struct {
	MessageID    uuid.UUID  `db:"message_id"`
	EventType    string     `db:"event_type"`
	Payload      []byte     `db:"payload"`
	Exchange     string     `db:"exchange"`
	RoutingKey   string     `db:"routing_key"`
	IsDeadLetter bool       `db:"is_dead_letter"`
	OccurredAt   time.Time  `db:"occurred_at"`
	ProcessedAt  *time.Time `db:"processed_at"` // Nullable
}
