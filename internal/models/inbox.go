package models

import (
	"time"

	"github.com/google/uuid"
)

// InboxRecord is the database representation of a processed-message ledger row.
type InboxRecord struct {
	MessageID   uuid.UUID `db:"message_id"`
	HandlerName string    `db:"handler_name"`
	ProcessedAt time.Time `db:"processed_at"`
}

// AuditEvent is the database representation of an accepted-event copy.
type AuditEvent struct {
	MessageID  uuid.UUID `db:"message_id"`
	EventType  string    `db:"event_type"`
	Payload    []byte    `db:"payload"`
	OccurredAt time.Time `db:"occurred_at"`
	RecordedAt time.Time `db:"recorded_at"`
}

// InboxDeadLetter is the database representation of a quarantined inbound message.
type InboxDeadLetter struct {
	ID         int64      `db:"id"`
	MessageID  *uuid.UUID `db:"message_id"` // Nullable
	EventType  string     `db:"event_type"`
	Payload    []byte     `db:"payload"`
	Error      string     `db:"error"`
	ReceivedAt time.Time  `db:"received_at"`
}
