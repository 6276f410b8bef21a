package domain

import (
	"time"

	"github.com/google/uuid"
)

// InboxRecord marks a message as processed by a specific handler. The
// (message id, handler name) pair is write-once and its existence check is the
// idempotency gate for event consumption.
type InboxRecord struct {
	MessageID   uuid.UUID
	HandlerName string
	ProcessedAt time.Time
}

// AuditRecord is a durable copy of an accepted inbound event, kept for replay
// and inspection.
type AuditRecord struct {
	MessageID  uuid.UUID
	EventType  string
	Payload    []byte
	OccurredAt time.Time
	RecordedAt time.Time
}

// DeadLetterRecord quarantines an inbound message that could not be parsed or
// processed, together with the causing error.
type DeadLetterRecord struct {
	MessageID  *uuid.UUID // nil when the payload was too malformed to yield an id
	EventType  string
	Payload    []byte
	Cause      string
	ReceivedAt time.Time
}
