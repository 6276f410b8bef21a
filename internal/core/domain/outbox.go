package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxMessage is a pending domain event awaiting dispatch to the broker.
// It is created in the same database transaction as the business mutation that
// produced the event, and transitions Pending -> Processed or Pending ->
// DeadLetter. Both terminal states are permanent.
type OutboxMessage struct {
	MessageID    uuid.UUID // Equals the originating domain event id
	EventType    string
	Payload      []byte // Serialized event JSON
	Exchange     string
	RoutingKey   string
	IsDeadLetter bool
	OccurredAt   time.Time
	ProcessedAt  *time.Time
}
