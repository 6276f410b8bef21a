package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	portsrepo "github.com/fintrellis/bank-accounts/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EventHandler applies the effect of one inbound event inside the consumer's
// transaction. The same transaction carries the inbox processed-mark, so the
// effect and the idempotency guard commit atomically.
type EventHandler interface {
	// Name identifies the handler in the inbox dedup ledger.
	Name() string
	// Handle applies the event's effect. The raw payload is available for
	// handlers that persist event copies.
	Handle(ctx context.Context, tx pgx.Tx, event domain.DomainEvent, payload []byte) error
}

// Consumer runs the generic idempotent consumption algorithm around a handler:
// decode, dedup check, transactional effect + processed-mark, commit, ack.
// A nil return acknowledges the delivery; an error nacks it for redelivery.
type Consumer struct {
	inboxRepo portsrepo.InboxRepository
	handler   EventHandler
	logger    *slog.Logger
}

// NewConsumer wires a handler into the idempotent consumption pipeline.
func NewConsumer(inboxRepo portsrepo.InboxRepository, handler EventHandler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		inboxRepo: inboxRepo,
		handler:   handler,
		logger:    logger.With(slog.String("handler", handler.Name())),
	}
}

// Consume processes one delivery. Malformed payloads and unsupported metadata
// versions are quarantined in the inbound dead-letter table and acknowledged
// so they never block the queue. Unknown event types are logged and
// acknowledged without effect. Everything else runs in one transaction whose
// commit precedes the acknowledgement.
func (c *Consumer) Consume(ctx context.Context, eventType string, body []byte) error {
	event, err := domain.DecodeEvent(eventType, body)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownEventType) {
			c.logger.InfoContext(ctx, "Ignoring unknown event type", slog.String("event_type", eventType))
			return nil
		}
		return c.quarantine(ctx, eventType, body, err)
	}

	if meta := event.Metadata(); meta != nil && meta.Version != "" && meta.Version != domain.MetaVersion {
		return c.quarantine(ctx, eventType, body, errors.New("unsupported event metadata version "+meta.Version))
	}

	tx, err := c.inboxRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer c.inboxRepo.Rollback(ctx, tx)

	processed, err := c.inboxRepo.IsProcessed(ctx, tx, event.ID(), c.handler.Name())
	if err != nil {
		return err
	}
	if processed {
		c.logger.InfoContext(ctx, "Event already processed, acknowledging duplicate",
			slog.String("event_id", event.ID().String()),
			slog.String("event_type", eventType),
		)
		return nil
	}

	if err := c.handler.Handle(ctx, tx, event, body); err != nil {
		c.logger.ErrorContext(ctx, "Event handler failed, delivery will be retried",
			slog.String("event_id", event.ID().String()),
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := c.inboxRepo.MarkProcessedInTx(ctx, tx, event.ID(), c.handler.Name()); err != nil {
		return err
	}

	return c.inboxRepo.Commit(ctx, tx)
}

// quarantine dead-letters an undecodable delivery and acknowledges it. Only a
// failure to persist the quarantine itself triggers redelivery.
func (c *Consumer) quarantine(ctx context.Context, eventType string, body []byte, cause error) error {
	c.logger.WarnContext(ctx, "Quarantining inbound message",
		slog.String("event_type", eventType),
		slog.String("error", cause.Error()),
	)

	record := domain.DeadLetterRecord{
		EventType:  eventType,
		Payload:    body,
		Cause:      cause.Error(),
		ReceivedAt: time.Now().UTC(),
	}
	// Best effort: recover the event id for the record when the envelope is
	// readable even though the full payload is not.
	if id := envelopeID(body); id != uuid.Nil {
		record.MessageID = &id
	}

	if err := c.inboxRepo.SaveDeadLetter(ctx, record); err != nil {
		return err
	}
	return nil
}

func envelopeID(body []byte) uuid.UUID {
	var envelope domain.EventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return uuid.Nil
	}
	return envelope.EventID
}
