package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	"github.com/fintrellis/bank-accounts/internal/core/ports/messaging"
	portsrepo "github.com/fintrellis/bank-accounts/internal/core/ports/repositories"
)

// DispatcherConfig tunes the outbox dispatcher.
type DispatcherConfig struct {
	PollInterval time.Duration // delay between passes
	BatchSize    int           // max messages fetched per pass
	MaxRetries   int           // publish attempts per message within one pass
	RetryDelay   time.Duration // fixed delay between attempts
}

func (c *DispatcherConfig) normalize() {
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
}

// DispatchResult captures one dispatch pass outcome.
type DispatchResult struct {
	Skipped      bool // broker was unreachable, nothing was attempted
	Published    int
	DeadLettered int
}

// OutboxDispatcher drains the outbox to the broker on a recurring schedule.
// Successfully published messages are marked processed; messages that exhaust
// their retries are dead-lettered and never fetched again. Publishing can
// succeed without the processed mark surviving a crash, so downstream
// consumers must be idempotent.
type OutboxDispatcher struct {
	outboxRepo portsrepo.OutboxRepository
	broker     messaging.Publisher
	cfg        DispatcherConfig
	logger     *slog.Logger
	sleep      func(time.Duration)
}

// NewOutboxDispatcher creates a dispatcher with normalized configuration.
func NewOutboxDispatcher(
	outboxRepo portsrepo.OutboxRepository,
	broker messaging.Publisher,
	cfg DispatcherConfig,
	logger *slog.Logger,
) *OutboxDispatcher {
	cfg.normalize()
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxDispatcher{
		outboxRepo: outboxRepo,
		broker:     broker,
		cfg:        cfg,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Start runs dispatch passes until the context is cancelled. Passes run
// sequentially on this goroutine, so a slow pass delays the next one instead
// of overlapping with it.
func (d *OutboxDispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	d.logger.Info("Outbox dispatcher started",
		slog.Duration("poll_interval", d.cfg.PollInterval),
		slog.Int("batch_size", d.cfg.BatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.RunPass(ctx)
		}
	}
}

// RunPass executes one dispatch pass. When the broker is unreachable the whole
// pass is skipped without mutating any state: every message stays pending for
// the next scheduled run. Messages are independent; one failing does not block
// the others.
func (d *OutboxDispatcher) RunPass(ctx context.Context) DispatchResult {
	if !d.broker.IsAlive() {
		d.logger.WarnContext(ctx, "Broker unreachable, skipping outbox dispatch pass")
		return DispatchResult{Skipped: true}
	}

	messages, err := d.outboxRepo.FetchPending(ctx, d.cfg.BatchSize)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to fetch pending outbox messages", slog.String("error", err.Error()))
		return DispatchResult{}
	}

	var result DispatchResult
	for i := range messages {
		if d.dispatchMessage(ctx, messages[i]) {
			result.Published++
		} else {
			result.DeadLettered++
		}
	}
	return result
}

// dispatchMessage publishes one message with bounded retries. A message whose
// publish fails MaxRetries times is dead-lettered. The publish itself always
// runs to completion; cancellation is only honored between messages, never in
// the middle of one, to avoid leaving a message in an ambiguous state.
func (d *OutboxDispatcher) dispatchMessage(ctx context.Context, msg domain.OutboxMessage) bool {
	correlationID, causationID := metadataFromPayload(msg.Payload)

	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxRetries; attempt++ {
		lastErr = d.broker.Publish(ctx, msg.Exchange, msg.RoutingKey, msg.EventType, msg.Payload, correlationID, causationID)
		if lastErr == nil {
			if err := d.outboxRepo.MarkProcessed(ctx, msg.MessageID); err != nil {
				// The publish went out but the mark failed; the message will be
				// republished next pass and deduplicated by the consumers' inbox.
				d.logger.ErrorContext(ctx, "Failed to mark outbox message processed",
					slog.String("message_id", msg.MessageID.String()),
					slog.String("error", err.Error()),
				)
			}
			return true
		}
		if attempt < d.cfg.MaxRetries {
			d.sleep(d.cfg.RetryDelay)
		}
	}

	d.logger.ErrorContext(ctx, "Outbox message exhausted publish retries, dead-lettering",
		slog.String("message_id", msg.MessageID.String()),
		slog.String("event_type", msg.EventType),
		slog.Int("attempts", d.cfg.MaxRetries),
		slog.String("error", lastErr.Error()),
	)
	if err := d.outboxRepo.MarkDeadLetter(ctx, msg.MessageID); err != nil {
		d.logger.ErrorContext(ctx, "Failed to dead-letter outbox message",
			slog.String("message_id", msg.MessageID.String()),
			slog.String("error", err.Error()),
		)
	}
	return false
}

// metadataFromPayload extracts correlation/causation ids from the serialized
// event envelope so the gateway can mirror them into broker headers.
func metadataFromPayload(payload []byte) (correlationID, causationID string) {
	var envelope domain.EventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.Meta == nil {
		return "", ""
	}
	return envelope.Meta.CorrelationID, envelope.Meta.CausationID
}
