package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fintrellis/bank-accounts/internal/core/domain"
	"github.com/fintrellis/bank-accounts/internal/core/ports/messaging"
)

// Client wraps an AMQP connection and a dedicated publishing channel.
// Each subscription gets its own channel so consumer flow control does not
// block publishes.
type Client struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	pubCh  *amqp.Channel
	logger *slog.Logger
}

// Ensure Client implements Broker
var _ messaging.Broker = (*Client)(nil)

// New dials the broker, opens a publishing channel and declares the exchange
// and queue topology used by the account service.
func New(url string, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	c := &Client{conn: conn, pubCh: ch, logger: logger}
	if err := c.declareTopology(ch); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

func (c *Client) declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(domain.ExchangeAccountEvents, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare exchange %s: %w", domain.ExchangeAccountEvents, err)
	}

	bindings := []struct {
		queue      string
		routingKey string
	}{
		{domain.QueueAudit, "#"},
		{domain.QueueAntifraud, "client.*"},
	}
	for _, b := range bindings {
		if _, err := ch.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("rabbitmq: declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.routingKey, domain.ExchangeAccountEvents, false, nil); err != nil {
			return fmt.Errorf("rabbitmq: bind queue %s: %w", b.queue, err)
		}
	}

	return nil
}

// Publish sends a persistent JSON message to the given exchange. Correlation
// and causation identifiers travel as headers so consumers can stitch event
// chains together.
func (c *Client) Publish(ctx context.Context, exchange, routingKey, eventType string, body []byte, correlationID, causationID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	headers := amqp.Table{}
	if correlationID != "" {
		headers["X-Correlation-Id"] = correlationID
	}
	if causationID != "" {
		headers["X-Causation-Id"] = causationID
	}

	err := c.pubCh.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         eventType,
		Headers:      headers,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq: publish %s to %s/%s: %w", eventType, exchange, routingKey, err)
	}

	return nil
}

// Subscribe consumes the given queue on a dedicated channel until ctx is
// cancelled. Deliveries are processed one at a time; the handler decides
// between ack and requeue.
func (c *Client) Subscribe(ctx context.Context, queue string, handler messaging.DeliveryHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: open consumer channel for %s: %w", queue, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("rabbitmq: qos for %s: %w", queue, err)
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("rabbitmq: consume %s: %w", queue, err)
	}

	go func() {
		defer ch.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					c.logger.WarnContext(ctx, "delivery channel closed", slog.String("queue", queue))
					return
				}

				if err := handler(ctx, d.Type, d.Body); err != nil {
					c.logger.ErrorContext(ctx, "handler failed, requeueing delivery",
						slog.String("queue", queue),
						slog.String("event_type", d.Type),
						slog.String("error", err.Error()),
					)
					if nackErr := d.Nack(false, true); nackErr != nil {
						c.logger.ErrorContext(ctx, "nack failed", slog.String("queue", queue), slog.String("error", nackErr.Error()))
					}
					continue
				}

				if ackErr := d.Ack(false); ackErr != nil {
					c.logger.ErrorContext(ctx, "ack failed", slog.String("queue", queue), slog.String("error", ackErr.Error()))
				}
			}
		}
	}()

	return nil
}

// IsAlive reports whether the underlying connection is usable.
func (c *Client) IsAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil && !c.conn.IsClosed()
}

// Close shuts down the publishing channel and the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pubCh != nil {
		_ = c.pubCh.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}
