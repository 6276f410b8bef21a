package messaging

import "context"

// DeliveryHandler processes one inbound broker message. Returning nil
// acknowledges the message; returning an error nacks it for redelivery.
type DeliveryHandler func(ctx context.Context, eventType string, body []byte) error

// Publisher is the outbound half of the broker gateway.
type Publisher interface {
	// Publish sends one message. Correlation/causation ids, when non-empty,
	// are attached as X-Correlation-Id / X-Causation-Id headers; eventType is
	// carried in the message's type property.
	Publish(ctx context.Context, exchange, routingKey, eventType string, body []byte, correlationID, causationID string) error

	// IsAlive reports whether the broker connection is usable.
	IsAlive() bool
}

// Subscriber is the inbound half of the broker gateway. Each subscription runs
// its own delivery loop with a prefetch of one in-flight message per channel.
type Subscriber interface {
	Subscribe(ctx context.Context, queue string, handler DeliveryHandler) error
}

// Broker is the full publish/subscribe facade over the message transport.
type Broker interface {
	Publisher
	Subscriber
}
