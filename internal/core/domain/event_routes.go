package domain

// ExchangeAccountEvents is the exchange all account domain events are published to.
const ExchangeAccountEvents = "account.events"

// Queues consumed by this service.
const (
	QueueAudit     = "account.audit"
	QueueAntifraud = "account.antifraud"
)

// EventRoute is the broker destination for an event variant.
type EventRoute struct {
	Exchange   string
	RoutingKey string
}

// eventRoutes is the static registry mapping event variant to destination,
// consulted by the outbox append path. Adding a variant without a route is a
// wiring error surfaced by RouteFor's second return value.
var eventRoutes = map[EventType]EventRoute{
	EventAccountOpened:          {ExchangeAccountEvents, "account.opened"},
	EventAccountUpdated:         {ExchangeAccountEvents, "account.updated"},
	EventAccountClosed:          {ExchangeAccountEvents, "account.closed"},
	EventAccountInterestUpdated: {ExchangeAccountEvents, "account.interest.updated"},
	EventInterestAccrued:        {ExchangeAccountEvents, "account.interest.accrued"},
	EventMoneyCredited:          {ExchangeAccountEvents, "money.credited"},
	EventMoneyDebited:           {ExchangeAccountEvents, "money.debited"},
	EventTransferCompleted:      {ExchangeAccountEvents, "transfer.completed"},
	EventClientBlocked:          {ExchangeAccountEvents, "client.blocked"},
	EventClientUnblocked:        {ExchangeAccountEvents, "client.unblocked"},
}

// RouteFor returns the broker destination registered for an event type.
func RouteFor(t EventType) (EventRoute, bool) {
	route, ok := eventRoutes[t]
	return route, ok
}
