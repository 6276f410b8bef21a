package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType names a concrete domain event variant. The set is closed: decoding
// dispatches over a type tag rather than reflection, with an explicit unknown
// fallback.
type EventType string

const (
	EventAccountOpened          EventType = "AccountOpened"
	EventAccountUpdated         EventType = "AccountUpdated"
	EventAccountClosed          EventType = "AccountClosed"
	EventAccountInterestUpdated EventType = "AccountInterestUpdated"
	EventInterestAccrued        EventType = "InterestAccrued"
	EventMoneyCredited          EventType = "MoneyCredited"
	EventMoneyDebited           EventType = "MoneyDebited"
	EventTransferCompleted      EventType = "TransferCompleted"
	EventClientBlocked          EventType = "ClientBlocked"
	EventClientUnblocked        EventType = "ClientUnblocked"
)

// MetaVersion is the envelope metadata version this service emits and accepts.
const MetaVersion = "v1"

// ErrUnknownEventType is returned by DecodeEvent for type tags outside the
// known set. Consumers treat it as a forward-compatibility signal, not a failure.
var ErrUnknownEventType = errors.New("unknown event type")

// EventMeta is the optional metadata block carried by every event envelope.
type EventMeta struct {
	Source        string `json:"source,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
	CausationID   string `json:"causationId,omitempty"`
	Version       string `json:"version,omitempty"`
}

// EventEnvelope holds the fields shared by all domain events.
type EventEnvelope struct {
	EventID    uuid.UUID  `json:"eventId"`
	OccurredAt time.Time  `json:"occurredAt"`
	Meta       *EventMeta `json:"meta,omitempty"`
}

func (e EventEnvelope) ID() uuid.UUID         { return e.EventID }
func (e EventEnvelope) OccurredOn() time.Time { return e.OccurredAt }
func (e EventEnvelope) Metadata() *EventMeta  { return e.Meta }

// NewEventEnvelope creates an envelope for an event emitted by this service.
func NewEventEnvelope() EventEnvelope {
	return EventEnvelope{
		EventID:    uuid.New(),
		OccurredAt: time.Now().UTC(),
		Meta: &EventMeta{
			Source:  "bank-accounts",
			Version: MetaVersion,
		},
	}
}

// DomainEvent is the envelope contract every concrete event variant satisfies.
type DomainEvent interface {
	ID() uuid.UUID
	Type() EventType
	OccurredOn() time.Time
	Metadata() *EventMeta
}

// AccountOpened is emitted when a new account is created.
type AccountOpened struct {
	EventEnvelope
	AccountID    string      `json:"accountID"`
	OwnerID      string      `json:"ownerID"`
	AccountKind  AccountKind `json:"accountKind"`
	CurrencyCode string      `json:"currencyCode"`
}

func (AccountOpened) Type() EventType { return EventAccountOpened }

// AccountUpdated is emitted when non-monetary account details change.
type AccountUpdated struct {
	EventEnvelope
	AccountID string `json:"accountID"`
}

func (AccountUpdated) Type() EventType { return EventAccountUpdated }

// AccountClosed is emitted when an account is closed.
type AccountClosed struct {
	EventEnvelope
	AccountID string    `json:"accountID"`
	ClosedAt  time.Time `json:"closedAt"`
}

func (AccountClosed) Type() EventType { return EventAccountClosed }

// AccountInterestUpdated is emitted when an account's interest rate changes.
type AccountInterestUpdated struct {
	EventEnvelope
	AccountID    string          `json:"accountID"`
	InterestRate decimal.Decimal `json:"interestRate"`
}

func (AccountInterestUpdated) Type() EventType { return EventAccountInterestUpdated }

// InterestAccrued is emitted when accrued interest is credited to a deposit account.
type InterestAccrued struct {
	EventEnvelope
	AccountID string          `json:"accountID"`
	Amount    decimal.Decimal `json:"amount"`
}

func (InterestAccrued) Type() EventType { return EventInterestAccrued }

// MoneyCredited is emitted when a CREDIT transaction decreases an account balance.
type MoneyCredited struct {
	EventEnvelope
	AccountID    string          `json:"accountID"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

func (MoneyCredited) Type() EventType { return EventMoneyCredited }

// MoneyDebited is emitted when a DEBIT transaction increases an account balance.
type MoneyDebited struct {
	EventEnvelope
	AccountID    string          `json:"accountID"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

func (MoneyDebited) Type() EventType { return EventMoneyDebited }

// TransferCompleted is emitted once per successful transfer, covering both legs.
type TransferCompleted struct {
	EventEnvelope
	SourceAccountID      string          `json:"sourceAccountID"`
	DestinationAccountID string          `json:"destinationAccountID"`
	Amount               decimal.Decimal `json:"amount"`
	CurrencyCode         string          `json:"currencyCode"`
}

func (TransferCompleted) Type() EventType { return EventTransferCompleted }

// ClientBlocked is consumed from the antifraud system; it freezes all accounts
// owned by the client.
type ClientBlocked struct {
	EventEnvelope
	ClientID string `json:"clientID"`
}

func (ClientBlocked) Type() EventType { return EventClientBlocked }

// ClientUnblocked lifts the freeze set by ClientBlocked.
type ClientUnblocked struct {
	EventEnvelope
	ClientID string `json:"clientID"`
}

func (ClientUnblocked) Type() EventType { return EventClientUnblocked }

// DecodeEvent deserializes a payload into the typed variant named by the type
// tag. Unknown tags return ErrUnknownEventType so consumers can acknowledge
// event types they don't understand instead of failing.
func DecodeEvent(eventType string, payload []byte) (DomainEvent, error) {
	var (
		event DomainEvent
		err   error
	)

	switch EventType(eventType) {
	case EventAccountOpened:
		event, err = unmarshalEvent[AccountOpened](payload)
	case EventAccountUpdated:
		event, err = unmarshalEvent[AccountUpdated](payload)
	case EventAccountClosed:
		event, err = unmarshalEvent[AccountClosed](payload)
	case EventAccountInterestUpdated:
		event, err = unmarshalEvent[AccountInterestUpdated](payload)
	case EventInterestAccrued:
		event, err = unmarshalEvent[InterestAccrued](payload)
	case EventMoneyCredited:
		event, err = unmarshalEvent[MoneyCredited](payload)
	case EventMoneyDebited:
		event, err = unmarshalEvent[MoneyDebited](payload)
	case EventTransferCompleted:
		event, err = unmarshalEvent[TransferCompleted](payload)
	case EventClientBlocked:
		event, err = unmarshalEvent[ClientBlocked](payload)
	case EventClientUnblocked:
		event, err = unmarshalEvent[ClientUnblocked](payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", eventType, err)
	}
	return event, nil
}

func unmarshalEvent[T DomainEvent](payload []byte) (DomainEvent, error) {
	var event T
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return event, nil
}
