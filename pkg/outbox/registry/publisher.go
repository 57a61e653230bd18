package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/outbox"
	"github.com/scraploop/scraploop-backend/pkg/outbox/payloads"
)

// EventDescriptor ties an event type to the aggregate it belongs to, the
// topic it publishes on, and a factory for its typed payload.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is a fully decoded outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// NonRetryableError marks a row the publisher must dead-letter instead of
// retrying: malformed payloads and schema mismatches never heal on retry.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.Err
}

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// eventSchema declares the aggregate and payload contract for one event
// type. The full descriptor set is derived from this table at startup.
type eventSchema struct {
	aggregate enums.OutboxAggregateType
	payload   func() interface{}
}

var eventSchemas = map[enums.OutboxEventType]eventSchema{
	enums.EventOrderCreated:          {enums.AggregateOrder, func() interface{} { return &payloads.OrderCreatedEvent{} }},
	enums.EventOrderClaimed:          {enums.AggregateOrder, func() interface{} { return &payloads.OrderClaimedEvent{} }},
	enums.EventOrderForwarded:        {enums.AggregateOrder, func() interface{} { return &payloads.OrderForwardedEvent{} }},
	enums.EventOrderStatusChanged:    {enums.AggregateOrder, func() interface{} { return &payloads.OrderStatusChangedEvent{} }},
	enums.EventOrderCompleted:        {enums.AggregateOrder, func() interface{} { return &payloads.OrderCompletedEvent{} }},
	enums.EventOrderCancelled:        {enums.AggregateOrder, func() interface{} { return &payloads.OrderCancelledEvent{} }},
	enums.EventOrderSettled:          {enums.AggregateOrder, func() interface{} { return &payloads.OrderSettledEvent{} }},
	enums.EventWalletRecharged:       {enums.AggregateWalletTransaction, func() interface{} { return &payloads.WalletRechargedEvent{} }},
	enums.EventPayoutRequested:       {enums.AggregatePayoutRequest, func() interface{} { return &payloads.PayoutRequestedEvent{} }},
	enums.EventCouponRedeemed:        {enums.AggregateCoupon, func() interface{} { return &payloads.CouponRedeemedEvent{} }},
	enums.EventNotificationRequested: {enums.AggregateNotification, func() interface{} { return &payloads.NotificationRequestedEvent{} }},
}

// EventRegistry resolves outbox rows against the declared event schemas.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NewEventRegistry builds descriptors for every declared event type. All
// domain events currently share the single configured topic.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.DomainTopic == "" {
		return nil, fmt.Errorf("domain topic is required")
	}

	entries := make(map[enums.OutboxEventType]EventDescriptor, len(eventSchemas))
	for eventType, schema := range eventSchemas {
		entries[eventType] = EventDescriptor{
			EventType:      eventType,
			AggregateType:  schema.aggregate,
			Topic:          cfg.DomainTopic,
			PayloadFactory: schema.payload,
		}
	}
	return &EventRegistry{entries: entries}, nil
}

// Resolve checks the row against its schema and decodes the typed
// payload. Every failure here is non-retryable: the row's bytes are
// already committed and will not change.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}
