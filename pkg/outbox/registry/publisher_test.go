package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/outbox"
	"github.com/scraploop/scraploop-backend/pkg/outbox/payloads"
)

func buildRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{DomainTopic: "domain-topic"})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func sealedRow(t *testing.T, eventType enums.OutboxEventType, aggregate enums.OutboxAggregateType, aggregateID uuid.UUID, data any) models.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		EventType:     eventType,
		AggregateType: aggregate,
		AggregateID:   aggregateID,
		Payload:       envelope,
	}
}

func wantNonRetryable(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	var nonRetry NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("expected non-retryable error, got %T: %v", err, err)
	}
}

func TestResolveDecodesTypedPayload(t *testing.T) {
	reg := buildRegistry(t)
	orderID := uuid.New()
	collectorID := uuid.New()

	row := sealedRow(t, enums.EventOrderClaimed, enums.AggregateOrder, orderID, payloads.OrderClaimedEvent{
		OrderID:     orderID,
		RequesterID: uuid.New(),
		CollectorID: collectorID,
	})

	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "domain-topic" {
		t.Fatalf("topic %q", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.OrderClaimedEvent)
	if !ok {
		t.Fatalf("payload type %T", resolved.Payload)
	}
	if payload.OrderID != orderID || payload.CollectorID != collectorID {
		t.Fatalf("payload mismatch %+v", payload)
	}
	if resolved.Envelope.EventID == "" || resolved.Envelope.OccurredAt.IsZero() {
		t.Fatalf("envelope incomplete %+v", resolved.Envelope)
	}
}

func TestResolveCoversEverySchema(t *testing.T) {
	reg := buildRegistry(t)
	if len(reg.entries) != len(eventSchemas) {
		t.Fatalf("registry has %d entries, schemas declare %d", len(reg.entries), len(eventSchemas))
	}
	for eventType, desc := range reg.entries {
		if desc.PayloadFactory() == nil {
			t.Fatalf("%s: factory returned nil", eventType)
		}
		if desc.Topic != "domain-topic" {
			t.Fatalf("%s: topic %q", eventType, desc.Topic)
		}
	}
}

func TestResolveRejectsUnknownEventType(t *testing.T) {
	reg := buildRegistry(t)
	row := sealedRow(t, "order_archived", enums.AggregateOrder, uuid.New(), map[string]string{"reason": "none"})
	_, err := reg.Resolve(row)
	wantNonRetryable(t, err)
}

func TestResolveRejectsAggregateMismatch(t *testing.T) {
	reg := buildRegistry(t)
	row := sealedRow(t, enums.EventOrderClaimed, enums.AggregateWalletTransaction, uuid.New(), map[string]string{})
	_, err := reg.Resolve(row)
	wantNonRetryable(t, err)
}

func TestResolveRejectsMissingAggregateID(t *testing.T) {
	reg := buildRegistry(t)
	row := sealedRow(t, enums.EventOrderClaimed, enums.AggregateOrder, uuid.Nil, map[string]string{})
	_, err := reg.Resolve(row)
	wantNonRetryable(t, err)
}

func TestResolveRejectsNullPayload(t *testing.T) {
	reg := buildRegistry(t)
	row := sealedRow(t, enums.EventOrderClaimed, enums.AggregateOrder, uuid.New(), nil)
	_, err := reg.Resolve(row)
	wantNonRetryable(t, err)
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{}); err == nil {
		t.Fatal("empty topic must be rejected")
	}
}
