package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/logger"
	"github.com/scraploop/scraploop-backend/pkg/outbox"
	"github.com/scraploop/scraploop-backend/pkg/outbox/registry"
)

func envelopeJSON(tb testing.TB) json.RawMessage {
	tb.Helper()
	raw, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{}`),
	})
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return raw
}

func queuedEvent(tb testing.TB, eventType enums.OutboxEventType, attempts int) models.OutboxEvent {
	tb.Helper()
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       envelopeJSON(tb),
		AttemptCount:  attempts,
	}
}

type scriptedQueue struct {
	rows      []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (q *scriptedQueue) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	return q.rows, nil
}

func (q *scriptedQueue) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	q.published = append(q.published, id)
	return nil
}

func (q *scriptedQueue) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	q.failed = append(q.failed, id)
	return nil
}

func (q *scriptedQueue) MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error {
	q.terminal = append(q.terminal, id)
	return nil
}

type passthroughDB struct{}

func (passthroughDB) Ping(context.Context) error { return nil }

func (passthroughDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type stubBroker struct{}

func (stubBroker) Ping(context.Context) error            { return nil }
func (stubBroker) DomainPublisher() *gcppubsub.Publisher { return nil }

type scriptedPublisher struct {
	outcomes []error
}

func (p *scriptedPublisher) Publish(context.Context, *gcppubsub.Message) publishReceipt {
	var outcome error
	if len(p.outcomes) > 0 {
		outcome = p.outcomes[0]
		p.outcomes = p.outcomes[1:]
	}
	return scriptedReceipt{err: outcome}
}

type scriptedReceipt struct {
	err error
}

func (r scriptedReceipt) Get(context.Context) (string, error) {
	return "", r.err
}

type passthroughDecoder struct {
	err error
}

func (d passthroughDecoder) Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if d.err != nil {
		return nil, d.err
	}
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, registry.NewNonRetryableError(err)
	}
	return &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			EventType:     event.EventType,
			AggregateType: event.AggregateType,
			Topic:         "scrap-domain-events",
		},
		Envelope: envelope,
	}, nil
}

type capturedDLQ struct {
	entries []models.OutboxDLQ
}

func (d *capturedDLQ) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	d.entries = append(d.entries, entry)
	return nil
}

func newTestDrainer(t *testing.T, queue *scriptedQueue, pub messagePublisher, decoder eventDecoder, dlq *capturedDLQ, outboxCfg config.OutboxConfig) *Drainer {
	t.Helper()
	if outboxCfg.BatchSize == 0 {
		outboxCfg = config.OutboxConfig{BatchSize: 10, PollIntervalMS: 100, MaxAttempts: 5}
	}
	drainer, err := NewDrainer(DrainerParams{
		Config:    &config.Config{Outbox: outboxCfg},
		Logger:    logger.New(logger.Options{ServiceName: "outbox-drainer-test", Output: io.Discard}),
		DB:        passthroughDB{},
		Broker:    stubBroker{},
		Queue:     queue,
		Decoder:   decoder,
		DLQ:       dlq,
		Publisher: pub,
	})
	if err != nil {
		t.Fatalf("building drainer: %v", err)
	}
	return drainer
}

func TestDrainOnceKeepsGoingAfterTransientFailure(t *testing.T) {
	queue := &scriptedQueue{rows: []models.OutboxEvent{
		queuedEvent(t, enums.EventOrderClaimed, 0),
		queuedEvent(t, enums.EventOrderClaimed, 0),
	}}
	pub := &scriptedPublisher{outcomes: []error{errors.New("broker hiccup"), nil}}
	dlq := &capturedDLQ{}
	drainer := newTestDrainer(t, queue, pub, passthroughDecoder{}, dlq, config.OutboxConfig{})

	drained, err := drainer.drainOnce(context.Background())
	if err != nil {
		t.Fatalf("drain pass: %v", err)
	}
	if !drained {
		t.Fatalf("expected pass to report work done")
	}
	if len(queue.failed) != 1 || queue.failed[0] != queue.rows[0].ID {
		t.Fatalf("first row should be marked failed, got %v", queue.failed)
	}
	if len(queue.published) != 1 || queue.published[0] != queue.rows[1].ID {
		t.Fatalf("second row should be marked published, got %v", queue.published)
	}
	if len(dlq.entries) != 0 {
		t.Fatalf("transient failure must not dead-letter")
	}
}

func TestDrainOnceDeadLettersUndecodableRows(t *testing.T) {
	row := queuedEvent(t, enums.EventOrderCreated, 0)
	queue := &scriptedQueue{rows: []models.OutboxEvent{row}}
	dlq := &capturedDLQ{}
	decoder := passthroughDecoder{err: registry.NewNonRetryableError(errors.New("unknown event type"))}
	drainer := newTestDrainer(t, queue, &scriptedPublisher{}, decoder, dlq, config.OutboxConfig{})

	drained, err := drainer.drainOnce(context.Background())
	if err != nil {
		t.Fatalf("drain pass: %v", err)
	}
	if !drained {
		t.Fatalf("expected pass to report work done")
	}
	if len(dlq.entries) != 1 {
		t.Fatalf("expected one dead letter, got %d", len(dlq.entries))
	}
	entry := dlq.entries[0]
	if entry.EventID != row.ID {
		t.Fatalf("dead letter points at wrong event: %s", entry.EventID)
	}
	if !bytes.Equal(entry.Payload, row.Payload) {
		t.Fatalf("dead letter must carry the original payload")
	}
	if entry.ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatalf("unexpected reason %s", entry.ErrorReason)
	}
	if len(queue.terminal) != 1 || queue.terminal[0] != row.ID {
		t.Fatalf("source row must be marked terminal, got %v", queue.terminal)
	}
	if len(queue.published) != 0 || len(queue.failed) != 0 {
		t.Fatalf("dead-lettered row must not be marked published or failed")
	}
}

func TestDrainOnceDeadLettersExhaustedRows(t *testing.T) {
	row := queuedEvent(t, enums.EventOrderCreated, 1)
	queue := &scriptedQueue{rows: []models.OutboxEvent{row}}
	pub := &scriptedPublisher{outcomes: []error{errors.New("still unreachable")}}
	dlq := &capturedDLQ{}
	drainer := newTestDrainer(t, queue, pub, passthroughDecoder{}, dlq, config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	drained, err := drainer.drainOnce(context.Background())
	if err != nil {
		t.Fatalf("drain pass: %v", err)
	}
	if !drained {
		t.Fatalf("expected pass to report work done")
	}
	if len(dlq.entries) != 1 {
		t.Fatalf("expected one dead letter, got %d", len(dlq.entries))
	}
	if dlq.entries[0].ErrorReason != enums.OutboxDLQReasonMaxAttempts {
		t.Fatalf("unexpected reason %s", dlq.entries[0].ErrorReason)
	}
	if len(queue.terminal) != 1 || queue.terminal[0] != row.ID {
		t.Fatalf("exhausted row must be marked terminal, got %v", queue.terminal)
	}
}

func TestDrainOnceReportsIdleWhenQueueEmpty(t *testing.T) {
	queue := &scriptedQueue{}
	drainer := newTestDrainer(t, queue, &scriptedPublisher{}, passthroughDecoder{}, &capturedDLQ{}, config.OutboxConfig{})

	drained, err := drainer.drainOnce(context.Background())
	if err != nil {
		t.Fatalf("drain pass: %v", err)
	}
	if drained {
		t.Fatalf("empty queue must report idle")
	}
}
