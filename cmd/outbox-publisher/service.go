package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/logger"
	"github.com/scraploop/scraploop-backend/pkg/outbox/registry"
)

// Every marketplace event rides the single domain topic, so the drainer
// carries one publisher handle instead of a per-topic lookup.
const (
	fallbackBatchSize   = 50
	fallbackPollEvery   = 500 * time.Millisecond
	fallbackMaxAttempts = 10
	publishTimeout      = 15 * time.Second
	maxSleep            = 10 * time.Second
	sleepJitter         = 250 * time.Millisecond
)

type txClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type brokerClient interface {
	Ping(context.Context) error
	DomainPublisher() *gcppubsub.Publisher
}

type eventQueue interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type deadLetterSink interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type eventDecoder interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

// messagePublisher abstracts the broker handle so tests can script publish
// outcomes without a live topic.
type messagePublisher interface {
	Publish(context.Context, *gcppubsub.Message) publishReceipt
}

type publishReceipt interface {
	Get(context.Context) (string, error)
}

type DrainerParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      txClient
	Broker  brokerClient
	Queue   eventQueue
	Decoder eventDecoder
	DLQ     deadLetterSink

	// Publisher overrides the broker's domain publisher when set.
	Publisher messagePublisher
}

// Drainer moves committed outbox rows onto the domain topic. Each pass runs
// in one transaction: rows are fetched with SKIP LOCKED, published, and
// marked, so concurrent drainers never double-publish.
type Drainer struct {
	logg    *logger.Logger
	db      txClient
	broker  brokerClient
	queue   eventQueue
	decoder eventDecoder
	dlq     deadLetterSink
	publish messagePublisher

	batchSize   int
	maxAttempts int
	pollEvery   time.Duration
	jitter      *rand.Rand
}

func NewDrainer(params DrainerParams) (*Drainer, error) {
	switch {
	case params.Config == nil:
		return nil, errors.New("config is required")
	case params.Logger == nil:
		return nil, errors.New("logger is required")
	case params.DB == nil:
		return nil, errors.New("database client is required")
	case params.Broker == nil:
		return nil, errors.New("broker client is required")
	case params.Queue == nil:
		return nil, errors.New("outbox queue is required")
	case params.Decoder == nil:
		return nil, errors.New("event decoder is required")
	case params.DLQ == nil:
		return nil, errors.New("dead letter sink is required")
	}

	publish := params.Publisher
	if publish == nil {
		handle := params.Broker.DomainPublisher()
		if handle == nil {
			return nil, errors.New("domain publisher unavailable")
		}
		publish = domainPublisher{inner: handle}
	}

	outboxCfg := params.Config.Outbox
	batch := outboxCfg.BatchSize
	if batch <= 0 {
		batch = fallbackBatchSize
	}
	maxAttempts := outboxCfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = fallbackMaxAttempts
	}
	pollEvery := time.Duration(outboxCfg.PollIntervalMS) * time.Millisecond
	if pollEvery <= 0 {
		pollEvery = fallbackPollEvery
	}

	return &Drainer{
		logg:        params.Logger,
		db:          params.DB,
		broker:      params.Broker,
		queue:       params.Queue,
		decoder:     params.Decoder,
		dlq:         params.DLQ,
		publish:     publish,
		batchSize:   batch,
		maxAttempts: maxAttempts,
		pollEvery:   pollEvery,
		jitter:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run drains until the context is canceled. A full batch loops straight into
// the next pass; an empty table sleeps for the poll interval; a pass error
// backs off exponentially.
func (d *Drainer) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := d.checkDependencies(ctx); err != nil {
		return err
	}

	backoff := d.pollEvery
	for {
		select {
		case <-ctx.Done():
			d.logg.Info(ctx, "outbox drainer stopping")
			return ctx.Err()
		default:
		}

		drained, err := d.drainOnce(ctx)
		if err != nil {
			d.logg.Error(ctx, "outbox drain pass failed", err)
			backoff = doubled(backoff, maxSleep)
			if err := d.pause(ctx, backoff); err != nil {
				return err
			}
			continue
		}

		backoff = d.pollEvery
		if drained {
			continue
		}
		if err := d.pause(ctx, d.pollEvery); err != nil {
			return err
		}
	}
}

func (d *Drainer) checkDependencies(ctx context.Context) error {
	if err := d.db.Ping(ctx); err != nil {
		d.logg.Error(ctx, "database ping failed", err)
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := d.broker.Ping(ctx); err != nil {
		d.logg.Error(ctx, "broker ping failed", err)
		return fmt.Errorf("broker ping failed: %w", err)
	}
	return nil
}

func (d *Drainer) drainOnce(ctx context.Context) (bool, error) {
	drained := false
	err := d.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := d.queue.FetchUnpublishedForPublish(tx, d.batchSize, d.maxAttempts)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		drained = true
		for _, row := range rows {
			if err := d.dispatch(ctx, tx, row); err != nil {
				return err
			}
		}
		return nil
	})
	return drained, err
}

// dispatch publishes one row and records its outcome. Only repo write
// failures abort the batch; publish failures mark the row and move on.
func (d *Drainer) dispatch(ctx context.Context, tx *gorm.DB, row models.OutboxEvent) error {
	resolved, err := d.decoder.Resolve(row)
	if err != nil {
		return d.deadLetter(ctx, tx, row, enums.OutboxDLQReasonNonRetryable, err, nil)
	}

	fields := drainFields(row, resolved)
	pubErr := d.publishRow(ctx, row, resolved)
	if pubErr == nil {
		if err := d.queue.MarkPublishedTx(tx, row.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", row.ID, err)
		}
		d.logg.Info(d.logg.WithFields(ctx, fields), "outbox event published")
		return nil
	}

	var fatal registry.NonRetryableError
	if errors.As(pubErr, &fatal) {
		return d.deadLetter(ctx, tx, row, enums.OutboxDLQReasonNonRetryable, pubErr, fields)
	}

	attempts := row.AttemptCount + 1
	fields["attempt_count"] = attempts
	if attempts >= d.maxAttempts {
		exhausted := fmt.Errorf("publish attempts exhausted: %w", pubErr)
		return d.deadLetter(ctx, tx, row, enums.OutboxDLQReasonMaxAttempts, exhausted, fields)
	}

	lctx := d.logg.WithField(d.logg.WithFields(ctx, fields), "error", pubErr.Error())
	d.logg.Warn(lctx, "outbox publish failed, will retry")
	if err := d.queue.MarkFailedTx(tx, row.ID, pubErr); err != nil {
		return fmt.Errorf("mark failed %s: %w", row.ID, err)
	}
	return nil
}

func (d *Drainer) publishRow(ctx context.Context, row models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	receipt := d.publish.Publish(pubCtx, brokerMessage(row, resolved))
	if receipt == nil {
		return registry.NewNonRetryableError(errors.New("domain publisher returned no receipt"))
	}
	_, err := receipt.Get(pubCtx)
	return err
}

// deadLetter copies the row into outbox_dlq and marks the source terminal so
// the fetch query stops picking it up.
func (d *Drainer) deadLetter(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error, fields map[string]any) error {
	if fields == nil {
		fields = drainFields(row, nil)
	}
	fields["error_reason"] = reason
	lctx := d.logg.WithField(d.logg.WithFields(ctx, fields), "error", cause.Error())
	d.logg.Warn(lctx, "outbox event moved to dead letters")

	msg := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       row.ID,
		EventType:     row.EventType,
		AggregateType: row.AggregateType,
		AggregateID:   row.AggregateID,
		Payload:       row.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &msg,
		AttemptCount:  row.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if err := d.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("dead letter %s: %w", row.ID, err)
	}
	if err := d.queue.MarkTerminalTx(tx, row.ID, cause, d.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", row.ID, err)
	}
	return nil
}

func (d *Drainer) pause(ctx context.Context, base time.Duration) error {
	if base <= 0 {
		return nil
	}
	wait := base + time.Duration(d.jitter.Int63n(int64(sleepJitter)))
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func doubled(current, ceiling time.Duration) time.Duration {
	next := current * 2
	if next > ceiling {
		return ceiling
	}
	return next
}

func drainFields(row models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      row.ID.String(),
		"event_type":     row.EventType,
		"aggregate_type": row.AggregateType,
		"aggregate_id":   row.AggregateID.String(),
		"attempt_count":  row.AttemptCount,
	}
	if resolved != nil {
		fields["event_id"] = resolved.Envelope.EventID
		fields["occurred_at"] = resolved.Envelope.OccurredAt.Format(time.RFC3339Nano)
		fields["topic"] = resolved.Descriptor.Topic
	}
	if row.LastError != nil {
		fields["last_error"] = *row.LastError
	}
	return fields
}

func brokerMessage(row models.OutboxEvent, resolved *registry.ResolvedEvent) *gcppubsub.Message {
	return &gcppubsub.Message{
		Data: row.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID.String(),
			"created_at":     row.CreatedAt.Format(time.RFC3339Nano),
		},
	}
}

type domainPublisher struct {
	inner *gcppubsub.Publisher
}

func (p domainPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishReceipt {
	result := p.inner.Publish(ctx, msg)
	if result == nil {
		return nil
	}
	return gcpReceipt{inner: result}
}

type gcpReceipt struct {
	inner *gcppubsub.PublishResult
}

func (r gcpReceipt) Get(ctx context.Context) (string, error) {
	return r.inner.Get(ctx)
}
