package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/logger"
	"github.com/scraploop/scraploop-backend/pkg/outbox"
	"github.com/scraploop/scraploop-backend/pkg/outbox/idempotency"
	"github.com/scraploop/scraploop-backend/pkg/outbox/payloads"
)

const domainNotificationConsumer = "domain-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches domain events and turns lifecycle transitions into
// in-app notification rows.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	guard        *idempotency.Guard
	logg         *logger.Logger
}

// NewConsumer builds a domain notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, guard *idempotency.Guard, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		guard:        guard,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if !c.handles(eventType) {
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	first, err := c.guard.Claim(ctx, domainNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if !first {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handlePayload(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.guard.Release(ctx, domainNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) handles(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventOrderClaimed,
		enums.EventOrderForwarded,
		enums.EventOrderCompleted,
		enums.EventOrderCancelled,
		enums.EventWalletRecharged,
		enums.EventPayoutRequested,
		enums.EventCouponRedeemed:
		return true
	default:
		return false
	}
}

func (c *Consumer) handlePayload(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventOrderClaimed:
		var payload payloads.OrderClaimedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyOrderClaimed(ctx, payload, logCtx)
	case enums.EventOrderForwarded:
		var payload payloads.OrderForwardedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyOrderForwarded(ctx, payload, logCtx)
	case enums.EventOrderCompleted:
		var payload payloads.OrderCompletedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyOrderCompleted(ctx, payload, logCtx)
	case enums.EventOrderCancelled:
		var payload payloads.OrderCancelledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyOrderCancelled(ctx, payload, logCtx)
	case enums.EventWalletRecharged:
		var payload payloads.WalletRechargedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyWalletRecharged(ctx, payload, logCtx)
	case enums.EventPayoutRequested:
		var payload payloads.PayoutRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyPayoutRequested(ctx, payload, logCtx)
	case enums.EventCouponRedeemed:
		var payload payloads.CouponRedeemedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyCouponRedeemed(ctx, payload, logCtx)
	default:
		c.logg.Info(logCtx, "event not handled")
		return nil
	}
}

func (c *Consumer) notifyOrderClaimed(ctx context.Context, payload payloads.OrderClaimedEvent, logCtx context.Context) error {
	if payload.RequesterID == uuid.Nil {
		return fmt.Errorf("requester id missing")
	}
	notification := &models.Notification{
		OwnerType: enums.OwnerTypeRequester,
		OwnerID:   payload.RequesterID,
		Type:      enums.NotificationTypeOrderAlert,
		Title:     "Pickup accepted",
		Message:   "A collector accepted your pickup request and will be in touch.",
		Link:      orderLink(payload.OrderID),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "requester notified of claim")
	return nil
}

func (c *Consumer) notifyOrderForwarded(ctx context.Context, payload payloads.OrderForwardedEvent, logCtx context.Context) error {
	if payload.RequesterID == uuid.Nil {
		return fmt.Errorf("requester id missing")
	}
	notification := &models.Notification{
		OwnerType: enums.OwnerTypeRequester,
		OwnerID:   payload.RequesterID,
		Type:      enums.NotificationTypeOrderAlert,
		Title:     "Pickup escalated",
		Message:   "Your pickup was handed over to a large-scale collector and is awaiting a new claim.",
		Link:      orderLink(payload.OrderID),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "requester notified of forward")
	return nil
}

func (c *Consumer) notifyOrderCompleted(ctx context.Context, payload payloads.OrderCompletedEvent, logCtx context.Context) error {
	if payload.RequesterID == uuid.Nil || payload.CollectorID == uuid.Nil {
		return fmt.Errorf("participant ids missing")
	}
	for _, notification := range []*models.Notification{
		{
			OwnerType: enums.OwnerTypeRequester,
			OwnerID:   payload.RequesterID,
			Type:      enums.NotificationTypeOrderAlert,
			Title:     "Pickup completed",
			Message:   fmt.Sprintf("Your pickup finished and the wallet settlement of %s went through.", formatPaise(payload.TotalAmountPaise)),
			Link:      orderLink(payload.OrderID),
		},
		{
			OwnerType: enums.OwnerTypeCollector,
			OwnerID:   payload.CollectorID,
			Type:      enums.NotificationTypeWalletAlert,
			Title:     "Settlement recorded",
			Message:   fmt.Sprintf("Order settled for %s with a commission of %s.", formatPaise(payload.TotalAmountPaise), formatPaise(payload.CommissionPaise)),
			Link:      orderLink(payload.OrderID),
		},
	} {
		if err := c.repo.Create(ctx, notification); err != nil {
			return err
		}
	}
	c.logg.Info(logCtx, "participants notified of completion")
	return nil
}

func (c *Consumer) notifyOrderCancelled(ctx context.Context, payload payloads.OrderCancelledEvent, logCtx context.Context) error {
	if payload.RequesterID == uuid.Nil {
		return fmt.Errorf("requester id missing")
	}
	message := "Your pickup request was cancelled."
	if payload.Reason != nil && *payload.Reason != "" {
		message = fmt.Sprintf("Your pickup request was cancelled: %s", *payload.Reason)
	}
	notification := &models.Notification{
		OwnerType: enums.OwnerTypeRequester,
		OwnerID:   payload.RequesterID,
		Type:      enums.NotificationTypeOrderAlert,
		Title:     "Pickup cancelled",
		Message:   message,
		Link:      orderLink(payload.OrderID),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	if payload.CollectorID != nil && *payload.CollectorID != uuid.Nil {
		collectorNote := &models.Notification{
			OwnerType: enums.OwnerTypeCollector,
			OwnerID:   *payload.CollectorID,
			Type:      enums.NotificationTypeOrderAlert,
			Title:     "Pickup cancelled",
			Message:   "An order you were assigned to has been cancelled.",
			Link:      orderLink(payload.OrderID),
		}
		if err := c.repo.Create(ctx, collectorNote); err != nil {
			return err
		}
	}
	c.logg.Info(logCtx, "participants notified of cancellation")
	return nil
}

func (c *Consumer) notifyWalletRecharged(ctx context.Context, payload payloads.WalletRechargedEvent, logCtx context.Context) error {
	if payload.OwnerID == uuid.Nil {
		return fmt.Errorf("owner id missing")
	}
	notification := &models.Notification{
		OwnerType: payload.OwnerType,
		OwnerID:   payload.OwnerID,
		Type:      enums.NotificationTypeWalletAlert,
		Title:     "Wallet recharged",
		Message:   fmt.Sprintf("Your wallet was credited with %s.", formatPaise(payload.AmountPaise)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "owner notified of recharge")
	return nil
}

func (c *Consumer) notifyPayoutRequested(ctx context.Context, payload payloads.PayoutRequestedEvent, logCtx context.Context) error {
	if payload.OwnerID == uuid.Nil {
		return fmt.Errorf("owner id missing")
	}
	notification := &models.Notification{
		OwnerType: payload.OwnerType,
		OwnerID:   payload.OwnerID,
		Type:      enums.NotificationTypePayoutAlert,
		Title:     "Withdrawal requested",
		Message:   fmt.Sprintf("Your withdrawal of %s is pending review.", formatPaise(payload.AmountPaise)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "owner notified of payout request")
	return nil
}

func (c *Consumer) notifyCouponRedeemed(ctx context.Context, payload payloads.CouponRedeemedEvent, logCtx context.Context) error {
	if payload.OwnerID == uuid.Nil {
		return fmt.Errorf("owner id missing")
	}
	notification := &models.Notification{
		OwnerType: payload.OwnerType,
		OwnerID:   payload.OwnerID,
		Type:      enums.NotificationTypeWalletAlert,
		Title:     "Coupon applied",
		Message:   fmt.Sprintf("Coupon %s credited %s to your wallet.", payload.Code, formatPaise(payload.AmountPaise)),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "owner notified of coupon credit")
	return nil
}

func orderLink(orderID uuid.UUID) *string {
	link := fmt.Sprintf("/orders/%s", orderID)
	return &link
}

func formatPaise(amount int64) string {
	rupees := amount / 100
	paise := amount % 100
	if paise < 0 {
		paise = -paise
	}
	return fmt.Sprintf("₹%d.%02d", rupees, paise)
}
