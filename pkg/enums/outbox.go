package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder             OutboxAggregateType = "order"
	AggregateWalletTransaction OutboxAggregateType = "wallet_transaction"
	AggregatePayoutRequest     OutboxAggregateType = "payout_request"
	AggregateCoupon            OutboxAggregateType = "coupon"
	AggregateNotification      OutboxAggregateType = "notification"
)

var aggregateTypes = map[OutboxAggregateType]struct{}{
	AggregateOrder:             {},
	AggregateWalletTransaction: {},
	AggregatePayoutRequest:     {},
	AggregateCoupon:            {},
	AggregateNotification:      {},
}

func (a OutboxAggregateType) IsValid() bool {
	_, ok := aggregateTypes[a]
	return ok
}

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	parsed := OutboxAggregateType(value)
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid aggregate type %q", value)
	}
	return parsed, nil
}

// OutboxEventType maps to the event_type enum in Postgres. Adding a value
// here requires a migration extending the enum and a schema entry in the
// event registry.
type OutboxEventType string

const (
	EventOrderCreated          OutboxEventType = "order_created"
	EventOrderClaimed          OutboxEventType = "order_claimed"
	EventOrderForwarded        OutboxEventType = "order_forwarded"
	EventOrderStatusChanged    OutboxEventType = "order_status_changed"
	EventOrderCompleted        OutboxEventType = "order_completed"
	EventOrderCancelled        OutboxEventType = "order_cancelled"
	EventWalletRecharged       OutboxEventType = "wallet_recharged"
	EventOrderSettled          OutboxEventType = "order_settled"
	EventPayoutRequested       OutboxEventType = "payout_requested"
	EventCouponRedeemed        OutboxEventType = "coupon_redeemed"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var outboxEventTypes = map[OutboxEventType]struct{}{
	EventOrderCreated:          {},
	EventOrderClaimed:          {},
	EventOrderForwarded:        {},
	EventOrderStatusChanged:    {},
	EventOrderCompleted:        {},
	EventOrderCancelled:        {},
	EventWalletRecharged:       {},
	EventOrderSettled:          {},
	EventPayoutRequested:       {},
	EventCouponRedeemed:        {},
	EventNotificationRequested: {},
}

func (e OutboxEventType) IsValid() bool {
	_, ok := outboxEventTypes[e]
	return ok
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	parsed := OutboxEventType(value)
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid event type %q", value)
	}
	return parsed, nil
}
