package payloads

import (
	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// OrderCreatedEvent announces a freshly posted order to its collector tier.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID          `json:"order_id"`
	RequesterID      uuid.UUID          `json:"requester_id"`
	OrderType        enums.OrderType    `json:"order_type"`
	QuantityType     enums.QuantityType `json:"quantity_type"`
	TotalAmountPaise int64              `json:"total_amount_paise"`
	TotalWeightKG    float64            `json:"total_weight_kg"`
	PickupAddress    string             `json:"pickup_address"`
}

// OrderClaimedEvent is emitted when a collector wins the claim.
type OrderClaimedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	RequesterID uuid.UUID `json:"requester_id"`
	CollectorID uuid.UUID `json:"collector_id"`
}

// OrderForwardedEvent is emitted when a holder escalates to the large tier.
type OrderForwardedEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	RequesterID   uuid.UUID `json:"requester_id"`
	ForwardedByID uuid.UUID `json:"forwarded_by_id"`
}

// OrderStatusChangedEvent reports non-terminal lifecycle moves.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	RequesterID uuid.UUID         `json:"requester_id"`
	CollectorID *uuid.UUID        `json:"collector_id,omitempty"`
	From        enums.OrderStatus `json:"from"`
	To          enums.OrderStatus `json:"to"`
}

// OrderCompletedEvent carries the settlement summary alongside the terminal
// transition.
type OrderCompletedEvent struct {
	OrderID          uuid.UUID       `json:"order_id"`
	RequesterID      uuid.UUID       `json:"requester_id"`
	CollectorID      uuid.UUID       `json:"collector_id"`
	OrderType        enums.OrderType `json:"order_type"`
	TotalAmountPaise int64           `json:"total_amount_paise"`
	CommissionPaise  int64           `json:"commission_paise"`
}

// OrderCancelledEvent is emitted on the cancelled terminal transition.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID  `json:"order_id"`
	RequesterID uuid.UUID  `json:"requester_id"`
	CollectorID *uuid.UUID `json:"collector_id,omitempty"`
	Reason      *string    `json:"reason,omitempty"`
}

// WalletRechargedEvent is emitted after an external payment credits a wallet.
type WalletRechargedEvent struct {
	TransactionID     uuid.UUID       `json:"transaction_id"`
	OwnerType         enums.OwnerType `json:"owner_type"`
	OwnerID           uuid.UUID       `json:"owner_id"`
	AmountPaise       int64           `json:"amount_paise"`
	ExternalPaymentID string          `json:"external_payment_id"`
}

// OrderSettledEvent reports the ledger legs recorded for a completed order.
type OrderSettledEvent struct {
	OrderID         uuid.UUID       `json:"order_id"`
	OrderType       enums.OrderType `json:"order_type"`
	RequesterID     uuid.UUID       `json:"requester_id"`
	CollectorID     uuid.UUID       `json:"collector_id"`
	AmountPaise     int64           `json:"amount_paise"`
	CommissionPaise int64           `json:"commission_paise"`
}

// PayoutRequestedEvent is emitted when a withdrawal opens a payout request.
type PayoutRequestedEvent struct {
	PayoutRequestID uuid.UUID       `json:"payout_request_id"`
	OwnerType       enums.OwnerType `json:"owner_type"`
	OwnerID         uuid.UUID       `json:"owner_id"`
	AmountPaise     int64           `json:"amount_paise"`
}

// CouponRedeemedEvent is emitted once per (coupon, wallet owner) redemption.
type CouponRedeemedEvent struct {
	CouponID    uuid.UUID       `json:"coupon_id"`
	Code        string          `json:"code"`
	OwnerType   enums.OwnerType `json:"owner_type"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	AmountPaise int64           `json:"amount_paise"`
}

// NotificationRequestedEvent tells downstream systems to alert a user.
type NotificationRequestedEvent struct {
	OwnerType enums.OwnerType        `json:"owner_type"`
	OwnerID   uuid.UUID              `json:"owner_id"`
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	OrderID   *uuid.UUID             `json:"order_id,omitempty"`
}
