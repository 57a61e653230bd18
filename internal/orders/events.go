package orders

import (
	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// OrderCreatedEvent fans out to collectors of the order's tier.
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
