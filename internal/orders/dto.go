package orders

import (
	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// LineItemInput is one scrap category on a material order request.
type LineItemInput struct {
	Category  string
	WeightKG  float64
	RatePaise int64
}

// CreateOrderInput captures everything a requester submits for a new order.
type CreateOrderInput struct {
	RequesterID     uuid.UUID
	OrderType       enums.OrderType
	QuantityType    *enums.QuantityType
	Items           []LineItemInput
	ServiceFeePaise int64
	PickupAddress   string
	PickupLat       *float64
	PickupLng       *float64
	Notes           *string
}

// Actor identifies the authenticated caller for order mutations.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

// UpdateStatusInput moves an order along its lifecycle.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
	Actor   Actor
}

// CancelInput aborts a non-terminal order.
type CancelInput struct {
	OrderID uuid.UUID
	Actor   Actor
	Reason  *string
}

// ForwardInput escalates a held order to the large-collector tier.
type ForwardInput struct {
	OrderID     uuid.UUID
	CollectorID uuid.UUID
	Note        *string
}

// OrderList wraps a page of orders plus the next cursor.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
