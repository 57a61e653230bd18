package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/types"
)

// Order represents a scrap pickup or doorstep service request.
//
// CollectorID is null exactly while AssignmentStatus is unassigned; at most one
// collector ever holds the order at a time.
type Order struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequesterID      uuid.UUID              `gorm:"column:requester_id;type:uuid;not null"`
	CollectorID      *uuid.UUID             `gorm:"column:collector_id;type:uuid"`
	ForwardedByID    *uuid.UUID             `gorm:"column:forwarded_by_id;type:uuid"`
	OrderType        enums.OrderType        `gorm:"column:order_type;type:order_type;not null;default:'material'"`
	QuantityType     enums.QuantityType     `gorm:"column:quantity_type;type:quantity_type;not null;default:'small'"`
	Status           enums.OrderStatus      `gorm:"column:status;type:order_status;not null;default:'pending'"`
	AssignmentStatus enums.AssignmentStatus `gorm:"column:assignment_status;type:assignment_status;not null;default:'unassigned'"`
	PaymentStatus    enums.PaymentStatus    `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	Currency         enums.Currency         `gorm:"column:currency;type:text;not null;default:'INR'"`
	TotalWeightKG    float64                `gorm:"column:total_weight_kg;not null;default:0"`
	ServiceFeePaise  int64                  `gorm:"column:service_fee_paise;not null;default:0"`
	TotalAmountPaise int64                  `gorm:"column:total_amount_paise;not null"`
	PickupAddress    string                 `gorm:"column:pickup_address;not null"`
	PickupLocation   *types.GeographyPoint  `gorm:"column:pickup_location;type:geography(Point,4326)"`
	Notes            *string                `gorm:"column:notes"`
	CancelReason     *string                `gorm:"column:cancel_reason"`
	Items            []OrderLineItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Assignments      []OrderAssignment      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	AssignedAt       *time.Time             `gorm:"column:assigned_at"`
	AcceptedAt       *time.Time             `gorm:"column:accepted_at"`
	CompletedAt      *time.Time             `gorm:"column:completed_at"`
	CancelledAt      *time.Time             `gorm:"column:cancelled_at"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
