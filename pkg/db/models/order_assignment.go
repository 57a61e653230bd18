package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// OrderAssignment is the append-only claim history for an order. One row per
// claim, forward, or release.
type OrderAssignment struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID              `gorm:"column:order_id;type:uuid;not null"`
	CollectorID uuid.UUID              `gorm:"column:collector_id;type:uuid;not null"`
	Status      enums.AssignmentStatus `gorm:"column:status;type:assignment_status;not null"`
	Note        *string                `gorm:"column:note"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
