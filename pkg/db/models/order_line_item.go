package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem captures one scrap category within a material order.
type OrderLineItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	Category   string    `gorm:"column:category;not null"`
	WeightKG   float64   `gorm:"column:weight_kg;not null"`
	RatePaise  int64     `gorm:"column:rate_paise;not null"`
	TotalPaise int64     `gorm:"column:total_paise;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
