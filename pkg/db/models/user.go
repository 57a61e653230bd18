package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// User represents the canonical identity entity. Authentication happens
// upstream; this row carries the marketplace role a JWT subject acts under.
type User struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string          `gorm:"type:text;not null;uniqueIndex"`
	FirstName string          `gorm:"column:first_name;not null"`
	LastName  string          `gorm:"column:last_name;not null"`
	Phone     *string         `gorm:"column:phone"`
	Role      enums.ActorRole `gorm:"column:role;type:actor_role;not null"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
