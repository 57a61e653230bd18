package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// Coupon is a promotional wallet credit. Codes are stored upper-cased and
// matched case-insensitively.
type Coupon struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code           string                `gorm:"column:code;not null;uniqueIndex:idx_coupons_code"`
	Description    *string               `gorm:"column:description"`
	AmountPaise    int64                 `gorm:"column:amount_paise;not null"`
	ApplicableRole enums.CouponRole      `gorm:"column:applicable_role;type:coupon_role;not null;default:'all'"`
	UsageType      enums.CouponUsageType `gorm:"column:usage_type;type:coupon_usage_type;not null"`
	UsageLimit     int                   `gorm:"column:usage_limit;not null;default:0"`
	UsedCount      int                   `gorm:"column:used_count;not null;default:0"`
	ValidFrom      time.Time             `gorm:"column:valid_from;not null"`
	ValidTo        time.Time             `gorm:"column:valid_to;not null"`
	Active         bool                  `gorm:"column:active;not null;default:true"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
