package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// CouponUsage pins one redemption per identity per coupon. The unique index
// over (coupon_id, owner_type, owner_id) is the idempotency backstop.
type CouponUsage struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CouponID            uuid.UUID       `gorm:"column:coupon_id;type:uuid;not null;uniqueIndex:idx_coupon_usages_identity"`
	OwnerType           enums.OwnerType `gorm:"column:owner_type;type:owner_type;not null;uniqueIndex:idx_coupon_usages_identity"`
	OwnerID             uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:idx_coupon_usages_identity"`
	WalletTransactionID uuid.UUID       `gorm:"column:wallet_transaction_id;type:uuid;not null"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
}
