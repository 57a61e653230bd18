package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
)

// Repository defines persistence operations for coupons and their usage rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, coupon *models.Coupon) error
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	LockByCode(ctx context.Context, code string) (*models.Coupon, error)
	ListActive(ctx context.Context, now time.Time, owner enums.OwnerType) ([]models.Coupon, error)
	FindUsagesForOwner(ctx context.Context, couponIDs []uuid.UUID, ownerType enums.OwnerType, ownerID uuid.UUID) ([]models.CouponUsage, error)
	CreateUsage(ctx context.Context, usage *models.CouponUsage) error
	IncrementUsedCount(ctx context.Context, couponID uuid.UUID, enforceLimit bool) (bool, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	DeactivateExhausted(ctx context.Context) (int64, error)
}
