package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a coupons repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) LockByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) ListActive(ctx context.Context, now time.Time, owner enums.OwnerType) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("valid_from <= ? AND valid_to >= ?", now, now).
		Where("applicable_role IN ?", []enums.CouponRole{enums.CouponRoleAll, enums.CouponRole(owner)}).
		Order("created_at DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *repository) FindUsagesForOwner(ctx context.Context, couponIDs []uuid.UUID, ownerType enums.OwnerType, ownerID uuid.UUID) ([]models.CouponUsage, error) {
	if len(couponIDs) == 0 {
		return nil, nil
	}
	var usages []models.CouponUsage
	err := r.db.WithContext(ctx).
		Where("coupon_id IN ?", couponIDs).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Find(&usages).Error
	if err != nil {
		return nil, err
	}
	return usages, nil
}

func (r *repository) CreateUsage(ctx context.Context, usage *models.CouponUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

// IncrementUsedCount bumps the redemption counter. With enforceLimit the
// update is predicated on used_count staying below usage_limit; a false
// result means the cap was already reached.
func (r *repository) IncrementUsedCount(ctx context.Context, couponID uuid.UUID, enforceLimit bool) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ?", couponID)
	if enforceLimit {
		query = query.Where("used_count < usage_limit")
	}
	result := query.Update("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("active = ?", true).
		Where("valid_to < ?", now).
		Update("active", false)
	return result.RowsAffected, result.Error
}

func (r *repository) DeactivateExhausted(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("active = ?", true).
		Where("usage_type = ?", enums.CouponUsageTypeLimited).
		Where("used_count >= usage_limit").
		Update("active", false)
	return result.RowsAffected, result.Error
}
