package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CouponLifecycleJobParams configures the scheduled coupon work.
type CouponLifecycleJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository couponLifecycleRepo
}

type couponLifecycleRepo interface {
	DeactivateExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
	DeactivateExhausted(ctx context.Context, tx *gorm.DB) (int64, error)
}

// NewCouponLifecycleJob constructs the coupon lifecycle cron job.
func NewCouponLifecycleJob(params CouponLifecycleJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &couponLifecycleJob{
		logg: params.Logger,
		db:   params.DB,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type couponLifecycleJob struct {
	logg *logger.Logger
	db   txRunner
	repo couponLifecycleRepo
	now  func() time.Time
}

func (j *couponLifecycleJob) Name() string { return "coupon-lifecycle" }

func (j *couponLifecycleJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.deactivateExpired(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.deactivateExhausted(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *couponLifecycleJob) deactivateExpired(ctx context.Context) error {
	now := j.now().UTC()
	var count int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeactivateExpired(ctx, tx, now)
		if err != nil {
			return err
		}
		count = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("deactivate expired coupons: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "expired coupon sweep complete")
	return nil
}

func (j *couponLifecycleJob) deactivateExhausted(ctx context.Context) error {
	var count int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeactivateExhausted(ctx, tx)
		if err != nil {
			return err
		}
		count = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("deactivate exhausted coupons: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "exhausted coupon sweep complete")
	return nil
}
