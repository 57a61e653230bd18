package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/pkg/logger"
)

func TestCouponLifecycleJobSweepsExpiredAndExhausted(t *testing.T) {
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	repo := &fakeCouponLifecycleRepo{expiredRows: 3, exhaustedRows: 2}
	job := newCouponLifecycleJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !repo.lastNow.Equal(now) {
		t.Fatalf("expected sweep time %s, got %s", now, repo.lastNow)
	}
	if repo.expiredCalls != 1 || repo.exhaustedCalls != 1 {
		t.Fatalf("expected both sweeps to run once, got %d and %d", repo.expiredCalls, repo.exhaustedCalls)
	}
}

func TestCouponLifecycleJobRunsSecondPhaseAfterFirstFails(t *testing.T) {
	repo := &fakeCouponLifecycleRepo{expiredErr: errors.New("boom")}
	job := newCouponLifecycleJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if repo.exhaustedCalls != 1 {
		t.Fatalf("expected exhausted sweep to run despite expired failure, got %d calls", repo.exhaustedCalls)
	}
}

func newCouponLifecycleJob(t *testing.T, repo *fakeCouponLifecycleRepo) *couponLifecycleJob {
	t.Helper()
	jobIface, err := NewCouponLifecycleJob(CouponLifecycleJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         couponFakeTxRunner{},
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewCouponLifecycleJob: %v", err)
	}
	job, ok := jobIface.(*couponLifecycleJob)
	if !ok {
		t.Fatalf("expected couponLifecycleJob, got %T", jobIface)
	}
	return job
}

type fakeCouponLifecycleRepo struct {
	lastNow        time.Time
	expiredRows    int64
	exhaustedRows  int64
	expiredErr     error
	exhaustedErr   error
	expiredCalls   int
	exhaustedCalls int
}

func (f *fakeCouponLifecycleRepo) DeactivateExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	f.expiredCalls++
	f.lastNow = now
	if f.expiredErr != nil {
		return 0, f.expiredErr
	}
	return f.expiredRows, nil
}

func (f *fakeCouponLifecycleRepo) DeactivateExhausted(ctx context.Context, tx *gorm.DB) (int64, error) {
	f.exhaustedCalls++
	if f.exhaustedErr != nil {
		return 0, f.exhaustedErr
	}
	return f.exhaustedRows, nil
}

type couponFakeTxRunner struct{}

func (couponFakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
