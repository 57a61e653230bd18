package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/pkg/logger"
)

const (
	outboxRetentionDays       = 30
	outboxMinAttempts         = 5
	notificationRetentionDays = 30
)

// purgeJob deletes rows older than a retention cutoff inside one
// transaction. Both retention jobs are instances of it with their own
// delete statement.
type purgeJob struct {
	name          string
	logg          *logger.Logger
	db            txRunner
	retentionDays int
	fields        map[string]any
	purge         func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
	now           func() time.Time
}

func (j *purgeJob) Name() string { return j.name }

func (j *purgeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retentionDays) * 24 * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.purge(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}

	fields := map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retentionDays,
		"rows_deleted":   deleted,
	}
	for k, v := range j.fields {
		fields[k] = v
	}
	j.logg.Info(j.logg.WithFields(ctx, fields), j.name+" complete")
	return nil
}

type OutboxRetentionJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Repository  outboxRetentionRepo
	Retention   int
	MinAttempts int
}

type outboxRetentionRepo interface {
	DeletePublishedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttemptCount int) (int64, error)
}

// NewOutboxRetentionJob prunes published outbox rows past the retention
// window. Rows below MinAttempts that never published are left for the
// drainer to keep retrying.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if err := checkPurgeParams(params.Logger, params.DB, params.Repository == nil); err != nil {
		return nil, err
	}
	retention := params.Retention
	if retention <= 0 {
		retention = outboxRetentionDays
	}
	minAttempts := params.MinAttempts
	if minAttempts <= 0 {
		minAttempts = outboxMinAttempts
	}
	return &purgeJob{
		name:          "outbox-retention",
		logg:          params.Logger,
		db:            params.DB,
		retentionDays: retention,
		fields:        map[string]any{"min_attempts": minAttempts},
		purge: func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
			return params.Repository.DeletePublishedBefore(ctx, tx, cutoff, minAttempts)
		},
		now: time.Now,
	}, nil
}

type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository notificationsCleanupRepo
	Retention  int
}

type notificationsCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NewNotificationCleanupJob prunes read notifications past the retention
// window.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if err := checkPurgeParams(params.Logger, params.DB, params.Repository == nil); err != nil {
		return nil, err
	}
	retention := params.Retention
	if retention <= 0 {
		retention = notificationRetentionDays
	}
	return &purgeJob{
		name:          "notification-cleanup",
		logg:          params.Logger,
		db:            params.DB,
		retentionDays: retention,
		purge:         params.Repository.DeleteOlderThan,
		now:           time.Now,
	}, nil
}

func checkPurgeParams(logg *logger.Logger, db txRunner, repoMissing bool) error {
	if logg == nil {
		return errors.New("logger required")
	}
	if db == nil {
		return errors.New("db runner required")
	}
	if repoMissing {
		return errors.New("repository required")
	}
	return nil
}
