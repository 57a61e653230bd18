package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/internal/coupons"
	"github.com/scraploop/scraploop-backend/internal/cron"
	"github.com/scraploop/scraploop-backend/internal/notifications"
	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/db"
	"github.com/scraploop/scraploop-backend/pkg/logger"
	"github.com/scraploop/scraploop-backend/pkg/metrics"
	"github.com/scraploop/scraploop-backend/pkg/migrate"
	"github.com/scraploop/scraploop-backend/pkg/outbox"
	"github.com/scraploop/scraploop-backend/pkg/redis"
)

const lockKeyFormat = "sl:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	metricsCollector := metrics.NewJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	outboxJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outbox.NewRepository(dbClient.DB()),
		Retention:  retentionDays(cfg.Cron.OutboxRetention),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	notificationJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notificationCleanupRepo{repo: notifications.NewRepository(dbClient.DB())},
		Retention:  retentionDays(cfg.Cron.NotificationRetention),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	couponJob, err := cron.NewCouponLifecycleJob(cron.CouponLifecycleJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: couponLifecycleRepo{repo: coupons.NewRepository(dbClient.DB())},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon lifecycle job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(outboxJob, notificationJob, couponJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.TickInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}

func retentionDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}

// notificationCleanupRepo rebinds the notifications repository onto the job's
// transaction before pruning.
type notificationCleanupRepo struct {
	repo notifications.Repository
}

func (a notificationCleanupRepo) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	return a.repo.WithTx(tx).DeleteReadOlderThan(ctx, cutoff)
}

// couponLifecycleRepo rebinds the coupons repository onto the job's transaction.
type couponLifecycleRepo struct {
	repo coupons.Repository
}

func (a couponLifecycleRepo) DeactivateExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	return a.repo.WithTx(tx).DeactivateExpired(ctx, now)
}

func (a couponLifecycleRepo) DeactivateExhausted(ctx context.Context, tx *gorm.DB) (int64, error) {
	return a.repo.WithTx(tx).DeactivateExhausted(ctx)
}
