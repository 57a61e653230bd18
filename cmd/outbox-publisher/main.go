package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/db"
	"github.com/scraploop/scraploop-backend/pkg/logger"
	"github.com/scraploop/scraploop-backend/pkg/migrate"
	"github.com/scraploop/scraploop-backend/pkg/outbox"
	"github.com/scraploop/scraploop-backend/pkg/outbox/registry"
	"github.com/scraploop/scraploop-backend/pkg/pubsub"
)

func main() {
	bootCtx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "outbox-publisher"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(bootCtx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(bootCtx, "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "outbox-publisher"

	logg = logger.New(logger.Options{
		ServiceName: "outbox-publisher",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		logg.Error(bootCtx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(bootCtx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		logg.Error(bootCtx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	broker, err := pubsub.NewClient(bootCtx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(bootCtx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := broker.Close(); err != nil {
			logg.Error(bootCtx, "error closing pubsub client", err)
		}
	}()

	decoder, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		logg.Error(bootCtx, "failed to build event registry", err)
		os.Exit(1)
	}

	drainer, err := NewDrainer(DrainerParams{
		Config:  cfg,
		Logger:  logg,
		DB:      dbClient,
		Broker:  broker,
		Queue:   outbox.NewRepository(dbClient.DB()),
		Decoder: decoder,
		DLQ:     outbox.NewDLQRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(bootCtx, "failed to create outbox drainer", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(bootCtx, os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "outbox-publisher",
	})
	logg.Info(ctx, "starting outbox drainer")

	if err := drainer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox drainer stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "outbox drainer shutting down gracefully")
}
