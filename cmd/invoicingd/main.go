package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/LoganSeven/publik-famille-demo-sub017/internal/clients"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/core/services"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/jobs"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/platform/config"
	"github.com/LoganSeven/publik-famille-demo-sub017/internal/repositories/database/pgsql"
	"github.com/LoganSeven/publik-famille-demo-sub017/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(
		cfg,
		repos,
		clients.NewPricingClient(cfg),
		clients.NewPayersClient(cfg),
		clients.NewBookingsClient(cfg),
	)

	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Concurrency: cfg.CampaignConcurrency,
		Logger:      logger,
		Services:    serviceContainer,
		Repos:       repos,
	})

	logger.Info("Starting campaign worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Worker shut down.")
}
