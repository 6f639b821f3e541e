package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/payment-tracker/internal/app"
	"github.com/segyhp/payment-tracker/internal/config"
	"github.com/segyhp/payment-tracker/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(cfg)
	defer logger.Sync()

	logger.Info("starting due-date scheduler")

	store, err := app.OpenStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer store.Close(context.Background())

	engine := service.NewStatusEngine(store.Payments, store.Evidence)
	var sweeper service.Sweeper = service.SweepFunc(engine.SweepDueStatuses)

	if redisClient := app.NewRedis(cfg); redisClient != nil {
		defer redisClient.Close()
		sweeper = service.NewLockedSweeper(redisClient, sweeper, cfg.Scheduler.LockTTL)
		logger.Info("sweep lock enabled", zap.String("redis", cfg.Redis.Addr()))
	}

	c := cron.New(cron.WithSeconds())

	if _, err := c.AddFunc(cfg.Scheduler.Cron, func() {
		runSweep(sweeper, cfg.Scheduler.LockTTL, logger)
	}); err != nil {
		logger.Fatal("failed to schedule sweep job", zap.String("cron", cfg.Scheduler.Cron), zap.Error(err))
	}

	c.Start()
	logger.Info("scheduler started", zap.String("cron", cfg.Scheduler.Cron))

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}

// runSweep bounds one sweep by the lock TTL so a stuck store cannot outlive the lock.
func runSweep(sweeper service.Sweeper, timeout time.Duration, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	changed, err := sweeper.Sweep(ctx, time.Now().UTC())
	switch {
	case errors.Is(err, service.ErrLockHeld):
		logger.Info("sweep skipped, another scheduler holds the lock")
	case err != nil:
		logger.Error("due-date sweep failed", zap.Error(err))
	default:
		logger.Info("due-date sweep finished",
			zap.Int("changed", changed),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
