package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/segyhp/payment-tracker/internal/app"
	"github.com/segyhp/payment-tracker/internal/config"
	"github.com/segyhp/payment-tracker/internal/handler"
	"github.com/segyhp/payment-tracker/internal/service"
	"github.com/segyhp/payment-tracker/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(cfg)
	defer logger.Sync()

	// Initialize store
	store, err := app.OpenStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer store.Close(context.Background())

	// Redis only backs the readiness check here; the scheduler holds the sweep lock.
	var redisCheck redis.Cmdable
	if redisClient := app.NewRedis(cfg); redisClient != nil {
		defer redisClient.Close()
		redisCheck = redisClient
	}

	opts := service.Options{
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
		MaxUploadSize:   cfg.Upload.MaxSize,
	}
	if cfg.Scheduler.SweepMode == config.SweepScheduled {
		opts.Sweeper = service.NoopSweeper
	}

	paymentService := service.NewPaymentService(store, opts)
	paymentHandler := handler.NewPaymentHandler(paymentService, logger, cfg.Upload.MaxSize)
	healthHandler := handler.NewHealthHandler(store.Ping, redisCheck)

	router := setupRoutes(paymentHandler, healthHandler, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("sweep_mode", cfg.Scheduler.SweepMode),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server exited")
}

func setupRoutes(paymentHandler *handler.PaymentHandler, healthHandler *handler.HealthHandler, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods(http.MethodGet)

	// API routes
	paymentHandler.RegisterRoutes(router.PathPrefix("/api/v1").Subrouter())

	return router
}
