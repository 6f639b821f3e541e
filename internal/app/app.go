// Package app holds the process bootstrap shared by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/segyhp/payment-tracker/internal/config"
	"github.com/segyhp/payment-tracker/internal/repository"
	"github.com/segyhp/payment-tracker/internal/repository/mongostore"
	"github.com/segyhp/payment-tracker/pkg/logger"
)

// NewLogger builds the process logger and installs it as zap's global.
func NewLogger(cfg *config.Config) *zap.Logger {
	log := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.IsDevelopment(),
	})
	zap.ReplaceGlobals(log)
	return log
}

// OpenStore connects the configured backend and makes sure its schema exists.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Store, error) {
	var store *repository.Store

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
		store = repository.NewPostgresStore(db)

	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		store = mongostore.NewStore(client, cfg.Mongo.Database)

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close(context.Background())
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}

	log.Info("store ready", zap.String("driver", cfg.Store.Driver))
	return store, nil
}

// NewRedis returns a client when Redis is configured, or nil.
func NewRedis(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled() {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
