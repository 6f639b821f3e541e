package config

import (
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Sweep modes
const (
	// SweepOnRead runs the due-date sweep before every listing.
	SweepOnRead = "on_read"
	// SweepScheduled leaves the sweep to the scheduler process.
	SweepScheduled = "scheduled"
)

// Config holds all configuration for our application
type Config struct {
	Server     ServerConfig     `mapstructure:",squash"`
	Store      StoreConfig      `mapstructure:",squash"`
	Database   DatabaseConfig   `mapstructure:",squash"`
	Mongo      MongoConfig      `mapstructure:",squash"`
	Redis      RedisConfig      `mapstructure:",squash"`
	Scheduler  SchedulerConfig  `mapstructure:",squash"`
	Logging    LoggingConfig    `mapstructure:",squash"`
	Import     ImportConfig     `mapstructure:",squash"`
	Upload     UploadConfig     `mapstructure:",squash"`
	Pagination PaginationConfig `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type StoreConfig struct {
	Driver string `mapstructure:"STORE_DRIVER"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type MongoConfig struct {
	URI      string `mapstructure:"MONGO_URI"`
	Database string `mapstructure:"MONGO_DATABASE"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	SweepMode string        `mapstructure:"SWEEP_MODE"`
	Cron      string        `mapstructure:"SCHEDULER_CRON"`
	LockTTL   time.Duration `mapstructure:"SCHEDULER_LOCK_TTL"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type ImportConfig struct {
	ValidationMode string        `mapstructure:"IMPORT_VALIDATION_MODE"`
	EncryptionKey  string        `mapstructure:"ENCRYPTION_KEY"`
	TokenTTL       time.Duration `mapstructure:"IMPORT_TOKEN_TTL"`
}

type UploadConfig struct {
	MaxSize int64 `mapstructure:"MAX_UPLOAD_SIZE"`
}

type PaginationConfig struct {
	DefaultPageSize int `mapstructure:"DEFAULT_PAGE_SIZE"`
	MaxPageSize     int `mapstructure:"MAX_PAGE_SIZE"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":                "8080",
	"SERVER_HOST":                "0.0.0.0",
	"ENV":                        "development",
	"SERVER_READ_TIMEOUT":        "15s",
	"SERVER_WRITE_TIMEOUT":       "15s",
	"STORE_DRIVER":               DriverPostgres,
	"DATABASE_URL":               "",
	"DATABASE_MAX_OPEN_CONNS":    25,
	"DATABASE_MAX_IDLE_CONNS":    5,
	"DATABASE_CONN_MAX_LIFETIME": "5m",
	"MONGO_URI":                  "",
	"MONGO_DATABASE":             "payment_db",
	"REDIS_HOST":                 "",
	"REDIS_PORT":                 "6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"SWEEP_MODE":                 SweepOnRead,
	"SCHEDULER_CRON":             "0 */5 * * * *",
	"SCHEDULER_LOCK_TTL":         "1m",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
	"IMPORT_VALIDATION_MODE":     "strict",
	"ENCRYPTION_KEY":             "",
	"IMPORT_TOKEN_TTL":           "0s",
	"MAX_UPLOAD_SIZE":            10 << 20,
	"DEFAULT_PAGE_SIZE":          20,
	"MAX_PAGE_SIZE":              100,
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Variables already set in the environment win over the file.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", DriverPostgres)
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER=%s", DriverMongo)
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("MONGO_DATABASE is required when STORE_DRIVER=%s", DriverMongo)
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %s or %s, got %q", DriverPostgres, DriverMongo, c.Store.Driver)
	}

	if c.Scheduler.SweepMode != SweepOnRead && c.Scheduler.SweepMode != SweepScheduled {
		return fmt.Errorf("SWEEP_MODE must be %s or %s, got %q", SweepOnRead, SweepScheduled, c.Scheduler.SweepMode)
	}

	if _, err := cron.NewParser(cronFields).Parse(c.Scheduler.Cron); err != nil {
		return fmt.Errorf("SCHEDULER_CRON must be a valid cron spec with seconds: %w", err)
	}

	if c.Scheduler.LockTTL <= 0 {
		return fmt.Errorf("SCHEDULER_LOCK_TTL must be greater than 0")
	}

	if c.Import.ValidationMode != "strict" && c.Import.ValidationMode != "historical" {
		return fmt.Errorf("IMPORT_VALIDATION_MODE must be strict or historical, got %q", c.Import.ValidationMode)
	}

	if c.Import.TokenTTL < 0 {
		return fmt.Errorf("IMPORT_TOKEN_TTL must not be negative")
	}

	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be greater than 0")
	}

	if c.Pagination.DefaultPageSize <= 0 || c.Pagination.MaxPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE and MAX_PAGE_SIZE must be greater than 0")
	}

	if c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must not exceed MAX_PAGE_SIZE")
	}

	return nil
}

// cronFields matches cron.WithSeconds, used by the scheduler.
const cronFields = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Addr is the HTTP listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// DSN returns the Postgres connection string.
func (c DatabaseConfig) DSN() string {
	return c.URL
}

// Enabled reports whether a Redis host is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
