package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/payment-tracker/pkg/response"
)

const readinessTimeout = 5 * time.Second

type HealthHandler struct {
	pingStore func(ctx context.Context) error
	redis     redis.Cmdable
}

// NewHealthHandler builds the health endpoints. redis may be nil when no
// Redis is configured; readiness then checks the store only.
func NewHealthHandler(pingStore func(ctx context.Context) error, redis redis.Cmdable) *HealthHandler {
	return &HealthHandler{
		pingStore: pingStore,
		redis:     redis,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic health check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Checks:    map[string]string{},
	})
}

// Ready checks store and Redis connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.pingStore(ctx); err != nil {
		status.Status = "error"
		status.Checks["store"] = "failed: " + err.Error()
	} else {
		status.Checks["store"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status.Status = "error"
			status.Checks["redis"] = "failed: " + err.Error()
		} else {
			status.Checks["redis"] = "ok"
		}
	}

	if status.Status == "error" {
		response.JSON(w, http.StatusServiceUnavailable, status)
		return
	}

	response.Success(w, status)
}
