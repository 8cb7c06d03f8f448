package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler handles GET /health: liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// OnlineReporter exposes the derived connectivity flag.
type OnlineReporter interface {
	Online() bool
}

// RedisPinger is satisfied by *redis.Client.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// ReadinessHandler handles GET /health/ready: readiness probe.
// Reports the platform as seen by the connectivity monitor and, when the
// relay is enabled, Redis.
type ReadinessHandler struct {
	monitor OnlineReporter
	redis   RedisPinger
}

// NewReadinessHandler builds the readiness probe. rdb may be nil.
func NewReadinessHandler(monitor OnlineReporter, rdb RedisPinger) *ReadinessHandler {
	return &ReadinessHandler{monitor: monitor, redis: rdb}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	deps := make(map[string]dependencyStatus)
	healthy := true

	// --- Platform, as last observed ---
	if h.monitor.Online() {
		deps["platform"] = dependencyStatus{Status: "ok"}
	} else {
		deps["platform"] = dependencyStatus{Status: "unreachable"}
		healthy = false
	}

	// --- Redis ping ---
	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			deps["redis"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
		} else {
			deps["redis"] = dependencyStatus{Status: "ok"}
		}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
