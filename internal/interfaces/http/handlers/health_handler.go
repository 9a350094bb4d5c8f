// Package handlers contains the thin HTTP handlers of the admission
// service. Business logic (catalog, checkout, subscriptions) lives in
// external services; the handlers here only exercise the admission layer.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storekit/admission/internal/infrastructure/persistence/redis"
	"github.com/storekit/admission/pkg/logger"
)

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	redis *redis.Connection
	log   logger.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(conn *redis.Connection, log logger.Logger) *HealthHandler {
	return &HealthHandler{redis: conn, log: log}
}

// Liveness reports that the process is running.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness reports whether the backing stores are reachable. A down redis
// does not fail readiness, since the rate limiter degrades to its local
// path, but it is reported so operators see the degradation.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := gin.H{"redis": "ok"}
	status := http.StatusOK

	if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
		h.log.Warn(c.Request.Context(), "readiness: redis unreachable", logger.Err(err))
		checks["redis"] = "degraded"
	}

	c.JSON(status, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}
