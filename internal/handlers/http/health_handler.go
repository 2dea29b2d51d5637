package http

import (
	"context"
	"net/http"
	"time"

	"netqoe/internal/infrastructure/monitoring"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

type HealthHandler struct {
	checker   *monitoring.HealthChecker
	startedAt time.Time
}

func NewHealthHandler(checker *monitoring.HealthChecker, startedAt time.Time) *HealthHandler {
	return &HealthHandler{checker: checker, startedAt: startedAt}
}

func (h *HealthHandler) SetupRoutes(router gin.IRouter) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

// Health reports liveness only.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    monitoring.StatusHealthy,
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Ready runs every registered dependency check.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	status := h.checker.CheckAll(ctx)
	code := http.StatusOK
	if status.Status != monitoring.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
