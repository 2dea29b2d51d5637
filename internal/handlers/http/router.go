package http

import (
	"net/http"
	"time"

	"netqoe/internal/core/ports"
	"netqoe/internal/infrastructure/middleware"
	"netqoe/internal/infrastructure/monitoring"
	"netqoe/pkg/config"
	"netqoe/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps collects everything NewRouter wires together. Metrics,
// MetricsHandler and Live are optional.
type RouterDeps struct {
	Config          *config.Config
	Logger          *zap.Logger
	AuthService     ports.AuthService
	ScenarioService ports.ScenarioService
	Health          *monitoring.HealthChecker
	Metrics         *monitoring.PrometheusCollector
	MetricsHandler  http.Handler
	Live            http.Handler
	StartedAt       time.Time
}

// NewRouter builds the gin engine with the full middleware chain and every
// public and authenticated route.
func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Logger.Sugar()

	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(log),
		middleware.RequestIDMiddleware(),
		middleware.RequestLoggingMiddleware(logger.NewContextLogger(deps.Logger)),
	)

	// Live sessions authenticate with the token query parameter and outlive
	// the per-request middleware below, so they are mounted first.
	if deps.Live != nil {
		router.GET("/ws/simulate", gin.WrapH(deps.Live))
	}

	router.Use(middleware.TracingMiddleware())
	if deps.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(deps.Metrics))
	}
	router.Use(
		middleware.NewHTTPRateLimitMiddleware(deps.Config),
		middleware.ErrorHandlerMiddleware(log),
	)

	NewHealthHandler(deps.Health, deps.StartedAt).SetupRoutes(router)
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	NewAuthHandler(deps.AuthService, deps.Config.Auth.AdminUsers).SetupRoutes(router)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(deps.AuthService))
	{
		NewQoEHandler(deps.ScenarioService).SetupRoutes(api)
		NewScenarioHandler(deps.ScenarioService).SetupRoutes(api)
	}

	return router
}
