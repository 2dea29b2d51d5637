package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netqoe/internal/core/services"
	httphandlers "netqoe/internal/handlers/http"
	"netqoe/internal/infrastructure/live"
	"netqoe/internal/infrastructure/monitoring"
	"netqoe/internal/infrastructure/repositories"
	"netqoe/pkg/config"
	"netqoe/pkg/logger"
	"netqoe/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPaths = []string{
	"configs/config.yaml",
	"/etc/netqoe/config.yaml",
	"config.yaml",
}

// resolveConfigPath prefers NETQOE_CONFIG, then the first existing default path.
func resolveConfigPath() string {
	if p := os.Getenv("NETQOE_CONFIG"); p != "" {
		return p
	}
	for _, p := range configPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return configPaths[0]
}

func main() {
	startTime := time.Now()

	configPath := resolveConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.New("info").Sugar().Fatalw("failed to load configuration", "path", configPath, "error", err)
	}

	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerEndpoint,
		Environment: os.Getenv("NETQOE_ENV"),
		Version:     version,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Storage
	repoFactory := repositories.NewRepositoryFactory(ctx, cfg, log)
	scenarioRepo := repoFactory.CreateScenarioRepository()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := monitoring.NewPrometheusCollector(registry)

	// Services
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	scenarioService := services.NewScenarioService(services.NewQoEEngine(), scenarioRepo, collector, log,
		services.WithLocker(repoFactory.CreateScenarioLocker()),
	)

	// Health
	health := monitoring.NewHealthChecker()
	health.AddRepositoryCheck(scenarioRepo, cfg.Monitoring.HealthInterval, 2*time.Second)
	health.StartBackgroundChecks(ctx, func(name string, err error) {
		log.Warnw("health check failed", "check", name, "backend", repoFactory.Backend(), "error", err)
	})

	liveServer := live.NewWebSocketServer(scenarioService, authService, collector, live.Config{
		PingInterval:   cfg.Live.PingInterval,
		PongTimeout:    cfg.Live.PongTimeout,
		MaxMessageSize: cfg.Live.MaxMessageSizeBytes,
		MaxConnections: cfg.Live.MaxConnections,
		AllowedOrigins: cfg.Auth.AllowedOrigins,
	}, log)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := httphandlers.RouterDeps{
		Config:          cfg,
		Logger:          zapLogger,
		AuthService:     authService,
		ScenarioService: scenarioService,
		Health:          health,
		Metrics:         collector,
		Live:            liveServer,
		StartedAt:       startTime,
	}
	if cfg.Monitoring.PrometheusEnabled {
		deps.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}
	router := httphandlers.NewRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("starting netqoe server",
			"address", cfg.Server.Address,
			"storage", repoFactory.Backend(),
			"tracing", cfg.Tracing.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Errorw("server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("received shutdown signal", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	stop()

	if err := liveServer.Shutdown(shutdownCtx); err != nil {
		log.Warnw("live sessions did not close cleanly", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("error force closing server", "error", closeErr)
		}
	}
	if err := repoFactory.Close(); err != nil {
		log.Errorw("error closing repository", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error flushing traces", "error", err)
	}

	log.Info("netqoe server stopped")
}
