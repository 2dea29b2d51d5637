package repositories

import (
	"context"
	"time"

	"netqoe/internal/core/ports"
	"netqoe/internal/infrastructure/reliability"
	"netqoe/internal/infrastructure/repositories/memory"
	redisrepo "netqoe/internal/infrastructure/repositories/redis"
	sqliterepo "netqoe/internal/infrastructure/repositories/sqlite"
	"netqoe/pkg/circuitbreaker"
	"netqoe/pkg/config"
	"netqoe/pkg/distributed"
	"netqoe/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates the configured scenario repository, falling back
// to memory when the configured backend cannot be opened.
type RepositoryFactory struct {
	backend     string
	redisClient *redis.Client
	sqliteRepo  *sqliterepo.SQLiteScenarioRepository
	retryConfig retry.Config
	cbConfig    circuitbreaker.Config
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) *RepositoryFactory {
	factory := &RepositoryFactory{
		backend:     config.StorageMemory,
		retryConfig: RetryConfig(cfg),
		cbConfig:    BreakerConfig(cfg),
		logger:      logger,
	}

	switch cfg.Storage.Backend {
	case config.StorageRedis:
		client, err := redisrepo.NewRedisClient(ctx, redisrepo.Options{
			Address:      cfg.Storage.Redis.Address,
			Password:     cfg.Storage.Redis.Password,
			DB:           cfg.Storage.Redis.DB,
			PoolSize:     cfg.Storage.Redis.PoolSize,
			ConnectRetry: factory.retryConfig,
		}, logger)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repository",
				"error", err,
			)
			break
		}
		factory.redisClient = client
		factory.backend = config.StorageRedis

	case config.StorageSQLite:
		repo, err := sqliterepo.Open(ctx, cfg.Storage.SQLite.Path)
		if err != nil {
			logger.Warnw("failed to open SQLite database, falling back to memory repository",
				"path", cfg.Storage.SQLite.Path,
				"error", err,
			)
			break
		}
		factory.sqliteRepo = repo
		factory.backend = config.StorageSQLite
	}

	logger.Infow("scenario repository selected", "backend", factory.backend)
	return factory
}

// RetryConfig maps the reliability section onto pkg/retry.
func RetryConfig(cfg *config.Config) retry.Config {
	rc := retry.DefaultConfig()
	rc.MaxAttempts = cfg.Reliability.RetryAttempts
	rc.InitialDelay = cfg.Reliability.RetryBaseDelay
	rc.MaxDelay = cfg.Reliability.RetryMaxDelay
	return rc
}

// BreakerConfig maps the reliability section onto pkg/circuitbreaker.
func BreakerConfig(cfg *config.Config) circuitbreaker.Config {
	cb := circuitbreaker.DefaultConfig()
	cb.FailureThreshold = cfg.Reliability.BreakerFailures
	cb.SuccessThreshold = cfg.Reliability.BreakerSuccesses
	cb.Timeout = cfg.Reliability.BreakerTimeout
	return cb
}

// Backend reports which storage backend is in use after fallback.
func (f *RepositoryFactory) Backend() string {
	return f.backend
}

// CreateScenarioRepository returns the scenario repository. Remote backends
// come wrapped with retry and circuit breaking.
func (f *RepositoryFactory) CreateScenarioRepository() ports.ScenarioRepository {
	var repo ports.ScenarioRepository
	switch {
	case f.redisClient != nil:
		repo = redisrepo.NewRedisScenarioRepository(f.redisClient)
	case f.sqliteRepo != nil:
		repo = f.sqliteRepo
	default:
		return memory.NewMemoryScenarioRepository()
	}
	return reliability.NewScenarioRepositoryWrapper(repo, f.backend, f.retryConfig, f.cbConfig, f.logger)
}

const (
	scenarioLockPrefix = "netqoe:lock:"
	scenarioLockTTL    = 5 * time.Second
	scenarioLockWait   = 2 * time.Second
)

// CreateScenarioLocker returns a Redis lock when scenarios live in Redis, so
// replicas sharing the store serialize updates. Other backends get an
// in-process locker.
func (f *RepositoryFactory) CreateScenarioLocker() ports.Locker {
	if f.redisClient != nil {
		return distributed.NewRedisLocker(f.redisClient, scenarioLockPrefix, scenarioLockTTL, scenarioLockWait)
	}
	return distributed.NewLocalLocker()
}

// Close releases the backend connection, if any
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		return f.redisClient.Close()
	}
	if f.sqliteRepo != nil {
		return f.sqliteRepo.Close()
	}
	return nil
}
