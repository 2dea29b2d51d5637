package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"netqoe/internal/core/domain"
	"netqoe/internal/infrastructure/reliability"
	"netqoe/internal/infrastructure/repositories/memory"
	"netqoe/pkg/config"
	"netqoe/pkg/distributed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFactory_MemoryByDefault(t *testing.T) {
	f := NewRepositoryFactory(context.Background(), config.DefaultConfig(), zaptest.NewLogger(t).Sugar())
	defer f.Close()

	assert.Equal(t, config.StorageMemory, f.Backend())
	assert.IsType(t, &memory.MemoryScenarioRepository{}, f.CreateScenarioRepository())
	assert.IsType(t, &distributed.LocalLocker{}, f.CreateScenarioLocker())
}

func TestFactory_SQLiteWrapped(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.StorageSQLite
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "scenarios.db")

	f := NewRepositoryFactory(context.Background(), cfg, zaptest.NewLogger(t).Sugar())
	defer f.Close()

	require.Equal(t, config.StorageSQLite, f.Backend())
	repo := f.CreateScenarioRepository()
	assert.IsType(t, &reliability.ScenarioRepositoryWrapper{}, repo)

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.Scenario{
		ID:         "s1",
		Name:       "n",
		OwnerID:    "alice",
		Parameters: domain.Parameters{domain.ParamSINR: 1},
		CreatedAt:  time.Now(),
	}))
	_, err := repo.GetByID(ctx, "s1")
	assert.NoError(t, err)
	assert.NoError(t, repo.Ping(ctx))
}

func TestFactory_RedisUnavailableFallsBackToMemory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.StorageRedis
	cfg.Storage.Redis.Address = "127.0.0.1:1" // nothing listens here
	cfg.Reliability.RetryAttempts = 1

	f := NewRepositoryFactory(context.Background(), cfg, zaptest.NewLogger(t).Sugar())
	defer f.Close()

	assert.Equal(t, config.StorageMemory, f.Backend())
	assert.IsType(t, &memory.MemoryScenarioRepository{}, f.CreateScenarioRepository())
}

func TestRetryAndBreakerConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Reliability.RetryAttempts = 7
	cfg.Reliability.BreakerFailures = 9

	assert.Equal(t, 7, RetryConfig(cfg).MaxAttempts)
	assert.Equal(t, cfg.Reliability.RetryBaseDelay, RetryConfig(cfg).InitialDelay)
	assert.Equal(t, 9, BreakerConfig(cfg).FailureThreshold)
	assert.Equal(t, cfg.Reliability.BreakerTimeout, BreakerConfig(cfg).Timeout)
}
