package redis

import (
	"context"
	"fmt"
	"time"

	"netqoe/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options configures NewRedisClient.
type Options struct {
	Address  string
	Password string
	DB       int
	PoolSize int
	// ConnectRetry governs the initial ping; the zero value pings once.
	ConnectRetry retry.Config
}

// NewRedisClient connects, pings (with retry) and migrates the schema.
func NewRedisClient(ctx context.Context, opts Options, logger *zap.SugaredLogger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err := retry.Retry(ctx, opts.ConnectRetry, func() error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if err := Migrate(ctx, client, logger); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if logger != nil {
		logger.Infow("connected to Redis",
			"address", opts.Address,
			"db", opts.DB,
			"pool_size", opts.PoolSize,
		)
	}

	return client, nil
}
