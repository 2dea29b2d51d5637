package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Monitoring struct {
		PrometheusEnabled bool          `yaml:"prometheus_enabled"`
		HealthInterval    time.Duration `yaml:"health_interval"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled        bool    `yaml:"enabled"`
		ServiceName    string  `yaml:"service_name"`
		JaegerEndpoint string  `yaml:"jaeger_endpoint"`
		SampleRate     float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Storage struct {
		Backend string `yaml:"backend"`

		Redis struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size"`
		} `yaml:"redis"`

		SQLite struct {
			Path string `yaml:"path"`
		} `yaml:"sqlite"`
	} `yaml:"storage"`

	Auth struct {
		JWTSecret      string        `yaml:"jwt_secret"`
		AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		// AdminUsers may request the admin role at login.
		AdminUsers []string `yaml:"admin_users"`
	} `yaml:"auth"`

	RateLimiting struct {
		Enabled bool `yaml:"enabled"`

		HTTP struct {
			RequestsPerSecond float64 `yaml:"requests_per_second"`
			Burst             int     `yaml:"burst"`
			MaxConcurrent     int     `yaml:"max_concurrent"` // global concurrent HTTP requests
		} `yaml:"http"`
	} `yaml:"rate_limiting"`

	Live struct {
		PingInterval        time.Duration `yaml:"ping_interval"`
		PongTimeout         time.Duration `yaml:"pong_timeout"`
		MaxMessageSizeBytes int64         `yaml:"max_message_size_bytes"`
		MaxConnections      int           `yaml:"max_connections"` // 0 = unlimited
	} `yaml:"live"`

	Reliability struct {
		RetryAttempts    int           `yaml:"retry_attempts"`
		RetryBaseDelay   time.Duration `yaml:"retry_base_delay"`
		RetryMaxDelay    time.Duration `yaml:"retry_max_delay"`
		BreakerFailures  int           `yaml:"breaker_failures"`
		BreakerSuccesses int           `yaml:"breaker_successes"`
		BreakerTimeout   time.Duration `yaml:"breaker_timeout"`
	} `yaml:"reliability"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Monitoring
	if c.Monitoring.HealthInterval <= 0 {
		return fmt.Errorf("monitoring.health_interval must be > 0")
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.JaegerEndpoint == "" {
			return fmt.Errorf("tracing.jaeger_endpoint must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	// Storage
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address must not be empty when storage.backend=redis")
		}
		if c.Storage.Redis.PoolSize <= 0 {
			return fmt.Errorf("storage.redis.pool_size must be > 0 when storage.backend=redis")
		}
	case StorageSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path must not be empty when storage.backend=sqlite")
		}
	default:
		return fmt.Errorf("storage.backend must be one of memory, redis, sqlite (got %q)", c.Storage.Backend)
	}

	// Auth
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be > 0")
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.HTTP.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.http.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.Burst <= 0 {
			return fmt.Errorf("rate_limiting.http.burst must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.HTTP.MaxConcurrent < 0 {
			return fmt.Errorf("rate_limiting.http.max_concurrent must be >= 0 when rate limiting is enabled")
		}
	}

	// Live simulation
	if c.Live.PingInterval <= 0 {
		return fmt.Errorf("live.ping_interval must be > 0")
	}
	if c.Live.PongTimeout <= c.Live.PingInterval {
		return fmt.Errorf("live.pong_timeout must be greater than live.ping_interval")
	}
	if c.Live.MaxMessageSizeBytes <= 0 {
		return fmt.Errorf("live.max_message_size_bytes must be > 0")
	}
	if c.Live.MaxConnections < 0 {
		return fmt.Errorf("live.max_connections must be >= 0")
	}

	// Reliability
	if c.Reliability.RetryAttempts < 1 {
		return fmt.Errorf("reliability.retry_attempts must be >= 1")
	}
	if c.Reliability.RetryBaseDelay <= 0 || c.Reliability.RetryMaxDelay < c.Reliability.RetryBaseDelay {
		return fmt.Errorf("reliability.retry_base_delay must be > 0 and <= retry_max_delay")
	}
	if c.Reliability.BreakerFailures <= 0 || c.Reliability.BreakerSuccesses <= 0 {
		return fmt.Errorf("reliability.breaker_failures and breaker_successes must be > 0")
	}
	if c.Reliability.BreakerTimeout <= 0 {
		return fmt.Errorf("reliability.breaker_timeout must be > 0")
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Monitoring.PrometheusEnabled = true
	cfg.Monitoring.HealthInterval = 30 * time.Second

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "netqoe"
	cfg.Tracing.JaegerEndpoint = "http://localhost:14268/api/traces"
	cfg.Tracing.SampleRate = 1.0

	cfg.Storage.Backend = StorageMemory
	cfg.Storage.Redis.Address = "localhost:6379"
	cfg.Storage.Redis.DB = 0
	cfg.Storage.Redis.PoolSize = 10
	cfg.Storage.SQLite.Path = "netqoe.db"

	cfg.Auth.JWTSecret = "change-me-in-production"
	cfg.Auth.AccessTokenTTL = 8 * time.Hour
	cfg.Auth.AllowedOrigins = []string{"*"}

	// Rate limiting defaults (disabled by default)
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.HTTP.RequestsPerSecond = 50
	cfg.RateLimiting.HTTP.Burst = 100
	cfg.RateLimiting.HTTP.MaxConcurrent = 0

	cfg.Live.PingInterval = 30 * time.Second
	cfg.Live.PongTimeout = 60 * time.Second
	cfg.Live.MaxMessageSizeBytes = 64 * 1024
	cfg.Live.MaxConnections = 0

	cfg.Reliability.RetryAttempts = 3
	cfg.Reliability.RetryBaseDelay = 50 * time.Millisecond
	cfg.Reliability.RetryMaxDelay = time.Second
	cfg.Reliability.BreakerFailures = 5
	cfg.Reliability.BreakerSuccesses = 2
	cfg.Reliability.BreakerTimeout = 30 * time.Second

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("NETQOE_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("NETQOE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("NETQOE_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if backend := os.Getenv("NETQOE_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if addr := os.Getenv("NETQOE_REDIS_ADDRESS"); addr != "" {
		c.Storage.Redis.Address = addr
	}
	if path := os.Getenv("NETQOE_SQLITE_PATH"); path != "" {
		c.Storage.SQLite.Path = path
	}
}
