package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	appenv "github.com/garrettladley/wext/internal/env"
)

type StorageKind string

const (
	StorageMemory StorageKind = "memory"
	StorageRedis  StorageKind = "redis"
)

type Config struct {
	Port            string             `env:"PORT" envDefault:"8080"`
	Env             appenv.Environment `env:"ENV" envDefault:"development"`
	Storage         StorageKind        `env:"STORAGE" envDefault:"memory"`
	Redis           RedisConfig        `envPrefix:"REDIS_"`
	DatabaseURL     string             `env:"DATABASE_URL"`
	RateLimit       RateLimitConfig
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	BeaconRetention time.Duration `env:"BEACON_RETENTION" envDefault:"168h"`
	ShutdownGrace   time.Duration `env:"SHUTDOWN_GRACE" envDefault:"2s"`
	// GzipMinSize is the response size in bytes at which compression starts.
	GzipMinSize int `env:"GZIP_MIN_SIZE" envDefault:"1024"`
}

type RedisConfig struct {
	URL string `env:"URL"`
}

type RateLimitConfig struct {
	// PerSecond is the sustained request rate allowed per client IP.
	PerSecond float64 `env:"RATE_LIMIT" envDefault:"5"`
	Burst     int     `env:"RATE_BURST" envDefault:"10"`
}

func ReadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Env.Validate(); err != nil {
		return err
	}
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when STORAGE=%s", StorageRedis)
		}
	default:
		return fmt.Errorf("unknown STORAGE %q (want %q or %q)", string(c.Storage), StorageMemory, StorageRedis)
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_BURST must be positive")
	}
	if c.GzipMinSize <= 0 {
		return fmt.Errorf("GZIP_MIN_SIZE must be positive")
	}
	return nil
}
