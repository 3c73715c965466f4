package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the engine
type Config struct {
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Alchemy   AlchemyConfig
	Store     StoreConfig
	Presence  PresenceConfig
	Audit     AuditConfig
	Log       LogConfig
}

// RedisConfig holds Redis-specific configuration. An empty URL runs the
// engine on in-memory stores.
type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

// SchedulerConfig controls the tick loop
type SchedulerConfig struct {
	Interval      time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"60s"`
	Concurrency   int           `env:"SCHEDULER_CONCURRENCY" envDefault:"8"`
	EntityTimeout time.Duration `env:"SCHEDULER_ENTITY_TIMEOUT" envDefault:"10s"`
}

// AlchemyConfig controls crafting sessions
type AlchemyConfig struct {
	MaxConcurrentSessions int           `env:"ALCHEMY_MAX_SESSIONS" envDefault:"3"`
	MinDuration           time.Duration `env:"ALCHEMY_MIN_DURATION" envDefault:"60s"`
}

// StoreConfig bounds every store call
type StoreConfig struct {
	Timeout time.Duration `env:"STORE_TIMEOUT" envDefault:"2s"`
	Retries int           `env:"STORE_RETRIES" envDefault:"2"`
}

// PresenceConfig controls who counts as active
type PresenceConfig struct {
	Window time.Duration `env:"PRESENCE_WINDOW" envDefault:"5m"`
}

// AuditConfig controls the audit archive. An empty path disables it.
type AuditConfig struct {
	SQLitePath string `env:"AUDIT_SQLITE_PATH"`
	Stream     bool   `env:"AUDIT_REDIS_STREAM" envDefault:"true"`
}

// LogConfig controls log output
type LogConfig struct {
	Format string `env:"LOG_FORMAT" envDefault:"terminal"`
	Debug  bool   `env:"LOG_DEBUG"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values the engine cannot run with
func (c *Config) Validate() error {
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive")
	}
	if c.Scheduler.Concurrency < 1 {
		return fmt.Errorf("SCHEDULER_CONCURRENCY must be at least 1")
	}
	if c.Scheduler.EntityTimeout <= 0 {
		return fmt.Errorf("SCHEDULER_ENTITY_TIMEOUT must be positive")
	}
	if c.Alchemy.MaxConcurrentSessions < 1 {
		return fmt.Errorf("ALCHEMY_MAX_SESSIONS must be at least 1")
	}
	if c.Alchemy.MinDuration < 0 {
		return fmt.Errorf("ALCHEMY_MIN_DURATION cannot be negative")
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.Store.Retries < 0 {
		return fmt.Errorf("STORE_RETRIES cannot be negative")
	}
	switch c.Log.Format {
	case "terminal", "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be terminal, json or text, got %q", c.Log.Format)
	}
	return nil
}
