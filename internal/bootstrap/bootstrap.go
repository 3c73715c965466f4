// Package bootstrap turns configuration into a running service provider for
// the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"goa.design/clue/log"

	"github.com/KirkDiggler/cultivation-idle/internal/audit"
	"github.com/KirkDiggler/cultivation-idle/internal/config"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/recipes"
	"github.com/KirkDiggler/cultivation-idle/internal/services"
)

// LogContext returns a context carrying a logger configured by cfg
func LogContext(ctx context.Context, cfg config.LogConfig) context.Context {
	opts := []log.LogOption{log.WithFormat(logFormat(cfg.Format))}
	if cfg.Debug {
		opts = append(opts, log.WithDebug())
	}
	return log.Context(ctx, opts...)
}

func logFormat(name string) log.FormatFunc {
	switch name {
	case "json":
		return log.FormatJSON
	case "text":
		return log.FormatText
	default:
		return log.FormatTerminal
	}
}

// ConnectRedis parses url and pings the server
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Runtime bundles the provider with the resources that must be closed
type Runtime struct {
	Provider *services.Provider
	Redis    *redis.Client
	Archive  *audit.SQLiteRecorder

	closers []func() error
}

// Close releases every resource opened by New
func (r *Runtime) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// New wires stores, audit sinks and services. Without a Redis URL the
// engine runs on in-memory stores; when requireRedis is set that is an error.
func New(ctx context.Context, cfg *config.Config, requireRedis bool) (*Runtime, error) {
	rt := &Runtime{}

	catalog, err := recipes.NewEmbedded()
	if err != nil {
		return nil, err
	}

	recorders := audit.Multi{audit.LogRecorder{}}

	if cfg.Redis.URL != "" {
		client, err := ConnectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			if requireRedis {
				return nil, err
			}
			log.Error(ctx, err, log.KV{K: "msg", V: "falling back to in-memory stores"})
		} else {
			rt.Redis = client
			rt.closers = append(rt.closers, client.Close)
			if cfg.Audit.Stream {
				recorders = append(recorders, audit.NewRedisRecorder(&audit.RedisRecorderConfig{Client: client}))
			}
			log.Info(ctx, log.KV{K: "msg", V: "using redis for persistence"})
		}
	} else if requireRedis {
		return nil, fmt.Errorf("REDIS_URL is required")
	} else {
		log.Info(ctx, log.KV{K: "msg", V: "no REDIS_URL found, using in-memory stores"})
	}

	if cfg.Audit.SQLitePath != "" {
		archive, err := audit.OpenSQLite(cfg.Audit.SQLitePath, nil)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.Archive = archive
		rt.closers = append(rt.closers, archive.Close)
		recorders = append(recorders, archive)
	}

	providerCfg := &services.ProviderConfig{
		Recipes:               catalog,
		Audit:                 recorders,
		SchedulerInterval:     cfg.Scheduler.Interval,
		SchedulerConcurrency:  cfg.Scheduler.Concurrency,
		EntityTimeout:         cfg.Scheduler.EntityTimeout,
		MaxConcurrentSessions: cfg.Alchemy.MaxConcurrentSessions,
		MinDuration:           cfg.Alchemy.MinDuration,
		StoreTimeout:          cfg.Store.Timeout,
		StoreRetries:          cfg.Store.Retries,
		PresenceWindow:        cfg.Presence.Window,
	}
	if rt.Redis != nil {
		providerCfg.RedisClient = rt.Redis
	}

	rt.Provider = services.NewProvider(providerCfg)
	return rt, nil
}
