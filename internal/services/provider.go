package services

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/cultivation-idle/internal/audit"
	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	"github.com/KirkDiggler/cultivation-idle/internal/dice"
	"github.com/KirkDiggler/cultivation-idle/internal/locks"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/characters"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/presence"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/recipes"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/sessions"
	"github.com/KirkDiggler/cultivation-idle/internal/retry"
	alchemyService "github.com/KirkDiggler/cultivation-idle/internal/services/alchemy"
	"github.com/KirkDiggler/cultivation-idle/internal/services/scheduler"
)

// Provider holds all service instances
type Provider struct {
	AlchemyService alchemyService.Service
	Scheduler      *scheduler.Scheduler

	Characters characters.Repository
	Presence   presence.Source
	Recipes    recipes.Repository
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	// RedisClient selects Redis-backed stores; nil keeps everything in memory
	RedisClient redis.UniversalClient

	Recipes recipes.Repository // Required
	Audit   audit.Recorder     // Optional
	Clock   clock.Clock        // Optional
	Source  dice.Source        // Optional

	SchedulerInterval     time.Duration
	SchedulerConcurrency  int
	EntityTimeout         time.Duration
	MaxConcurrentSessions int
	MinDuration           time.Duration
	StoreTimeout          time.Duration
	StoreRetries          int
	PresenceWindow        time.Duration
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	if cfg.Recipes == nil {
		panic("recipe repository is required")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	src := cfg.Source
	if src == nil {
		src = dice.NewRandomSource()
	}

	var (
		charRepo    characters.Repository
		sessionRepo sessions.Repository
		presenceSrc presence.Source
	)
	if cfg.RedisClient != nil {
		charRepo = characters.NewRedisRepository(&characters.RedisRepoConfig{Client: cfg.RedisClient, Clock: clk})
		sessionRepo = sessions.NewRedisRepository(&sessions.RedisRepoConfig{Client: cfg.RedisClient, Clock: clk})
		presenceSrc = presence.NewRedisSource(&presence.RedisSourceConfig{
			Client: cfg.RedisClient,
			Clock:  clk,
			Window: cfg.PresenceWindow,
		})
	} else {
		memChars := characters.NewInMemoryRepository()
		charRepo = memChars
		sessionRepo = sessions.NewInMemoryRepository(memChars)
		presenceSrc = presence.NewInMemorySource(clk, cfg.PresenceWindow)
	}

	policy := retry.DefaultPolicy()
	policy.Retries = cfg.StoreRetries

	// One lock set so crafting and cultivation never interleave on a character
	keyed := locks.NewKeyed()

	alchemySvc := alchemyService.NewService(&alchemyService.ServiceConfig{
		Characters:            charRepo,
		Sessions:              sessionRepo,
		Recipes:               cfg.Recipes,
		Source:                src,
		Clock:                 clk,
		Audit:                 cfg.Audit,
		Locks:                 keyed,
		Retry:                 &policy,
		StoreTimeout:          cfg.StoreTimeout,
		MaxConcurrentSessions: cfg.MaxConcurrentSessions,
		MinDuration:           cfg.MinDuration,
	})

	sched := scheduler.New(&scheduler.Config{
		Characters:    charRepo,
		Presence:      presenceSrc,
		Sweeper:       alchemySvc,
		Source:        src,
		Clock:         clk,
		Locks:         keyed,
		Audit:         cfg.Audit,
		Retry:         &policy,
		Interval:      cfg.SchedulerInterval,
		Concurrency:   cfg.SchedulerConcurrency,
		EntityTimeout: cfg.EntityTimeout,
	})

	return &Provider{
		AlchemyService: alchemySvc,
		Scheduler:      sched,
		Characters:     charRepo,
		Presence:       presenceSrc,
		Recipes:        cfg.Recipes,
	}
}
