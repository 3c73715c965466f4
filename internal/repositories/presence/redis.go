package presence

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories"
	"github.com/redis/go-redis/v9"
)

const kind = "presence"

// RedisSourceConfig holds configuration for the Redis presence source
type RedisSourceConfig struct {
	Client redis.UniversalClient
	Clock  clock.Clock
	Window time.Duration
}

type redisSource struct {
	client redis.UniversalClient
	clock  clock.Clock
	window time.Duration
}

// NewRedisSource creates a presence source over a Redis sorted set
func NewRedisSource(cfg *RedisSourceConfig) Source {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}

	return &redisSource{
		client: cfg.Client,
		clock:  clk,
		window: window,
	}
}

// Touch records a heartbeat
func (s *redisSource) Touch(ctx context.Context, id string) error {
	if id == "" {
		return engerr.InvalidArgument("character ID is required")
	}

	err := s.client.ZAdd(ctx, activeKey, redis.Z{
		Score:  float64(s.clock.Now().Unix()),
		Member: id,
	}).Err()
	return repositories.StoreError(err, kind, id, "touch")
}

// ListActiveIDs prunes stale heartbeats and returns the rest
func (s *redisSource) ListActiveIDs(ctx context.Context) ([]string, error) {
	cutoff := strconv.FormatInt(s.clock.Now().Add(-s.window).Unix(), 10)

	if err := s.client.ZRemRangeByScore(ctx, activeKey, "-inf", "("+cutoff).Err(); err != nil {
		return nil, repositories.StoreError(err, kind, "*", "prune")
	}

	ids, err := s.client.ZRangeByScore(ctx, activeKey, &redis.ZRangeBy{
		Min: cutoff,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, repositories.StoreError(err, kind, "*", "list")
	}

	sort.Strings(ids)
	return ids, nil
}
