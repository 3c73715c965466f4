package presence

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates a Redis presence source with the given heartbeat window
func NewRedis(client redis.UniversalClient, window time.Duration) Source {
	return NewRedisSource(&RedisSourceConfig{
		Client: client,
		Window: window,
	})
}
