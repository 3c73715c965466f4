package audit

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"
	"goa.design/clue/log"

	"github.com/KirkDiggler/cultivation-idle/internal/clock"
)

// DefaultStream is the Redis stream events are appended to
const DefaultStream = "audit:events"

// RedisRecorder appends events to a capped Redis stream
type RedisRecorder struct {
	client redis.UniversalClient
	clock  clock.Clock
	stream string
	maxLen int64
}

// RedisRecorderConfig configures a RedisRecorder
type RedisRecorderConfig struct {
	Client redis.UniversalClient
	Clock  clock.Clock
	Stream string
	MaxLen int64
}

// NewRedisRecorder creates a stream-backed recorder
func NewRedisRecorder(cfg *RedisRecorderConfig) *RedisRecorder {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	r := &RedisRecorder{
		client: cfg.Client,
		clock:  cfg.Clock,
		stream: cfg.Stream,
		maxLen: cfg.MaxLen,
	}
	if r.clock == nil {
		r.clock = clock.New()
	}
	if r.stream == "" {
		r.stream = DefaultStream
	}
	if r.maxLen <= 0 {
		r.maxLen = 10000
	}
	return r
}

// Record adds the event to the stream
func (r *RedisRecorder) Record(ctx context.Context, entityID, eventType, message string, details map[string]any) {
	encoded := "{}"
	if len(details) > 0 {
		data, err := json.Marshal(details)
		if err != nil {
			log.Error(ctx, err, log.KV{K: "msg", V: "failed to encode audit details"}, log.KV{K: "event", V: eventType})
			return
		}
		encoded = string(data)
	}

	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: []string{
			"entity_id", entityID,
			"type", eventType,
			"message", message,
			"details", encoded,
			"recorded_at", strconv.FormatInt(r.clock.Now().UnixMilli(), 10),
		},
	}).Err()
	if err != nil {
		log.Error(ctx, err,
			log.KV{K: "msg", V: "failed to append audit event"},
			log.KV{K: "event", V: eventType},
			log.KV{K: "entity_id", V: entityID})
	}
}
