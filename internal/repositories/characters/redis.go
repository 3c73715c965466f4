package characters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
	Clock  clock.Clock
}

// maxTxAttempts bounds optimistic transaction retries on WATCH conflicts
const maxTxAttempts = 5

// redisRepo implements the Repository interface using Redis
type redisRepo struct {
	client redis.UniversalClient
	clock  clock.Clock
}

// NewRedisRepository creates a new Redis-backed character repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &redisRepo{
		client: cfg.Client,
		clock:  clk,
	}
}

// Encode serializes a character the way it is stored in Redis
func Encode(ch *character.Character) (string, error) {
	data, err := json.Marshal(ch)
	if err != nil {
		return "", fmt.Errorf("failed to serialize character: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored character
func Decode(id string, data []byte) (*character.Character, error) {
	var ch character.Character
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, repositories.CorruptRecordError(err, kind, id)
	}
	if ch.Resources == nil {
		ch.Resources = make(map[string]int64)
	}
	if ch.Inventory == nil {
		ch.Inventory = make(map[string]int)
	}
	return &ch, nil
}

// Create stores a new character
func (r *redisRepo) Create(ctx context.Context, ch *character.Character) error {
	if ch == nil {
		return engerr.InvalidArgument("character cannot be nil")
	}
	if ch.ID == "" {
		return engerr.InvalidArgument("character ID is required")
	}

	now := r.clock.Now()
	ch.CreatedAt = now
	ch.UpdatedAt = now

	data, err := Encode(ch)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	created := pipe.SetNX(ctx, Key(ch.ID), data, 0)
	pipe.SAdd(ctx, allCharactersKey, ch.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return repositories.StoreError(err, kind, ch.ID, "create")
	}

	if !created.Val() {
		return engerr.AlreadyExistsf("character already exists: %s", ch.ID).
			WithMeta("character_id", ch.ID)
	}

	return nil
}

// Get retrieves a character by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*character.Character, error) {
	if id == "" {
		return nil, engerr.InvalidArgument("character ID is required")
	}

	data, err := r.client.Get(ctx, Key(id)).Bytes()
	if err != nil {
		return nil, repositories.StoreError(err, kind, id, "get")
	}

	return Decode(id, data)
}

// Update replaces an existing character; it never creates one
func (r *redisRepo) Update(ctx context.Context, ch *character.Character) error {
	if ch == nil {
		return engerr.InvalidArgument("character cannot be nil")
	}

	ch.UpdatedAt = r.clock.Now()

	data, err := Encode(ch)
	if err != nil {
		return err
	}

	updated, err := r.client.SetXX(ctx, Key(ch.ID), data, 0).Result()
	if err != nil {
		return repositories.StoreError(err, kind, ch.ID, "update")
	}
	if !updated {
		return repositories.NewRecordNotFoundError(kind, ch.ID)
	}

	return nil
}

// Delete removes a character
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	deleted := pipe.Del(ctx, Key(id))
	pipe.SRem(ctx, allCharactersKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return repositories.StoreError(err, kind, id, "delete")
	}

	if deleted.Val() == 0 {
		return repositories.NewRecordNotFoundError(kind, id)
	}
	return nil
}

// List returns every stored character ordered by ID
func (r *redisRepo) List(ctx context.Context) ([]*character.Character, error) {
	ids, err := r.client.SMembers(ctx, allCharactersKey).Result()
	if err != nil {
		return nil, repositories.StoreError(err, kind, "*", "list")
	}
	sort.Strings(ids)

	out := make([]*character.Character, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			ch, err := r.Get(gctx, id)
			if err != nil {
				return err
			}
			out[i] = ch
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Mutate runs fn inside an optimistic transaction on the character key
func (r *redisRepo) Mutate(ctx context.Context, id string, fn func(ch *character.Character) error) (*character.Character, error) {
	if id == "" {
		return nil, engerr.InvalidArgument("character ID is required")
	}

	var (
		result *character.Character
		fnErr  error
	)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, Key(id)).Bytes()
		if err != nil {
			return err
		}
		ch, err := Decode(id, data)
		if err != nil {
			return err
		}

		if fnErr = fn(ch); fnErr != nil {
			return fnErr
		}
		ch.UpdatedAt = r.clock.Now()

		encoded, err := Encode(ch)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, Key(id), encoded, 0)
			return nil
		})
		if err != nil {
			return err
		}

		result = ch
		return nil
	}

	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, Key(id))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if fnErr != nil {
			return nil, fnErr
		}
		if err != nil {
			return nil, repositories.StoreError(err, kind, id, "mutate")
		}
		return result, nil
	}

	return nil, engerr.StoreUnavailable(redis.TxFailedErr, "too many concurrent character writers").
		WithMeta("character_id", id)
}
