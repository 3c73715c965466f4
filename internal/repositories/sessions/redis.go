package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/alchemy"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/characters"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// maxTxAttempts bounds optimistic transaction retries on WATCH conflicts
const maxTxAttempts = 5

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
	Clock  clock.Clock
}

type redisRepo struct {
	client redis.UniversalClient
	clock  clock.Clock
}

// NewRedisRepository creates a new Redis-backed session repository
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

func encode(sess *alchemy.Session) (string, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to serialize session: %w", err)
	}
	return string(data), nil
}

func decode(id string, data []byte) (*alchemy.Session, error) {
	var sess alchemy.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, repositories.CorruptRecordError(err, kind, id)
	}
	return &sess, nil
}

// Get retrieves a session by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*alchemy.Session, error) {
	if id == "" {
		return nil, engerr.InvalidArgument("session ID is required")
	}

	data, err := r.client.Get(ctx, Key(id)).Bytes()
	if err != nil {
		return nil, repositories.StoreError(err, kind, id, "get")
	}
	return decode(id, data)
}

// ListByOwner returns the owner's sessions ordered by start time
func (r *redisRepo) ListByOwner(ctx context.Context, ownerID string) ([]*alchemy.Session, error) {
	ids, err := r.client.SMembers(ctx, ownerKey(ownerID)).Result()
	if err != nil {
		return nil, repositories.StoreError(err, kind, ownerID, "list")
	}

	out := make([]*alchemy.Session, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			sess, err := r.Get(gctx, id)
			if err != nil {
				return err
			}
			out[i] = sess
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortSessions(out)
	return out, nil
}

// CountActive returns how many of the owner's sessions are in progress
func (r *redisRepo) CountActive(ctx context.Context, ownerID string) (int, error) {
	n, err := r.client.SCard(ctx, activeKey(ownerID)).Result()
	if err != nil {
		return 0, repositories.StoreError(err, kind, ownerID, "count")
	}
	return int(n), nil
}

// CreateWithDeduction runs an optimistic transaction over the owner record
// and its active set
func (r *redisRepo) CreateWithDeduction(ctx context.Context, sess *alchemy.Session, cost map[string]int64, maxActive int) (*character.Character, error) {
	if sess == nil || sess.ID == "" {
		return nil, engerr.InvalidArgument("session with an ID is required")
	}

	sessData, err := encode(sess)
	if err != nil {
		return nil, err
	}

	ownerID := sess.OwnerID
	var updated *character.Character

	txf := func(tx *redis.Tx) error {
		replay, err := r.storedStart(ctx, tx, sess)
		if err != nil {
			return err
		}

		data, err := tx.Get(ctx, characters.Key(ownerID)).Bytes()
		if err != nil {
			return repositories.StoreError(err, "character", ownerID, "get")
		}
		ch, err := characters.Decode(ownerID, data)
		if err != nil {
			return err
		}
		if replay {
			updated = ch
			return nil
		}

		active, err := tx.SCard(ctx, activeKey(ownerID)).Result()
		if err != nil {
			return err
		}

		if err := reserve(ch, int(active), cost, maxActive); err != nil {
			return err
		}
		ch.UpdatedAt = r.clock.Now()

		chData, err := characters.Encode(ch)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, characters.Key(ownerID), chData, 0)
			pipe.Set(ctx, Key(sess.ID), sessData, 0)
			pipe.SAdd(ctx, ownerKey(ownerID), sess.ID)
			pipe.SAdd(ctx, activeKey(ownerID), sess.ID)
			return nil
		})
		if err != nil {
			return err
		}

		updated = ch
		return nil
	}

	if err := r.watch(ctx, txf, Key(sess.ID), characters.Key(ownerID), activeKey(ownerID)); err != nil {
		return nil, repositories.StoreError(err, kind, sess.ID, "create")
	}
	return updated, nil
}

// storedStart reports whether sess is already stored. A different session
// under the same ID is an already_exists error.
func (r *redisRepo) storedStart(ctx context.Context, tx *redis.Tx, sess *alchemy.Session) (bool, error) {
	data, err := tx.Get(ctx, Key(sess.ID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	stored, err := decode(sess.ID, data)
	if err != nil {
		return false, err
	}
	if !stored.SameStart(sess) {
		return false, alreadyExistsError(sess.ID)
	}
	return true, nil
}

// Complete runs an optimistic transaction over the session and its owner
func (r *redisRepo) Complete(ctx context.Context, ownerID, sessionID string, out alchemy.Outcome, at time.Time) (*alchemy.Session, *character.Character, error) {
	var (
		resolved *alchemy.Session
		owner    *character.Character
	)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, Key(sessionID)).Bytes()
		if err != nil {
			return repositories.StoreError(err, kind, sessionID, "get")
		}
		sess, err := decode(sessionID, data)
		if err != nil {
			return err
		}
		if sess.OwnerID != ownerID {
			return repositories.NewRecordNotFoundError(kind, sessionID)
		}
		replay := sess.CompletedWith(out, at)
		if !replay && !sess.Complete(out, at) {
			return alreadyCollectedError(sess)
		}

		chData, err := tx.Get(ctx, characters.Key(ownerID)).Bytes()
		if err != nil {
			return repositories.StoreError(err, "character", ownerID, "get")
		}
		ch, err := characters.Decode(ownerID, chData)
		if err != nil {
			return err
		}
		if replay {
			resolved, owner = sess, ch
			return nil
		}
		alchemy.Credit(ch, out)
		ch.UpdatedAt = r.clock.Now()

		sessOut, err := encode(sess)
		if err != nil {
			return err
		}
		chOut, err := characters.Encode(ch)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, Key(sessionID), sessOut, 0)
			pipe.Set(ctx, characters.Key(ownerID), chOut, 0)
			pipe.SRem(ctx, activeKey(ownerID), sessionID)
			return nil
		})
		if err != nil {
			return err
		}

		resolved, owner = sess, ch
		return nil
	}

	if err := r.watch(ctx, txf, Key(sessionID), characters.Key(ownerID)); err != nil {
		return nil, nil, repositories.StoreError(err, kind, sessionID, "complete")
	}
	return resolved, owner, nil
}

// watch retries txf while another writer invalidates the watched keys
func (r *redisRepo) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return engerr.StoreUnavailable(redis.TxFailedErr, "too many concurrent writers")
}
