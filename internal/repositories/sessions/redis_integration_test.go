//go:build integration
// +build integration

package sessions_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/alchemy"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/characters"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/sessions"
	"github.com/KirkDiggler/cultivation-idle/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_Integration(t *testing.T) {
	client := testutils.StartRedisContainer(t)
	chars := characters.NewRedis(client)
	repo := sessions.NewRedis(client)
	ctx := context.Background()

	require.NoError(t, chars.Create(ctx, testutils.CreateTestCharacter("char-1")))
	cost := map[string]int64{"spirit_herb": 3}

	t.Run("concurrent starts never exceed capacity", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make([]error, 6)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sess := alchemy.NewSession(
					"s-"+string(rune('a'+i)), "char-1", "qi_pill",
					testutils.Epoch, testutils.Epoch.Add(time.Minute), 0.5)
				_, errs[i] = repo.CreateWithDeduction(ctx, sess, cost, 3)
			}(i)
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.Contains(t,
				[]engerr.Code{engerr.CodeCapacityExceeded, engerr.CodeStoreUnavailable},
				engerr.GetCode(err))
		}

		count, err := repo.CountActive(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, ok, count)
		assert.LessOrEqual(t, count, 3)

		ch, err := chars.Get(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, int64(30-3*ok), ch.Resource("spirit_herb"))
	})

	t.Run("complete credits exactly once", func(t *testing.T) {
		list, err := repo.ListByOwner(ctx, "char-1")
		require.NoError(t, err)
		require.NotEmpty(t, list)
		target := list[0]

		before, err := chars.Get(ctx, "char-1")
		require.NoError(t, err)

		out := alchemy.Outcome{Success: false, ExpGained: 20}
		sess, owner, err := repo.Complete(ctx, "char-1", target.ID, out, testutils.Epoch.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, alchemy.StatusFailed, sess.Status)
		assert.Equal(t, before.Experience+20, owner.Experience)

		_, replayOwner, err := repo.Complete(ctx, "char-1", target.ID, out, testutils.Epoch.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, before.Experience+20, replayOwner.Experience)

		_, _, err = repo.Complete(ctx, "char-1", target.ID, alchemy.Outcome{ExpGained: 5}, testutils.Epoch.Add(2*time.Hour))
		assert.Equal(t, engerr.CodeAlreadyCollected, engerr.GetCode(err))

		after, err := chars.Get(ctx, "char-1")
		require.NoError(t, err)
		assert.Equal(t, before.Experience+20, after.Experience)
	})

	t.Run("replayed start pays once", func(t *testing.T) {
		require.NoError(t, chars.Create(ctx, testutils.CreateTestCharacter("char-2")))
		sess := alchemy.NewSession("s-replay", "char-2", "qi_pill",
			testutils.Epoch, testutils.Epoch.Add(time.Minute), 0.5)

		_, err := repo.CreateWithDeduction(ctx, sess, cost, 3)
		require.NoError(t, err)
		owner, err := repo.CreateWithDeduction(ctx, sess, cost, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(27), owner.Resource("spirit_herb"))

		count, err := repo.CountActive(ctx, "char-2")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		impostor := alchemy.NewSession("s-replay", "char-2", "qi_pill",
			testutils.Epoch.Add(time.Hour), testutils.Epoch.Add(2*time.Hour), 0.5)
		_, err = repo.CreateWithDeduction(ctx, impostor, cost, 3)
		assert.Equal(t, engerr.CodeAlreadyExists, engerr.GetCode(err))
	})
}
