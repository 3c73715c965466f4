//go:build integration
// +build integration

package characters_test

import (
	"context"
	"sync"
	"testing"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/characters"
	"github.com/KirkDiggler/cultivation-idle/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_Integration(t *testing.T) {
	client := testutils.StartRedisContainer(t)
	repo := characters.NewRedis(client)
	ctx := context.Background()

	t.Run("create and retrieve character", func(t *testing.T) {
		ch := testutils.CreateTestCharacter("int-char-1")
		ch.SetLuck(77)
		require.NoError(t, repo.Create(ctx, ch))

		got, err := repo.Get(ctx, ch.ID)
		require.NoError(t, err)
		assert.Equal(t, 77, got.Luck)
		assert.Equal(t, int64(30), got.Resource("spirit_herb"))
		assert.Nil(t, got.LastTickAt)
	})

	t.Run("create duplicate fails", func(t *testing.T) {
		ch := testutils.CreateTestCharacter("int-char-2")
		require.NoError(t, repo.Create(ctx, ch))

		err := repo.Create(ctx, ch)
		assert.Equal(t, engerr.CodeAlreadyExists, engerr.GetCode(err))
	})

	t.Run("update missing character fails", func(t *testing.T) {
		err := repo.Update(ctx, testutils.CreateTestCharacter("int-ghost"))
		assert.True(t, engerr.IsNotFound(err))
	})

	t.Run("mutate is atomic under contention", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Mutate(ctx, "int-char-2", func(ch *character.Character) error {
					ch.AddExperience(1)
					return nil
				})
				if err != nil {
					assert.True(t, engerr.IsStoreUnavailable(err))
				}
			}()
		}
		wg.Wait()

		got, err := repo.Get(ctx, "int-char-2")
		require.NoError(t, err)
		assert.Greater(t, got.Experience, int64(0))
		assert.LessOrEqual(t, got.Experience, int64(10))
	})

	t.Run("list and delete", func(t *testing.T) {
		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		require.NoError(t, repo.Delete(ctx, "int-char-1"))
		_, err = repo.Get(ctx, "int-char-1")
		assert.True(t, engerr.IsNotFound(err))
	})
}
