package characters_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/characters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := characters.NewInMemoryRepository()

	ch := character.NewCharacter("char-1", "Lin")
	ch.AddResource(character.ResourceSpiritStones, 10)
	require.NoError(t, repo.Create(ctx, ch))

	err := repo.Create(ctx, ch)
	assert.Equal(t, engerr.CodeAlreadyExists, engerr.GetCode(err))

	// stored copy is isolated from the caller
	ch.AddResource(character.ResourceSpiritStones, 90)
	got, err := repo.Get(ctx, "char-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Resource(character.ResourceSpiritStones))

	got.Experience = 500
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx, "char-1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), got.Experience)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "char-1"))
	_, err = repo.Get(ctx, "char-1")
	assert.True(t, engerr.IsNotFound(err))
}

func TestInMemoryRepository_Validation(t *testing.T) {
	ctx := context.Background()
	repo := characters.NewInMemoryRepository()

	assert.Equal(t, engerr.CodeInvalidArgument, engerr.GetCode(repo.Create(ctx, nil)))
	assert.Equal(t, engerr.CodeInvalidArgument, engerr.GetCode(repo.Create(ctx, &character.Character{})))

	_, err := repo.Get(ctx, "")
	assert.Equal(t, engerr.CodeInvalidArgument, engerr.GetCode(err))

	err = repo.Update(ctx, character.NewCharacter("ghost", "Ghost"))
	assert.True(t, engerr.IsNotFound(err))

	assert.True(t, engerr.IsNotFound(repo.Delete(ctx, "ghost")))
}

func TestInMemoryRepository_Mutate(t *testing.T) {
	ctx := context.Background()
	repo := characters.NewInMemoryRepository()
	require.NoError(t, repo.Create(ctx, character.NewCharacter("char-1", "Lin")))

	updated, err := repo.Mutate(ctx, "char-1", func(ch *character.Character) error {
		ch.AddExperience(25)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), updated.Experience)

	_, err = repo.Mutate(ctx, "char-1", func(ch *character.Character) error {
		ch.AddExperience(1000)
		return engerr.InvalidStatef("rejected")
	})
	assert.Equal(t, engerr.CodeInvalidState, engerr.GetCode(err))

	got, err := repo.Get(ctx, "char-1")
	require.NoError(t, err)
	assert.Equal(t, int64(25), got.Experience)

	_, err = repo.Mutate(ctx, "ghost", func(*character.Character) error { return nil })
	assert.True(t, engerr.IsNotFound(err))
}
