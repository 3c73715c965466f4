package characters

//go:generate mockgen -destination=mock/mock.go -package=mockcharacters -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
)

// Repository defines the interface for character persistence
type Repository interface {
	// Create stores a new character
	Create(ctx context.Context, ch *character.Character) error

	// Get retrieves a character by ID
	Get(ctx context.Context, id string) (*character.Character, error)

	// Update replaces an existing character
	Update(ctx context.Context, ch *character.Character) error

	// Delete removes a character
	Delete(ctx context.Context, id string) error

	// List returns every stored character
	List(ctx context.Context) ([]*character.Character, error)

	// Mutate loads a character, applies fn and stores the result atomically.
	// Nothing is written when fn returns an error; fn may run more than once
	// if a concurrent writer wins.
	Mutate(ctx context.Context, id string, fn func(ch *character.Character) error) (*character.Character, error)
}

const kind = "character"

// Key is the Redis key a character is stored under
func Key(id string) string {
	return "character:" + id
}

// allCharactersKey indexes every stored character id
const allCharactersKey = "characters:all"
