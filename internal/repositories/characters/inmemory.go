package characters

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories"
)

// InMemoryRepository is an in-memory implementation of the character repository
// Useful for testing and development
type InMemoryRepository struct {
	mu         sync.RWMutex
	characters map[string]*character.Character
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		characters: make(map[string]*character.Character),
	}
}

// Create stores a new character
func (r *InMemoryRepository) Create(ctx context.Context, ch *character.Character) error {
	if ch == nil {
		return engerr.InvalidArgument("character cannot be nil")
	}
	if ch.ID == "" {
		return engerr.InvalidArgument("character ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[ch.ID]; exists {
		return engerr.AlreadyExistsf("character already exists: %s", ch.ID).
			WithMeta("character_id", ch.ID)
	}

	r.characters[ch.ID] = ch.Clone()
	return nil
}

// Get retrieves a character by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*character.Character, error) {
	if id == "" {
		return nil, engerr.InvalidArgument("character ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, exists := r.characters[id]
	if !exists {
		return nil, repositories.NewRecordNotFoundError(kind, id)
	}

	return ch.Clone(), nil
}

// Update replaces an existing character
func (r *InMemoryRepository) Update(ctx context.Context, ch *character.Character) error {
	if ch == nil {
		return engerr.InvalidArgument("character cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[ch.ID]; !exists {
		return repositories.NewRecordNotFoundError(kind, ch.ID)
	}

	r.characters[ch.ID] = ch.Clone()
	return nil
}

// Delete removes a character
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[id]; !exists {
		return repositories.NewRecordNotFoundError(kind, id)
	}

	delete(r.characters, id)
	return nil
}

// List returns every stored character ordered by ID
func (r *InMemoryRepository) List(ctx context.Context) ([]*character.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*character.Character, 0, len(r.characters))
	for _, ch := range r.characters {
		out = append(out, ch.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Mutate applies fn to a copy and stores it when fn succeeds
func (r *InMemoryRepository) Mutate(ctx context.Context, id string, fn func(ch *character.Character) error) (*character.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.characters[id]
	if !exists {
		return nil, repositories.NewRecordNotFoundError(kind, id)
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	r.characters[id] = working.Clone()
	return working, nil
}
