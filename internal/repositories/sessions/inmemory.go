package sessions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/alchemy"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/characters"
)

// InMemoryRepository keeps sessions in a map and writes owners through the
// given character repository. A single mutex makes each write atomic with
// respect to other session writes.
type InMemoryRepository struct {
	mu         sync.Mutex
	characters characters.Repository
	sessions   map[string]*alchemy.Session
}

// NewInMemoryRepository creates a new in-memory session repository
func NewInMemoryRepository(chars characters.Repository) *InMemoryRepository {
	if chars == nil {
		panic("character repository is required")
	}
	return &InMemoryRepository{
		characters: chars,
		sessions:   make(map[string]*alchemy.Session),
	}
}

func copySession(s *alchemy.Session) *alchemy.Session {
	cp := *s
	if s.ResultQuality != nil {
		q := *s.ResultQuality
		cp.ResultQuality = &q
	}
	if s.CollectedAt != nil {
		t := *s.CollectedAt
		cp.CollectedAt = &t
	}
	return &cp
}

// Get retrieves a session by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*alchemy.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		return nil, repositories.NewRecordNotFoundError(kind, id)
	}
	return copySession(sess), nil
}

// ListByOwner returns the owner's sessions ordered by start time
func (r *InMemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*alchemy.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*alchemy.Session
	for _, sess := range r.sessions {
		if sess.OwnerID == ownerID {
			out = append(out, copySession(sess))
		}
	}
	sortSessions(out)
	return out, nil
}

// CountActive returns how many of the owner's sessions are in progress
func (r *InMemoryRepository) CountActive(ctx context.Context, ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.countActive(ownerID), nil
}

func (r *InMemoryRepository) countActive(ownerID string) int {
	count := 0
	for _, sess := range r.sessions {
		if sess.OwnerID == ownerID && sess.Status == alchemy.StatusInProgress {
			count++
		}
	}
	return count
}

// CreateWithDeduction deducts cost from the owner and stores sess
func (r *InMemoryRepository) CreateWithDeduction(ctx context.Context, sess *alchemy.Session, cost map[string]int64, maxActive int) (*character.Character, error) {
	if sess == nil || sess.ID == "" {
		return nil, engerr.InvalidArgument("session with an ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, exists := r.sessions[sess.ID]; exists {
		if !stored.SameStart(sess) {
			return nil, alreadyExistsError(sess.ID)
		}
		return r.characters.Get(ctx, sess.OwnerID)
	}

	ch, err := r.characters.Get(ctx, sess.OwnerID)
	if err != nil {
		return nil, err
	}

	if err := reserve(ch, r.countActive(sess.OwnerID), cost, maxActive); err != nil {
		return nil, err
	}

	if err := r.characters.Update(ctx, ch); err != nil {
		return nil, err
	}
	r.sessions[sess.ID] = copySession(sess)

	return ch, nil
}

// Complete resolves the owner's session and credits the owner
func (r *InMemoryRepository) Complete(ctx context.Context, ownerID, sessionID string, out alchemy.Outcome, at time.Time) (*alchemy.Session, *character.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[sessionID]
	if !ok || stored.OwnerID != ownerID {
		return nil, nil, repositories.NewRecordNotFoundError(kind, sessionID)
	}

	sess := copySession(stored)
	if sess.CompletedWith(out, at) {
		ch, err := r.characters.Get(ctx, ownerID)
		if err != nil {
			return nil, nil, err
		}
		return sess, ch, nil
	}
	if !sess.Complete(out, at) {
		return nil, nil, alreadyCollectedError(sess)
	}

	ch, err := r.characters.Get(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	alchemy.Credit(ch, out)

	if err := r.characters.Update(ctx, ch); err != nil {
		return nil, nil, err
	}
	r.sessions[sessionID] = copySession(sess)

	return sess, ch, nil
}

func sortSessions(list []*alchemy.Session) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartedAt.Equal(list[j].StartedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].StartedAt.Before(list[j].StartedAt)
	})
}
