package presence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
)

// InMemorySource tracks heartbeats in a map
type InMemorySource struct {
	mu     sync.Mutex
	clock  clock.Clock
	window time.Duration
	seen   map[string]time.Time
}

// NewInMemorySource creates an in-memory presence source. A zero window
// uses DefaultWindow.
func NewInMemorySource(clk clock.Clock, window time.Duration) *InMemorySource {
	if clk == nil {
		clk = clock.New()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &InMemorySource{
		clock:  clk,
		window: window,
		seen:   make(map[string]time.Time),
	}
}

// Touch records a heartbeat
func (s *InMemorySource) Touch(ctx context.Context, id string) error {
	if id == "" {
		return engerr.InvalidArgument("character ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seen[id] = s.clock.Now()
	return nil
}

// ListActiveIDs returns ids seen within the window and forgets the rest
func (s *InMemorySource) ListActiveIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-s.window)
	ids := make([]string, 0, len(s.seen))
	for id, at := range s.seen {
		if at.Before(cutoff) {
			delete(s.seen, id)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
