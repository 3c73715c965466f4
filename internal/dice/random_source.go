package dice

import (
	"math/rand/v2"
	"sync"
	"time"
)

// randomSource implements Source on a seeded PCG generator
type randomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource creates a source seeded from the wall clock
func NewRandomSource() Source {
	return NewSeededSource(uint64(time.Now().UnixNano()))
}

// NewSeededSource creates a reproducible source
func NewSeededSource(seed uint64) Source {
	return &randomSource{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (r *randomSource) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *randomSource) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
