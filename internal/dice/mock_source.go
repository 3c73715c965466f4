package dice

import (
	"sync"
)

// MockSource implements Source for testing with predetermined results
type MockSource struct {
	mu       sync.Mutex
	floats   []float64
	ints     []int
	fallback float64
	draws    int
}

// NewMockSource creates a mock source that returns floats in order.
// Once exhausted it keeps returning 0.5.
func NewMockSource(floats ...float64) *MockSource {
	return &MockSource{
		floats:   floats,
		fallback: 0.5,
	}
}

// SetFloats replaces the queued float results
func (m *MockSource) SetFloats(floats ...float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.floats = floats
}

// SetInts replaces the queued Intn results
func (m *MockSource) SetInts(ints ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ints = ints
}

// SetFallback sets the float returned once the queue is empty
func (m *MockSource) SetFallback(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = v
}

// Draws reports how many values have been consumed
func (m *MockSource) Draws() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draws
}

// Float64 implements Source.Float64
func (m *MockSource) Float64() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.draws++
	if len(m.floats) == 0 {
		return m.fallback
	}
	v := m.floats[0]
	m.floats = m.floats[1:]
	return v
}

// Intn implements Source.Intn. Queued ints are reduced modulo n.
func (m *MockSource) Intn(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.draws++
	if len(m.ints) == 0 {
		return 0
	}
	v := m.ints[0]
	m.ints = m.ints[1:]
	return v % n
}
