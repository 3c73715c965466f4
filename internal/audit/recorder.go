// Package audit records notable engine events. Recording never fails the
// caller: sinks log their own errors.
package audit

import (
	"context"
	"sync"
	"time"

	"goa.design/clue/log"
)

// Event types emitted by the engine
const (
	EventAlchemyStarted   = "alchemy.started"
	EventAlchemyCollected = "alchemy.collected"
	EventAlchemyDue       = "alchemy.due"
	EventCycleProcessed   = "cycle.processed"
	EventSpecialEvent     = "cycle.special_event"
)

// Event is one recorded occurrence
type Event struct {
	EntityID   string         `json:"entity_id"`
	Type       string         `json:"type"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// Recorder accepts audit events
type Recorder interface {
	Record(ctx context.Context, entityID, eventType, message string, details map[string]any)
}

// Nop discards every event
type Nop struct{}

// Record does nothing
func (Nop) Record(context.Context, string, string, string, map[string]any) {}

// LogRecorder writes events to the context logger
type LogRecorder struct{}

// Record logs the event at info level
func (LogRecorder) Record(ctx context.Context, entityID, eventType, message string, details map[string]any) {
	fields := []log.Fielder{
		log.KV{K: "msg", V: message},
		log.KV{K: "event", V: eventType},
		log.KV{K: "entity_id", V: entityID},
	}
	if len(details) > 0 {
		fields = append(fields, log.KV{K: "details", V: details})
	}
	log.Info(ctx, fields...)
}

// Multi fans an event out to several recorders
type Multi []Recorder

// Record forwards to every recorder in order
func (m Multi) Record(ctx context.Context, entityID, eventType, message string, details map[string]any) {
	for _, r := range m {
		r.Record(ctx, entityID, eventType, message, details)
	}
}

// MemoryRecorder keeps events in memory; useful in tests
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryRecorder creates an empty memory recorder
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record appends the event
func (m *MemoryRecorder) Record(_ context.Context, entityID, eventType, message string, details map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{
		EntityID:   entityID,
		Type:       eventType,
		Message:    message,
		Details:    details,
		RecordedAt: time.Now().UTC(),
	})
}

// Events returns the recorded events, optionally filtered by type
func (m *MemoryRecorder) Events(eventType ...string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(eventType) == 0 {
		return append([]Event(nil), m.events...)
	}

	var out []Event
	for _, e := range m.events {
		for _, t := range eventType {
			if e.Type == t {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
