// Package progress catches a character up on the unattended cultivation
// cycles that elapsed since it was last processed.
package progress

import (
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
)

// DefaultInterval is the length of one cultivation cycle
const DefaultInterval = 60 * time.Second

// Gain is what one cycle produced
type Gain struct {
	Experience   int64
	SpiritStones int64
	Events       []string
}

// Effect applies one cycle of progress to ch and reports what it granted
type Effect func(ch *character.Character) Gain

// CycleReport summarizes one reconciliation
type CycleReport struct {
	CharacterID string `json:"character_id"`
	Cycles      int    `json:"cycles"`

	// FirstObservation is set when the character had no LastTickAt yet
	FirstObservation bool `json:"first_observation"`

	// DelayConsumed is set when a doubled cycle was processed
	DelayConsumed bool `json:"delay_consumed"`

	ExperienceGained   int64     `json:"experience_gained"`
	SpiritStonesGained int64     `json:"spirit_stones_gained"`
	Events             []string  `json:"events,omitempty"`
	LastTickAt         time.Time `json:"last_tick_at"`
}

// Reconciler computes catch-up cycles on fixed-length boundaries
type Reconciler struct {
	interval time.Duration
}

// NewReconciler creates a reconciler; a non-positive interval uses DefaultInterval
func NewReconciler(interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reconciler{interval: interval}
}

// Interval returns the base cycle length
func (r *Reconciler) Interval() time.Duration {
	return r.interval
}

// Reconcile advances ch to now. LastTickAt only moves forward by whole
// effective intervals and never past now; effect runs once per cycle.
// ch is mutated in place, so callers pass a copy they can discard.
func (r *Reconciler) Reconcile(ch *character.Character, now time.Time, effect Effect) (*CycleReport, error) {
	if ch == nil {
		return nil, engerr.InvalidArgument("character cannot be nil")
	}

	report := &CycleReport{CharacterID: ch.ID}

	if ch.LastTickAt == nil {
		first := now
		ch.LastTickAt = &first
		report.FirstObservation = true
		report.LastTickAt = now
		return report, nil
	}

	last := *ch.LastTickAt
	if now.Before(last) {
		return nil, engerr.InvalidStatef("character %s last ticked in the future", ch.ID).
			WithMeta("character_id", ch.ID).
			WithMeta("last_tick_at", last).
			WithMeta("now", now)
	}

	effective := r.interval
	if ch.DelayActive {
		effective *= 2
	}

	elapsed := now.Sub(last)
	if elapsed < effective {
		report.LastTickAt = last
		return report, nil
	}

	var cycles int
	if ch.DelayActive {
		cycles = 1
		ch.DelayActive = false
		report.DelayConsumed = true
	} else {
		cycles = int(elapsed / r.interval)
	}

	// A cycle that arms the delay ends the batch; the doubled interval
	// applies from that boundary on and the rest is caught up later.
	processed := 0
	for processed < cycles {
		processed++
		if effect == nil {
			continue
		}
		gain := effect(ch)
		report.ExperienceGained += gain.Experience
		report.SpiritStonesGained += gain.SpiritStones
		report.Events = append(report.Events, gain.Events...)
		if ch.DelayActive {
			break
		}
	}
	cycles = processed
	last = last.Add(time.Duration(cycles) * effective)
	ch.LastTickAt = &last

	report.Cycles = cycles
	report.LastTickAt = last
	return report, nil
}
