package alchemy

import (
	"time"
)

// Status is the lifecycle state of a session. Transitions only go from
// in_progress to one of the terminal states.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether the session was already collected
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Session is one time-gated crafting run
type Session struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	RecipeID    string    `json:"recipe_id"`
	Status      Status    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	FinishAt    time.Time `json:"finish_at"`
	SuccessRate float64   `json:"success_rate"`

	// Set on the terminal transition only
	ResultQuality *Quality   `json:"result_quality,omitempty"`
	ItemID        string     `json:"item_id,omitempty"`
	ExpGained     int64      `json:"exp_gained"`
	CollectedAt   *time.Time `json:"collected_at,omitempty"`
}

// NewSession creates an in-progress session. finishAt earlier than startedAt
// is raised to startedAt.
func NewSession(id, ownerID, recipeID string, startedAt, finishAt time.Time, successRate float64) *Session {
	if finishAt.Before(startedAt) {
		finishAt = startedAt
	}
	return &Session{
		ID:          id,
		OwnerID:     ownerID,
		RecipeID:    recipeID,
		Status:      StatusInProgress,
		StartedAt:   startedAt,
		FinishAt:    finishAt,
		SuccessRate: successRate,
	}
}

// Remaining returns how long until the session is due, never negative
func (s *Session) Remaining(now time.Time) time.Duration {
	if d := s.FinishAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// IsDue reports whether the session can be collected at now
func (s *Session) IsDue(now time.Time) bool {
	return s.Status == StatusInProgress && !now.Before(s.FinishAt)
}

// Outcome is the resolved result of a collected session
type Outcome struct {
	Success   bool
	Quality   *Quality
	ItemID    string
	ExpGained int64
}

// Complete records the outcome and moves the session to its terminal state.
// It returns false when the session was already terminal.
func (s *Session) Complete(out Outcome, at time.Time) bool {
	if s.Status.IsTerminal() {
		return false
	}

	s.Status = StatusFailed
	if out.Success {
		s.Status = StatusCompleted
		s.ItemID = out.ItemID
		s.ResultQuality = out.Quality
	}
	s.ExpGained = out.ExpGained
	s.CollectedAt = &at
	return true
}

// SameStart reports whether other records the same start as s, i.e. a
// replayed write rather than a different session under a reused ID
func (s *Session) SameStart(other *Session) bool {
	return s.ID == other.ID &&
		s.OwnerID == other.OwnerID &&
		s.RecipeID == other.RecipeID &&
		s.StartedAt.Equal(other.StartedAt)
}

// CompletedWith reports whether s was collected with exactly out at at
func (s *Session) CompletedWith(out Outcome, at time.Time) bool {
	if !s.Status.IsTerminal() || s.CollectedAt == nil || !s.CollectedAt.Equal(at) {
		return false
	}
	if (s.Status == StatusCompleted) != out.Success || s.ExpGained != out.ExpGained {
		return false
	}
	if !out.Success {
		return true
	}
	if s.ItemID != out.ItemID || (s.ResultQuality == nil) != (out.Quality == nil) {
		return false
	}
	return s.ResultQuality == nil || *s.ResultQuality == *out.Quality
}

// State is the lazily evaluated view of a session at a point in time:
// Pending, DueForCollection or Collected.
type State interface {
	isState()
	Name() string
}

// Pending means the session is still running
type Pending struct {
	Remaining time.Duration
}

// DueForCollection means the session finished and awaits collection
type DueForCollection struct{}

// Collected means the outcome was resolved
type Collected struct {
	Outcome Outcome
}

func (Pending) isState()          {}
func (DueForCollection) isState() {}
func (Collected) isState()        {}

func (Pending) Name() string          { return "pending" }
func (DueForCollection) Name() string { return "due" }
func (Collected) Name() string        { return "collected" }

// State evaluates the session at now
func (s *Session) State(now time.Time) State {
	if s.Status.IsTerminal() {
		return Collected{Outcome: Outcome{
			Success:   s.Status == StatusCompleted,
			Quality:   s.ResultQuality,
			ItemID:    s.ItemID,
			ExpGained: s.ExpGained,
		}}
	}
	if s.IsDue(now) {
		return DueForCollection{}
	}
	return Pending{Remaining: s.Remaining(now)}
}
