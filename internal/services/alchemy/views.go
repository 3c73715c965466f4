package alchemy

import (
	"math"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/alchemy"
)

// SessionView is the progress of one session as seen by a player
type SessionView struct {
	SessionID        string           `json:"session_id"`
	CharacterID      string           `json:"character_id"`
	RecipeID         string           `json:"recipe_id"`
	Status           alchemy.Status   `json:"status"`
	State            string           `json:"state"`
	StartedAt        time.Time        `json:"started_at"`
	FinishAt         time.Time        `json:"finish_at"`
	RemainingSeconds int64            `json:"remaining_seconds"`
	SuccessRate      float64          `json:"success_rate"`
	Cost             map[string]int64 `json:"cost,omitempty"`
}

// ResultView is the outcome of a collected session
type ResultView struct {
	SessionID   string           `json:"session_id"`
	Success     bool             `json:"success"`
	Quality     *alchemy.Quality `json:"quality,omitempty"`
	ItemKey     string           `json:"item_key,omitempty"`
	ExpGained   int64            `json:"exp_gained"`
	CollectedAt time.Time        `json:"collected_at"`

	// Experience is the character total after crediting
	Experience int64 `json:"experience"`
}

// DueNotice reports a session that finished and waits for collection
type DueNotice struct {
	CharacterID string    `json:"character_id"`
	SessionID   string    `json:"session_id"`
	RecipeID    string    `json:"recipe_id"`
	FinishAt    time.Time `json:"finish_at"`
}

func remainingSeconds(d time.Duration) int64 {
	return int64(math.Ceil(d.Seconds()))
}

func newSessionView(sess *alchemy.Session, now time.Time) *SessionView {
	return &SessionView{
		SessionID:        sess.ID,
		CharacterID:      sess.OwnerID,
		RecipeID:         sess.RecipeID,
		Status:           sess.Status,
		State:            sess.State(now).Name(),
		StartedAt:        sess.StartedAt,
		FinishAt:         sess.FinishAt,
		RemainingSeconds: remainingSeconds(sess.Remaining(now)),
		SuccessRate:      sess.SuccessRate,
	}
}
