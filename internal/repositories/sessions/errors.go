package sessions

import (
	"github.com/KirkDiggler/cultivation-idle/internal/domain/alchemy"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
)

func capacityError(ownerID string, active, maxActive int) error {
	return engerr.Newf(engerr.CodeCapacityExceeded,
		"character %s already has %d active sessions", ownerID, active).
		WithMeta("character_id", ownerID).
		WithMeta("active", active).
		WithMeta("max", maxActive)
}

func insufficientError(ownerID string, missing map[string]int64) error {
	return engerr.Newf(engerr.CodeInsufficientMaterials,
		"character %s cannot cover the material cost", ownerID).
		WithMeta("character_id", ownerID).
		WithMeta("missing", missing)
}

func alreadyExistsError(id string) error {
	return engerr.AlreadyExistsf("session already exists: %s", id).
		WithMeta("session_id", id)
}

func alreadyCollectedError(sess *alchemy.Session) error {
	return engerr.Newf(engerr.CodeAlreadyCollected, "session %s was already collected", sess.ID).
		WithMeta("session_id", sess.ID).
		WithMeta("status", string(sess.Status))
}

// reserve validates a start against the owner's current state and deducts
// the cost in place
func reserve(ch *character.Character, active int, cost map[string]int64, maxActive int) error {
	if active >= maxActive {
		return capacityError(ch.ID, active, maxActive)
	}
	if missing := ch.MissingMaterials(cost); len(missing) > 0 {
		return insufficientError(ch.ID, missing)
	}
	return ch.Deduct(cost)
}
