package sessions

//go:generate mockgen -destination=mock/mock.go -package=mocksessions -source=interface.go

import (
	"context"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/alchemy"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
)

// Repository persists alchemy sessions. The two write operations also touch
// the owning character and are atomic: either both records change or
// neither does.
type Repository interface {
	// Get retrieves a session by ID
	Get(ctx context.Context, id string) (*alchemy.Session, error)

	// ListByOwner returns the owner's sessions ordered by start time
	ListByOwner(ctx context.Context, ownerID string) ([]*alchemy.Session, error)

	// CountActive returns how many of the owner's sessions are in progress
	CountActive(ctx context.Context, ownerID string) (int, error)

	// CreateWithDeduction checks the owner's capacity and materials, deducts
	// cost and stores sess. It returns the updated owner. Replaying the same
	// start returns the owner unchanged; a different session under the same
	// ID fails with already_exists.
	CreateWithDeduction(ctx context.Context, sess *alchemy.Session, cost map[string]int64, maxActive int) (*character.Character, error)

	// Complete moves the owner's session to its terminal state and credits
	// the outcome to the owner. Replaying the same outcome and time returns
	// the stored session without crediting again; any other call on a
	// terminal session fails with already_collected.
	Complete(ctx context.Context, ownerID, sessionID string, out alchemy.Outcome, at time.Time) (*alchemy.Session, *character.Character, error)
}

const kind = "session"

// Key is the Redis key a session is stored under
func Key(id string) string {
	return "alchemy_session:" + id
}

func ownerKey(ownerID string) string {
	return "character:" + ownerID + ":sessions"
}

func activeKey(ownerID string) string {
	return "character:" + ownerID + ":sessions:active"
}
