package presence

//go:generate mockgen -destination=mock/mock.go -package=mockpresence -source=interface.go

import (
	"context"
	"time"
)

// DefaultWindow is how long a heartbeat keeps a character active
const DefaultWindow = 5 * time.Minute

// Source reports which characters are currently active. A character is
// active while its last heartbeat is within the window.
type Source interface {
	// ListActiveIDs returns active character ids in ascending order
	ListActiveIDs(ctx context.Context) ([]string, error)

	// Touch records a heartbeat for id at the current time
	Touch(ctx context.Context, id string) error
}

// activeKey is the sorted set of heartbeats scored by unix seconds
const activeKey = "presence:active"
