package audit_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/audit"
	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecorder_FiltersByType(t *testing.T) {
	rec := audit.NewMemoryRecorder()
	ctx := context.Background()

	rec.Record(ctx, "char-1", audit.EventAlchemyStarted, "started", nil)
	rec.Record(ctx, "char-1", audit.EventAlchemyDue, "due", map[string]any{"session_id": "s-1"})

	assert.Len(t, rec.Events(), 2)
	due := rec.Events(audit.EventAlchemyDue)
	require.Len(t, due, 1)
	assert.Equal(t, "s-1", due[0].Details["session_id"])
}

func TestMulti_ForwardsToAll(t *testing.T) {
	a, b := audit.NewMemoryRecorder(), audit.NewMemoryRecorder()
	audit.Multi{a, audit.Nop{}, b}.Record(context.Background(), "char-1", audit.EventCycleProcessed, "ok", nil)

	assert.Len(t, a.Events(), 1)
	assert.Len(t, b.Events(), 1)
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))

	rec, err := audit.OpenSQLite(filepath.Join(t.TempDir(), "audit.db"), clk)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	rec.Record(ctx, "char-1", audit.EventAlchemyStarted, "started qi pill", map[string]any{"recipe_id": "qi_gathering_pill"})
	clk.Advance(time.Minute)
	rec.Record(ctx, "char-1", audit.EventAlchemyCollected, "collected qi pill", nil)
	rec.Record(ctx, "char-2", audit.EventAlchemyStarted, "other", nil)

	events, err := rec.List(ctx, "char-1", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.EventAlchemyCollected, events[0].Type)
	assert.Equal(t, audit.EventAlchemyStarted, events[1].Type)
	assert.Equal(t, "qi_gathering_pill", events[1].Details["recipe_id"])
	assert.True(t, events[1].RecordedAt.Equal(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)))
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := audit.OpenSQLite(" ", nil)
	assert.Error(t, err)
}
