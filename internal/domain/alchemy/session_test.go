package alchemy_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/domain/alchemy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_StateTransitions(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := alchemy.NewSession("sess-1", "char-1", "qi_gathering_pill", start, start.Add(10*time.Minute), 0.8)

	pending, ok := sess.State(start.Add(4 * time.Minute)).(alchemy.Pending)
	require.True(t, ok)
	assert.Equal(t, 6*time.Minute, pending.Remaining)

	_, ok = sess.State(start.Add(10 * time.Minute)).(alchemy.DueForCollection)
	assert.True(t, ok)

	q := alchemy.QualityRare
	require.True(t, sess.Complete(alchemy.Outcome{Success: true, Quality: &q, ItemID: "qi_gathering_pill", ExpGained: 40}, start.Add(11*time.Minute)))
	assert.Equal(t, alchemy.StatusCompleted, sess.Status)

	collected, ok := sess.State(start.Add(time.Hour)).(alchemy.Collected)
	require.True(t, ok)
	assert.True(t, collected.Outcome.Success)
	assert.Equal(t, alchemy.QualityRare, *collected.Outcome.Quality)

	assert.False(t, sess.Complete(alchemy.Outcome{Success: false}, start.Add(2*time.Hour)))
	assert.Equal(t, alchemy.StatusCompleted, sess.Status)
	assert.Equal(t, int64(40), sess.ExpGained)
}

func TestSession_FailedOutcome(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := alchemy.NewSession("sess-1", "char-1", "qi_gathering_pill", start, start, 0.1)

	require.True(t, sess.Complete(alchemy.Outcome{Success: false, ExpGained: alchemy.FailureExp(41)}, start))
	assert.Equal(t, alchemy.StatusFailed, sess.Status)
	assert.Equal(t, int64(20), sess.ExpGained)
	assert.Nil(t, sess.ResultQuality)
	assert.Empty(t, sess.ItemID)
}

func TestNewSession_FinishNotBeforeStart(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := alchemy.NewSession("sess-1", "char-1", "r", start, start.Add(-time.Minute), 0.5)
	assert.Equal(t, start, sess.FinishAt)
}

func TestQuality_JSON(t *testing.T) {
	q := alchemy.QualityEpic
	data, err := json.Marshal(struct {
		Q *alchemy.Quality `json:"q"`
	}{Q: &q})
	require.NoError(t, err)
	assert.JSONEq(t, `{"q":"epic"}`, string(data))

	var out struct {
		Q alchemy.Quality `json:"q"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"q":"uncommon"}`), &out))
	assert.Equal(t, alchemy.QualityUncommon, out.Q)
	assert.Equal(t, "uncommon:epic", alchemy.ItemKey("uncommon", alchemy.QualityEpic))
}
