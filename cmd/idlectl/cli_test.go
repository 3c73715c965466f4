package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/cultivation-idle/internal/bootstrap"
	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	"github.com/KirkDiggler/cultivation-idle/internal/dice"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/combat"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/recipes"
	"github.com/KirkDiggler/cultivation-idle/internal/services"
	"github.com/KirkDiggler/cultivation-idle/internal/testutils"
)

type cliFixture struct {
	app   *app
	clock *clock.Fake
	rt    *bootstrap.Runtime
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()

	catalog, err := recipes.NewEmbedded()
	require.NoError(t, err)

	clk := clock.NewFake(testutils.Epoch)
	rt := &bootstrap.Runtime{
		Provider: services.NewProvider(&services.ProviderConfig{
			Recipes:           catalog,
			Clock:             clk,
			Source:            dice.NewMockSource(),
			SchedulerInterval: time.Minute,
		}),
	}

	a := newApp(func(context.Context) (*bootstrap.Runtime, error) {
		return rt, nil
	})
	t.Cleanup(a.close)

	return &cliFixture{app: a, clock: clk, rt: rt}
}

func (f *cliFixture) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd(f.app)
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestCharacterCreateThenShow(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.execute(t, "character", "create", "char-1", "Lin Feng",
		"--level", "5", "--luck", "95", "--resource", "spirit_herb=30")
	require.NoError(t, err)

	stdout, err := f.execute(t, "character", "show", "char-1")
	require.NoError(t, err)

	var view struct {
		Character struct {
			Name      string           `json:"name"`
			Level     int              `json:"level"`
			Resources map[string]int64 `json:"resources"`
		} `json:"character"`
		LuckBand string       `json:"luck_band"`
		Combat   combat.Stats `json:"combat"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, "Lin Feng", view.Character.Name)
	assert.Equal(t, 5, view.Character.Level)
	assert.Equal(t, int64(30), view.Character.Resources["spirit_herb"])
	assert.Equal(t, "blessed", view.LuckBand)
	assert.Equal(t, view.Combat.MaxHP, view.Combat.CurrentHP)
}

func TestCharacterCreateDuplicateFails(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.execute(t, "character", "create", "char-1", "Lin Feng")
	require.NoError(t, err)

	_, err = f.execute(t, "character", "create", "char-1", "Lin Feng")
	require.Error(t, err)
}

func TestCraftStartListCollect(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, f.rt.Provider.Characters.Create(context.Background(), testutils.CreateTestCharacter("char-1")))

	stdout, err := f.execute(t, "craft", "start", "char-1", "qi_gathering_pill")
	require.NoError(t, err)

	var started struct {
		SessionID string `json:"session_id"`
		State     string `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &started))
	require.NotEmpty(t, started.SessionID)
	assert.Equal(t, "pending", started.State)

	_, err = f.execute(t, "craft", "collect", "char-1", started.SessionID)
	require.Error(t, err, "collecting before the finish time must fail")

	stdout, err = f.execute(t, "craft", "list", "char-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, started.SessionID)

	f.clock.Advance(24 * time.Hour)

	stdout, err = f.execute(t, "craft", "show", "char-1", started.SessionID)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"state": "due"`)

	stdout, err = f.execute(t, "craft", "collect", "char-1", started.SessionID)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"session_id": "`+started.SessionID+`"`)

	_, err = f.execute(t, "craft", "collect", "char-1", started.SessionID)
	require.Error(t, err)
}

func TestReconcileReportsElapsedCycles(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, f.rt.Provider.Characters.Create(context.Background(), testutils.CreateTestCharacter("char-1")))

	stdout, err := f.execute(t, "reconcile", "char-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"first_observation": true`)

	f.clock.Advance(185 * time.Second)

	stdout, err = f.execute(t, "reconcile", "char-1")
	require.NoError(t, err)

	var report struct {
		Cycles           int   `json:"cycles"`
		ExperienceGained int64 `json:"experience_gained"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 3, report.Cycles)
	assert.Positive(t, report.ExperienceGained)
}

func TestReconcileUnknownCharacter(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.execute(t, "reconcile", "ghost")
	require.Error(t, err)
}

func TestPresenceTouchThenStatus(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, f.rt.Provider.Characters.Create(context.Background(), testutils.CreateTestCharacter("char-1")))

	_, err := f.execute(t, "presence", "touch", "ghost")
	require.Error(t, err, "unknown characters are not marked active")

	stdout, err := f.execute(t, "presence", "touch", "char-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "touched char-1")

	stdout, err = f.execute(t, "status")
	require.NoError(t, err)

	var status struct {
		IntervalSeconds float64  `json:"interval_seconds"`
		ActiveCount     int      `json:"active_count"`
		ActiveIDs       []string `json:"active_ids"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	assert.Equal(t, 60.0, status.IntervalSeconds)
	assert.Equal(t, 1, status.ActiveCount)
	assert.Equal(t, []string{"char-1"}, status.ActiveIDs)
}

func TestRecipesListsCatalog(t *testing.T) {
	f := newCLIFixture(t)

	stdout, err := f.execute(t, "recipes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "qi_gathering_pill")
	assert.Contains(t, stdout, "golden_core_pill")
}

func TestSparIsReproducibleWithSeed(t *testing.T) {
	f := newCLIFixture(t)
	ctx := context.Background()
	require.NoError(t, f.rt.Provider.Characters.Create(ctx, testutils.CreateTestCharacter("char-1")))
	require.NoError(t, f.rt.Provider.Characters.Create(ctx, testutils.CreateTestCharacter("char-2")))

	first, err := f.execute(t, "spar", "char-1", "char-2", "--seed", "7")
	require.NoError(t, err)
	second, err := f.execute(t, "spar", "char-1", "char-2", "--seed", "7")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, `"turns"`)
}

func TestSparEndsWhenOneSideFalls(t *testing.T) {
	resolver := combat.NewResolver(combat.DefaultConfig(), dice.NewMockSource())
	strong := &sparSide{id: "a", stats: combat.Stats{MaxHP: 100, CurrentHP: 100, PhysicalAttack: 200, MagicAttack: 200, CriticalDamage: 1.5}}
	weak := &sparSide{id: "b", stats: combat.Stats{MaxHP: 10, CurrentHP: 10, PhysicalAttack: 1, CriticalDamage: 1.5}}

	result := spar(resolver, strong, weak, 10)

	assert.Equal(t, "a", result.Winner)
	require.Len(t, result.Turns, 1)
	assert.Equal(t, 0, result.Turns[0].TargetHP)
}

func TestAuditRequiresArchive(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.execute(t, "audit", "char-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUDIT_SQLITE_PATH")
}

func TestOpenErrorIsReturned(t *testing.T) {
	a := newApp(func(context.Context) (*bootstrap.Runtime, error) {
		return nil, errors.New("REDIS_URL is required")
	})

	root := newRootCmd(a)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"status"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}
