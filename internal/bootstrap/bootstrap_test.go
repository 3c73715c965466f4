package bootstrap_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/cultivation-idle/internal/bootstrap"
	"github.com/KirkDiggler/cultivation-idle/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Redis.URL = ""
	return cfg
}

func TestNew_InMemoryWithArchive(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audit.SQLitePath = filepath.Join(t.TempDir(), "audit.db")

	rt, err := bootstrap.New(context.Background(), cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	assert.Nil(t, rt.Redis)
	assert.NotNil(t, rt.Archive)
	assert.NotNil(t, rt.Provider.Scheduler)
	assert.Len(t, rt.Provider.Recipes.List(), 5)
}

func TestNew_RequireRedis(t *testing.T) {
	_, err := bootstrap.New(context.Background(), testConfig(t), true)
	assert.Error(t, err)
}

func TestConnectRedis_BadURL(t *testing.T) {
	_, err := bootstrap.ConnectRedis(context.Background(), "not a url")
	assert.Error(t, err)
}
