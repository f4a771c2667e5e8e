package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "starplate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":3001", cfg.ListenAddr)
	assert.Equal(t, BackendJSON, cfg.Backend)
	assert.Equal(t, "restaurants.json", cfg.RestaurantsFile)
	assert.Equal(t, "starredRestaurants.json", cfg.StarredFile)
	assert.True(t, cfg.MetricsEnabled())
	assert.Equal(t, 20, cfg.Burst())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("reads values and fills defaults", func(t *testing.T) {
		path := writeConfig(t, `
listen_addr: "127.0.0.1:9000"
backend: sqlite
data_dir: /var/lib/starplate
metrics: false
log_level: debug
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
		assert.Equal(t, BackendSQLite, cfg.Backend)
		assert.False(t, cfg.MetricsEnabled())
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, filepath.Join("/var/lib/starplate", "starplate.db"), cfg.SQLiteFile())
	})

	t.Run("keeps explicit zero rate burst", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "rate_limit: 5\nrate_burst: 0\n"))
		require.NoError(t, err)

		assert.Equal(t, 5.0, cfg.RateLimit)
		assert.Equal(t, 0, cfg.Burst())
	})

	t.Run("omitted rate burst defaults to 20", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "rate_limit: 5\n"))
		require.NoError(t, err)
		assert.Equal(t, 20, cfg.Burst())
	})

	t.Run("negative rate burst is rejected", func(t *testing.T) {
		_, err := Load(writeConfig(t, "rate_burst: -1\n"))
		assert.Error(t, err)
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty path without default file uses defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "listen_addr: [unclosed")

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		path := writeConfig(t, "backend: mongo\n")

		_, err := Load(path)
		assert.ErrorContains(t, err, "unknown backend")
	})

	t.Run("postgres needs a dsn", func(t *testing.T) {
		path := writeConfig(t, "backend: postgres\n")

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "data"

	assert.Equal(t, filepath.Join("data", "restaurants.json"), cfg.RestaurantsPath())
	assert.Equal(t, filepath.Join("data", "starredRestaurants.json"), cfg.StarredPath())

	cfg.StarredFile = "/abs/starred.json"
	assert.Equal(t, "/abs/starred.json", cfg.StarredPath())
}
