package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 20, cfg.Factors)
	assert.Equal(t, 400, cfg.MaxIter)
	assert.Equal(t, int64(42), cfg.RandomSeed)
	assert.Equal(t, 0.5, cfg.Alpha)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MODEL_FACTORS", "8")
	t.Setenv("GAMES_CSV", "/tmp/games.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 8, cfg.Factors)
	assert.Equal(t, "/tmp/games.csv", cfg.GamesCSV)
	assert.Equal(t, 400, cfg.MaxIter, "unset vars keep defaults")
}

func TestLoadYAMLOverridesEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: \"7070\"\nmax_iter: 100\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, 100, cfg.MaxIter)
	assert.Equal(t, 20, cfg.Factors, "fields absent from the file stay as loaded")
}

func TestLoadRejectsBadHyperparameters(t *testing.T) {
	t.Setenv("MODEL_FACTORS", "-1")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
