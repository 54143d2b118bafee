package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "medium", cfg.Difficulty)
	assert.Equal(t, 10, cfg.JitterMax)
	assert.Equal(t, 0, cfg.TableCapacity)
	assert.Equal(t, 500*time.Millisecond, cfg.ThinkDelay)
	assert.Equal(t, time.Duration(0), cfg.SearchTimeout)
	assert.Equal(t, "", cfg.StorePath)
	assert.False(t, cfg.Debug)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHESS_DIFFICULTY", "master")
	t.Setenv("CHESS_JITTER_MAX", "0")
	t.Setenv("CHESS_SEARCH_TIMEOUT", "30s")
	t.Setenv("CHESS_DEBUG", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "master", cfg.Difficulty)
	assert.Equal(t, 0, cfg.JitterMax)
	assert.Equal(t, 30*time.Second, cfg.SearchTimeout)
	assert.True(t, cfg.Debug)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.yaml")
	body := "difficulty: hard\nthink-delay: 0s\nstore-path: /tmp/analyses.db\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hard", cfg.Difficulty)
	assert.Equal(t, time.Duration(0), cfg.ThinkDelay)
	assert.Equal(t, "/tmp/analyses.db", cfg.StorePath)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
