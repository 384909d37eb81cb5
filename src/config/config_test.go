package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-search/src/search"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFileKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, "search:\n  boost_factor: 2\nstorage:\n  driver: memory\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Search.BoostFactor)
	assert.Equal(t, search.DefaultMinTermLength, cfg.Search.MinTermLength)
	assert.Equal(t, search.DefaultSearchLimit, cfg.Search.SearchLimit)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "8990", cfg.Server.Port)
	assert.False(t, cfg.Debug())
}

func TestLoadFileReplacesInvalidSearchParams(t *testing.T) {
	path := writeConfig(t, "search:\n  boost_factor: -1\n  search_limit: 0\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, search.DefaultBoostFactor, cfg.Search.BoostFactor)
	assert.Equal(t, search.DefaultSearchLimit, cfg.Search.SearchLimit)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, "search: [not, a, map"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "ai:\n  model: from-file\n  api_key: file-key\nlogging:\n  level: debug\n")
	t.Setenv("AI_MODEL", "from-env")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("PORT", "9000")
	t.Setenv("CHAT_SEARCH_DB", "/tmp/env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AI.Model)
	assert.Equal(t, "file-key", cfg.AI.APIKey)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/tmp/env.db", cfg.Storage.Path)
	assert.True(t, cfg.Debug())
}

func TestProjectConfigParses(t *testing.T) {
	cfg, err := LoadFile("../../config/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, search.DefaultParams(), cfg.Search)
}
