package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJSON(t *testing.T) {
	t.Run("partial file overrides only named fields", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"api_base_url":    "https://shop.example.edu/api",
			"request_timeout": "7s",
			"retry_backoff":   int64(50 * time.Millisecond),
		})

		var cfg Config
		cfg.LoadDefaults()
		require.NoError(t, parseJSON(&cfg, path))

		assert.Equal(t, "https://shop.example.edu/api", cfg.APIBaseURL)
		assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 50*time.Millisecond, cfg.RetryBackoff)
		assert.Equal(t, "campus_shop.db", cfg.DatabasePath)
	})

	t.Run("missing file", func(t *testing.T) {
		var cfg Config
		require.ErrorContains(t, parseJSON(&cfg, filepath.Join(t.TempDir(), "nope.json")), "read config")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		var cfg Config
		require.ErrorContains(t, parseJSON(&cfg, bad), "parse config")
	})

	t.Run("invalid duration", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"request_timeout": true})
		var cfg Config
		require.Error(t, parseJSON(&cfg, path))
	})
}

func TestLoad_JSONThenFlags(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"api_base_url":  "https://json.example/api",
		"database_path": "json.db",
	})

	cfg, err := Load(newFlagSet(t, "-c", path, "--db", "flag.db"))
	require.NoError(t, err)
	assert.Equal(t, "https://json.example/api", cfg.APIBaseURL)
	assert.Equal(t, "flag.db", cfg.DatabasePath)
}
