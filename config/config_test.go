package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"REMOTE_DIRECTORY_KIND",
	"REMOTE_DIRECTORY_FILE",
	"REMOTE_DIRECTORY_SQLITE",
	"REMOTE_DIRECTORY_URL",
	"REMOTE_DIRECTORY_RATE",
	"REMOTE_DIRECTORY_WATCH",
	"REMOTE_SERVER_ADDR",
	"REMOTE_LOG_LEVEL",
	"REMOTE_LOG_FORMAT",
}

// clearEnv empties every variable Load reads for the duration of the test.
// Tests using it cannot run in parallel.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, DirectoryConfig{
		Kind:   KindFile,
		File:   "directory.toml",
		SQLite: "directory.db",
		Watch:  true,
	}, cfg.Directory)
	assert.Equal(t, ":8700", cfg.Server.Addr)
	assert.Equal(t, LogConfig{Level: "info", Format: "json"}, cfg.Log)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("REMOTE_DIRECTORY_KIND", "HTTP")
	t.Setenv("REMOTE_DIRECTORY_URL", "http://directory:8700")
	t.Setenv("REMOTE_DIRECTORY_RATE", "2.5")
	t.Setenv("REMOTE_DIRECTORY_WATCH", "false")
	t.Setenv("REMOTE_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("REMOTE_LOG_LEVEL", "debug")
	t.Setenv("REMOTE_LOG_FORMAT", "console")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, KindHTTP, cfg.Directory.Kind)
	assert.Equal(t, "http://directory:8700", cfg.Directory.URL)
	assert.InDelta(t, 2.5, cfg.Directory.Rate, 1e-9)
	assert.False(t, cfg.Directory.Watch)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, LogConfig{Level: "debug", Format: "console"}, cfg.Log)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("REMOTE_DIRECTORY_KIND", "ldap")
	t.Setenv("REMOTE_DIRECTORY_RATE", "-1")
	t.Setenv("REMOTE_DIRECTORY_WATCH", "sometimes")
	t.Setenv("REMOTE_LOG_LEVEL", "verbose")
	t.Setenv("REMOTE_LOG_FORMAT", "xml")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, KindFile, cfg.Directory.Kind)
	assert.Zero(t, cfg.Directory.Rate)
	assert.True(t, cfg.Directory.Watch)
	assert.Equal(t, LogConfig{Level: "info", Format: "json"}, cfg.Log)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	// Load does not override variables that are already set, so unset the
	// ones the file provides.
	for _, k := range []string{"REMOTE_DIRECTORY_KIND", "REMOTE_DIRECTORY_SQLITE"} {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("REMOTE_SERVER_ADDR", ":9999")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"REMOTE_DIRECTORY_KIND=sqlite\nREMOTE_DIRECTORY_SQLITE=/var/lib/remote/dir.db\nREMOTE_SERVER_ADDR=:1234\n",
	), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("REMOTE_DIRECTORY_KIND")
		_ = os.Unsetenv("REMOTE_DIRECTORY_SQLITE")
	})

	cfg := Load(path)

	assert.Equal(t, KindSQLite, cfg.Directory.Kind)
	assert.Equal(t, "/var/lib/remote/dir.db", cfg.Directory.SQLite)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}
