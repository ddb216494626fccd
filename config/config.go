// Package config loads runtime settings from .env files and the
// environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Directory backend kinds.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindHTTP   = "http"
)

// Config is the central typed configuration struct.
type Config struct {
	Directory DirectoryConfig
	Server    ServerConfig
	Log       LogConfig
}

// DirectoryConfig selects and configures the naming directory backend.
type DirectoryConfig struct {
	Kind   string  // memory | file | sqlite | http
	File   string  // TOML or YAML file for the file backend
	SQLite string  // database path for the sqlite backend
	URL    string  // base URL for the http backend
	Rate   float64 // client requests per second for the http backend, 0 = unlimited
	Watch  bool    // reload the file backend on change
}

type ServerConfig struct {
	Addr string
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

// Load reads .env (if present) and populates a Config from environment
// variables. Variables already set in the environment win over .env files.
//
//	cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		Directory: DirectoryConfig{
			Kind:   oneOf("REMOTE_DIRECTORY_KIND", KindFile, KindMemory, KindFile, KindSQLite, KindHTTP),
			File:   env("REMOTE_DIRECTORY_FILE", "directory.toml"),
			SQLite: env("REMOTE_DIRECTORY_SQLITE", "directory.db"),
			URL:    env("REMOTE_DIRECTORY_URL", ""),
			Rate:   envFloat("REMOTE_DIRECTORY_RATE", 0),
			Watch:  envBool("REMOTE_DIRECTORY_WATCH", true),
		},
		Server: ServerConfig{
			Addr: env("REMOTE_SERVER_ADDR", ":8700"),
		},
		Log: LogConfig{
			Level:  oneOf("REMOTE_LOG_LEVEL", "info", "debug", "info", "warn", "error"),
			Format: oneOf("REMOTE_LOG_FORMAT", "json", "json", "console"),
		},
	}
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}

// oneOf returns the lower-cased value of key when it is one of allowed.
func oneOf(key, fallback string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}
