package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvSpotsDir    = "PFDRILL_SPOTS_DIR"
	EnvStore       = "PFDRILL_STORE"
	EnvStorePath   = "PFDRILL_STORE_PATH"
	EnvDatabaseURL = "PFDRILL_DATABASE_URL"
	EnvAddr        = "PFDRILL_ADDR"
)

// Backend names a persistence implementation.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendFiles    Backend = "files"
	BackendPostgres Backend = "postgres"
)

// ParseBackend accepts a backend name, case-insensitively.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendSQLite, BackendFiles, BackendPostgres:
		return b, nil
	case "":
		return BackendSQLite, nil
	default:
		return "", fmt.Errorf("unknown store backend %q (want sqlite, files or postgres)", s)
	}
}

// LoadDotEnv loads .env from the working directory. A missing file is ignored
// and variables already set win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Resolved holds effective settings after merging defaults, file and environment.
type Resolved struct {
	SpotsDir    string
	Sources     []string
	Scenarios   []string
	Seed        int64
	Backend     Backend
	StorePath   string
	DatabaseURL string
	KeepDays    int
	Addr        string
}

// DefaultAddr is the listen address of the HTTP server.
const DefaultAddr = "127.0.0.1:8080"

// Resolve merges defaults, the config file and the environment in increasing
// precedence. Command-line flags are applied by the caller.
func Resolve(file FileConfig, getenv func(string) string) (Resolved, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	r := Resolved{
		SpotsDir:  DefaultSpotsDir(),
		Backend:   BackendSQLite,
		Addr:      DefaultAddr,
		Sources:   file.Drill.Sources,
		Scenarios: file.Drill.Scenarios,
	}
	if file.Drill.SpotsDir != nil {
		r.SpotsDir = expandHome(*file.Drill.SpotsDir)
	}
	if file.Drill.Seed != nil {
		r.Seed = *file.Drill.Seed
	}
	if file.Store.Backend != nil {
		b, err := ParseBackend(*file.Store.Backend)
		if err != nil {
			return Resolved{}, err
		}
		r.Backend = b
	}
	if file.Store.Path != nil {
		r.StorePath = expandHome(*file.Store.Path)
	}
	if file.Store.DatabaseURL != nil {
		r.DatabaseURL = *file.Store.DatabaseURL
	}
	if file.History.KeepDays != nil {
		r.KeepDays = *file.History.KeepDays
	}
	if file.Server.Addr != nil {
		r.Addr = *file.Server.Addr
	}

	if v := getenv(EnvSpotsDir); v != "" {
		r.SpotsDir = expandHome(v)
	}
	if v := getenv(EnvStore); v != "" {
		b, err := ParseBackend(v)
		if err != nil {
			return Resolved{}, fmt.Errorf("%s: %w", EnvStore, err)
		}
		r.Backend = b
	}
	if v := getenv(EnvStorePath); v != "" {
		r.StorePath = expandHome(v)
	}
	if v := getenv(EnvDatabaseURL); v != "" {
		r.DatabaseURL = v
	}
	if v := getenv(EnvAddr); v != "" {
		r.Addr = v
	}
	return r, nil
}

// StoreLocation returns the path or DSN for the selected backend, falling back
// to its XDG default.
func (r Resolved) StoreLocation() string {
	switch r.Backend {
	case BackendPostgres:
		return r.DatabaseURL
	case BackendFiles:
		if r.StorePath != "" {
			return r.StorePath
		}
		return DefaultFilesDir()
	default:
		if r.StorePath != "" {
			return r.StorePath
		}
		return DefaultDBPath()
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	return home + strings.TrimPrefix(p, "~")
}
