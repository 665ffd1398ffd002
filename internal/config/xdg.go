// Package config resolves pfdrill paths and settings from XDG locations, TOML and the environment.
package config

import (
	"os"
	"path/filepath"
)

const appName = "pfdrill"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	return xdgHome("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	return xdgHome("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgHome(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, fallback)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultDataDir is the root for everything pfdrill writes.
func DefaultDataDir() string {
	return filepath.Join(XDGDataHome(), appName)
}

// DefaultSpotsDir returns the directory scanned for range files.
func DefaultSpotsDir() string {
	return filepath.Join(DefaultDataDir(), "spots")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), appName+".db")
}

// DefaultFilesDir holds the JSON/CSV files of the files backend.
func DefaultFilesDir() string {
	return filepath.Join(DefaultDataDir(), "files")
}

// DefaultPackCacheDir caches downloaded range packs.
func DefaultPackCacheDir() string {
	return filepath.Join(DefaultDataDir(), "packs")
}
