package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Drill   DrillConfig   `toml:"drill"`
	Store   StoreConfig   `toml:"store"`
	History HistoryConfig `toml:"history"`
	Server  ServerConfig  `toml:"server"`
}

// DrillConfig maps drill-related settings.
type DrillConfig struct {
	SpotsDir  *string  `toml:"spots-dir"`
	Sources   []string `toml:"sources"`
	Scenarios []string `toml:"scenarios"`
	Seed      *int64   `toml:"seed"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend     *string `toml:"backend"`
	Path        *string `toml:"path"`
	DatabaseURL *string `toml:"database-url"`
}

// HistoryConfig maps history maintenance settings.
type HistoryConfig struct {
	// KeepDays prunes records older than this many days on startup when set.
	KeepDays *int `toml:"keep-days"`
}

// ServerConfig maps HTTP server settings.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

func (c FileConfig) validate() error {
	if c.Store.Backend != nil {
		if _, err := ParseBackend(*c.Store.Backend); err != nil {
			return err
		}
	}
	if c.History.KeepDays != nil && *c.History.KeepDays < 0 {
		return fmt.Errorf("history keep-days must be non-negative")
	}
	return nil
}
