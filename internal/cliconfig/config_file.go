package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config for TOML. Pointers distinguish unset booleans.
type FileConfig struct {
	StateDir     string `toml:"state_dir"`
	HistoryLimit int    `toml:"history_limit"`
	Workers      int    `toml:"workers"`
	RecentLimit  int    `toml:"recent_limit"`
	LogLevel     string `toml:"log_level"`
	WatchSource  *bool  `toml:"watch_source"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.lectrec/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, DefaultDirName, "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("history-limit", fc.HistoryLimit, &cfg.HistoryLimit)
	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setInt("recent-limit", fc.RecentLimit, &cfg.RecentLimit)

	s.setBool("watch-source", fc.WatchSource, &cfg.WatchSource)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
