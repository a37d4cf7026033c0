package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (LECTREC_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("state-dir", os.Getenv("LECTREC_STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", os.Getenv("LECTREC_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("history-limit", os.Getenv("LECTREC_HISTORY_LIMIT"), &cfg.HistoryLimit); err != nil {
		return err
	}
	if err := s.setIntFromString("workers", os.Getenv("LECTREC_WORKERS"), &cfg.Workers); err != nil {
		return err
	}
	if err := s.setIntFromString("recent-limit", os.Getenv("LECTREC_RECENT_LIMIT"), &cfg.RecentLimit); err != nil {
		return err
	}

	s.setBoolFromString("watch-source", os.Getenv("LECTREC_WATCH_SOURCE"), &cfg.WatchSource)

	return nil
}
