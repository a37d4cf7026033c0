package cliconfig

import (
	"path/filepath"
	"testing"

	"github.com/bft-labs/lectrec/internal/edit"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HistoryLimit != edit.DefaultHistoryLimit {
		t.Errorf("HistoryLimit = %v, want %v", cfg.HistoryLimit, edit.DefaultHistoryLimit)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %v, want 2", cfg.Workers)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if !cfg.WatchSource {
		t.Error("WatchSource = false, want true")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := DefaultConfig()
		c.StateDir = "/tmp/state"
		return c
	}

	tests := []struct {
		name      string
		modify    func(*Config)
		wantErr   bool
		wantLevel string
	}{
		{name: "defaults", modify: func(*Config) {}, wantLevel: "info"},
		{name: "zero history limit", modify: func(c *Config) { c.HistoryLimit = 0 }, wantErr: true},
		{name: "negative workers", modify: func(c *Config) { c.Workers = -1 }, wantErr: true},
		{name: "zero recent limit", modify: func(c *Config) { c.RecentLimit = 0 }, wantErr: true},
		{name: "unknown log level", modify: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
		{name: "log level normalized", modify: func(c *Config) { c.LogLevel = " DEBUG " }, wantLevel: "debug"},
		{name: "empty log level", modify: func(c *Config) { c.LogLevel = "" }, wantLevel: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.LogLevel != tt.wantLevel {
				t.Errorf("LogLevel = %q, want %q", c.LogLevel, tt.wantLevel)
			}
		})
	}
}

func TestConfig_Validate_DerivesStateDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if want := filepath.Join(home, DefaultDirName); c.StateDir != want {
		t.Errorf("StateDir = %v, want %v", c.StateDir, want)
	}

	c2 := DefaultConfig()
	c2.StateDir = "/state"
	if err := c2.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c2.StateDir != "/state" {
		t.Errorf("StateDir = %v, want /state", c2.StateDir)
	}
}

func TestConfig_AppConfig(t *testing.T) {
	c := Config{HistoryLimit: 7, Workers: 3, RecentLimit: 4}
	got := c.AppConfig()

	if got.HistoryLimit != 7 || got.Workers != 3 || got.RecentLimit != 4 {
		t.Errorf("AppConfig() = %+v", got)
	}
}
