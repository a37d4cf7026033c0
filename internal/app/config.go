package app

import (
	"github.com/bft-labs/lectrec/internal/edit"
	"github.com/bft-labs/lectrec/internal/ports"
	"github.com/bft-labs/lectrec/pkg/log"
)

// Config holds the file service settings.
type Config struct {
	// HistoryLimit bounds the undo history per recording.
	HistoryLimit int

	// Workers is the number of background operations run at once.
	Workers int

	// RecentLimit is the number of recently opened recordings kept.
	RecentLimit int
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		HistoryLimit: edit.DefaultHistoryLimit,
		Workers:      2,
		RecentLimit:  10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.RecentLimit <= 0 {
		c.RecentLimit = d.RecentLimit
	}
	return c
}

// Option configures a FileService.
type Option func(*FileService)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l ports.Logger) Option {
	return func(s *FileService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEventHandler sets the receiver of service events.
func WithEventHandler(h EventHandler) Option {
	return func(s *FileService) {
		if h != nil {
			s.events = h
		}
	}
}

// WithSourceWatcher enables reporting of external changes to the selected
// recording's file.
func WithSourceWatcher(w ports.SourceWatcher) Option {
	return func(s *FileService) { s.watcher = w }
}

// WithRecentRepository enables the recently opened list.
func WithRecentRepository(r ports.RecentRepository) Option {
	return func(s *FileService) { s.recent = r }
}

func defaultLogger() ports.Logger {
	return log.NewNoopLogger()
}
