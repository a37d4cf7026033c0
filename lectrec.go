// Package lectrec edits lecture recordings: pages of shapes, a timeline of
// drawing actions and the narration audio, kept in step across cuts,
// exports and page edits.
//
// Example usage:
//
//	svc := lectrec.New(lectrec.DefaultConfig())
//	defer svc.Shutdown(lectrec.ShutdownTimeout)
//
//	rec, err := svc.OpenRecording(ctx, "lecture.lrec").Wait(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := svc.Cut(lectrec.Interval{Begin: 90_000, End: 120_000}); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := svc.SaveRecording(ctx, "edited.lrec", nil).Wait(ctx); err != nil {
//	    log.Fatal(err)
//	}
package lectrec

import (
	"path/filepath"
	"time"

	"github.com/bft-labs/lectrec/internal/adapters/fs"
	"github.com/bft-labs/lectrec/internal/adapters/sqlite"
	"github.com/bft-labs/lectrec/internal/app"
	"github.com/bft-labs/lectrec/internal/domain"
	"github.com/bft-labs/lectrec/pkg/log"
)

type (
	// Service opens, edits and saves the selected recording.
	Service = app.FileService

	// Config holds the service settings. Use DefaultConfig for defaults.
	Config = app.Config

	// Option configures optional behavior of a Service.
	Option = app.Option

	// EventHandler receives service notifications.
	EventHandler = app.EventHandler

	// NopEventHandler ignores all events; embed it to handle only some.
	NopEventHandler = app.NopEventHandler

	// Recording is a lecture recording.
	Recording = domain.Recording

	// Interval is a millisecond range on the timeline.
	Interval = domain.Interval

	// RecentRecording is an entry of the recently opened list.
	RecentRecording = domain.RecentRecording

	// Logger is the structured logging interface.
	Logger = log.Logger
)

// ShutdownTimeout is the default time Shutdown waits for pending work.
const ShutdownTimeout = app.ShutdownTimeout

// Errors reported by the service, for use with errors.Is.
var (
	ErrIncompatibleFileFormat = domain.ErrIncompatibleFileFormat
	ErrRecordingEdit          = domain.ErrRecordingEdit
	ErrNoRecording            = domain.ErrNoRecording
	ErrServiceStopped         = domain.ErrServiceStopped
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return app.DefaultConfig()
}

// New creates a service that reads and writes recording files on disk.
func New(cfg Config, opts ...Option) *Service {
	return app.NewFileService(fs.NewRecordingFileStore(), cfg, opts...)
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return app.WithLogger(l)
}

// WithEventHandler sets the receiver of service events.
func WithEventHandler(h EventHandler) Option {
	return app.WithEventHandler(h)
}

// WithSourceWatching reports changes other programs make to the file of the
// selected recording through EventHandler.OnSourceModified.
func WithSourceWatching(debounce time.Duration) Option {
	return func(s *Service) {
		app.WithSourceWatcher(fs.NewSourceFileWatcher(nil, debounce))(s)
	}
}

// RecentList is the on-disk list of recently opened recordings.
type RecentList = sqlite.RecentRepository

// OpenRecentList opens the recent list stored in dir, creating it if needed.
// Pass it to WithRecentList and close it after the service has shut down.
func OpenRecentList(dir string) (*RecentList, error) {
	return sqlite.Open(filepath.Join(dir, sqlite.DatabaseFile))
}

// WithRecentList records opened recordings in l.
func WithRecentList(l *RecentList) Option {
	return app.WithRecentRepository(l)
}
