package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/bft-labs/lectrec/internal/adapters/fs"
	"github.com/bft-labs/lectrec/internal/adapters/sqlite"
	"github.com/bft-labs/lectrec/internal/app"
	"github.com/bft-labs/lectrec/internal/cliconfig"
	"github.com/bft-labs/lectrec/internal/domain"
	"github.com/bft-labs/lectrec/internal/ports"
	"github.com/bft-labs/lectrec/pkg/log"
)

// env carries the resolved configuration into the commands.
type env struct {
	cfg cliconfig.Config
	log *log.ZerologAdapter
}

// sourceEvents warns when the file being edited changes underneath us.
type sourceEvents struct {
	app.NopEventHandler
	log ports.Logger
}

func (h sourceEvents) OnSourceModified(path string) {
	h.log.Warn("recording modified by another program", log.String("path", path))
}

// session is a file service wired to the on-disk adapters.
type session struct {
	*app.FileService
	recent *sqlite.RecentRepository
	logger ports.Logger
}

func (e *env) openSession() *session {
	s := &session{logger: e.log}
	opts := []app.Option{
		app.WithLogger(e.log),
		app.WithEventHandler(sourceEvents{log: e.log}),
	}

	recent, err := sqlite.Open(filepath.Join(e.cfg.StateDir, sqlite.DatabaseFile))
	if err != nil {
		e.log.Warn("recent recordings unavailable", log.Err(err))
	} else {
		s.recent = recent
		opts = append(opts, app.WithRecentRepository(recent))
	}
	if e.cfg.WatchSource {
		opts = append(opts, app.WithSourceWatcher(fs.NewSourceFileWatcher(e.log, fs.DefaultDebounce)))
	}

	s.FileService = app.NewFileService(fs.NewRecordingFileStore(), e.cfg.AppConfig(), opts...)
	return s
}

func (s *session) close() {
	if err := s.Shutdown(app.ShutdownTimeout); err != nil {
		s.logger.Warn("shutdown", log.Err(err))
	}
	if s.recent != nil {
		if err := s.recent.Close(); err != nil {
			s.logger.Warn("close recent recordings", log.Err(err))
		}
	}
}

func (s *session) open(ctx context.Context, path string) (*domain.Recording, error) {
	return s.OpenRecording(ctx, path).Wait(ctx)
}

func (s *session) save(ctx context.Context, path string, w io.Writer) error {
	_, err := s.SaveRecording(ctx, path, progressPrinter(w, "save "+path)).Wait(ctx)
	return err
}

// progressPrinter renders progress as a percentage on one terminal line.
func progressPrinter(w io.Writer, label string) ports.ProgressFunc {
	var mu sync.Mutex
	last := -1
	return func(f float64) {
		mu.Lock()
		defer mu.Unlock()
		pct := int(f * 100)
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(w, "\r%s: %3d%%", label, pct)
		if f >= 1 {
			fmt.Fprintln(w)
		}
	}
}
