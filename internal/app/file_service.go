package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/lectrec/internal/domain"
	"github.com/bft-labs/lectrec/internal/edit"
	"github.com/bft-labs/lectrec/internal/ports"
)

// ErrNoRecording is returned when an operation needs a selected recording.
var ErrNoRecording = domain.ErrNoRecording

// FileService opens, edits and saves a single selected recording.
//
// Edits, undo and redo run synchronously and must come from the recording's
// owner. Open, save and export run on a bounded set of background workers and
// report through a Future. Exports work on a snapshot taken before the call
// returns, so the owner may keep editing.
type FileService struct {
	cfg     Config
	store   ports.RecordingStore
	watcher ports.SourceWatcher
	recent  ports.RecentRepository
	logger  ports.Logger
	events  EventHandler

	life   *Lifecycle
	sem    chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	selected   *domain.Recording
	saveHashes map[*domain.Recording]uint64
}

// NewFileService creates a service reading and writing through store.
func NewFileService(store ports.RecordingStore, cfg Config, opts ...Option) *FileService {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &FileService{
		cfg:        cfg,
		store:      store,
		logger:     defaultLogger(),
		events:     NopEventHandler{},
		sem:        make(chan struct{}, cfg.Workers),
		ctx:        ctx,
		cancel:     cancel,
		saveHashes: make(map[*domain.Recording]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.life = NewLifecycle(s.logger)
	return s
}

// SelectedRecording returns the selected recording, or nil.
func (s *FileService) SelectedRecording() *domain.Recording {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// OpenRecording reads the recording at path in the background. On success it
// waits for pending writes of the previously selected recording, then selects
// the new one. On failure nothing changes.
func (s *FileService) OpenRecording(ctx context.Context, path string) *Future[*domain.Recording] {
	f := newFuture[*domain.Recording]()
	if err := s.life.Begin(nil); err != nil {
		return failedFuture[*domain.Recording](err)
	}

	go func() {
		defer s.life.End(nil)

		rec, err := s.read(ctx, path)
		if err != nil {
			s.logger.Error("open recording failed", ports.String("path", path), ports.Err(err))
			f.resolve(nil, err)
			return
		}
		edit.NewManager(rec, s.cfg.HistoryLimit)

		if err := s.install(ctx, rec, true); err != nil {
			f.resolve(nil, err)
			return
		}
		s.logger.Info("recording opened",
			ports.String("path", path),
			ports.Int64("duration_ms", rec.Duration()),
			ports.Int("pages", rec.PageCount()),
			ports.Int("actions", rec.ActionCount()),
		)
		s.addRecent(ctx, rec, path)
		f.resolve(rec, nil)
	}()
	return f
}

func (s *FileService) read(ctx context.Context, path string) (*domain.Recording, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()
	return s.store.Read(ctx, path)
}

// SelectRecording makes rec the selected recording, for recordings that were
// not read from disk. It waits for pending writes of the previous selection.
func (s *FileService) SelectRecording(ctx context.Context, rec *domain.Recording) error {
	edit.ManagerFor(rec, s.cfg.HistoryLimit)
	return s.install(ctx, rec, false)
}

func (s *FileService) install(ctx context.Context, rec *domain.Recording, saved bool) error {
	if prev := s.SelectedRecording(); prev != nil && prev != rec {
		if err := s.life.WaitIdle(ctx, prev); err != nil {
			return err
		}
	}

	s.mu.Lock()
	prev := s.selected
	s.selected = rec
	if prev != nil && prev != rec {
		delete(s.saveHashes, prev)
	}
	if saved {
		s.saveHashes[rec] = rec.StateHash()
	}
	s.mu.Unlock()

	if prev != nil && prev != rec {
		s.events.OnRecordingClosed(prev)
	}
	s.watchSource(rec.SourceFile())
	s.events.OnRecordingSelected(rec)
	return nil
}

// CloseRecording deselects the current recording after its pending writes
// have finished.
func (s *FileService) CloseRecording(ctx context.Context) error {
	rec := s.SelectedRecording()
	if rec == nil {
		return nil
	}
	if err := s.life.WaitIdle(ctx, rec); err != nil {
		return err
	}

	s.mu.Lock()
	if s.selected != rec {
		s.mu.Unlock()
		return nil
	}
	s.selected = nil
	delete(s.saveHashes, rec)
	s.mu.Unlock()

	if s.watcher != nil {
		s.watcher.Close()
	}
	s.events.OnRecordingClosed(rec)
	s.logger.Info("recording closed", ports.String("path", rec.SourceFile()))
	return nil
}

// SaveRecording writes the selected recording to path in the background.
// The save hash is updated when the write succeeds.
func (s *FileService) SaveRecording(ctx context.Context, path string, progress ports.ProgressFunc) *Future[struct{}] {
	rec := s.SelectedRecording()
	if rec == nil {
		return failedFuture[struct{}](ErrNoRecording)
	}
	snap := rec.Snapshot()
	hash := snap.StateHash()

	return s.run(ctx, rec, progress, func(p *progressReporter) error {
		if err := s.store.Write(ctx, path, snap, p.report); err != nil {
			s.logger.Error("save recording failed", ports.String("path", path), ports.Err(err))
			return err
		}
		s.mu.Lock()
		s.saveHashes[rec] = hash
		s.mu.Unlock()
		if path == snap.SourceFile() {
			s.watchSource(path)
		}
		s.logger.Info("recording saved", ports.String("path", path), ports.Hash("hash", hash))
		return nil
	})
}

// SavePartialRecording exports the part [iv.Begin, iv.End) of the selected
// recording to path, with timestamps moved to start at zero. The interval is
// checked before the call returns. The selected recording is not changed.
func (s *FileService) SavePartialRecording(ctx context.Context, path string, iv domain.Interval, progress ports.ProgressFunc) (*Future[struct{}], error) {
	rec := s.SelectedRecording()
	if rec == nil {
		return nil, ErrNoRecording
	}
	if err := checkInterval("save partial", iv, rec.Duration()); err != nil {
		s.logger.Warn("export rejected", ports.Err(err))
		return nil, err
	}
	return s.export(ctx, rec, rec.Snapshot(), path, iv, progress), nil
}

// SplitRecording exports [iv.Begin, iv.End) to path like SavePartialRecording
// and cuts the same part out of the selected recording as an undoable edit.
// The cut is applied before the call returns; the export completes in the
// background.
func (s *FileService) SplitRecording(ctx context.Context, path string, iv domain.Interval, progress ports.ProgressFunc) (*Future[struct{}], error) {
	rec := s.SelectedRecording()
	if rec == nil {
		return nil, ErrNoRecording
	}
	if err := checkInterval("split", iv, rec.Duration()); err != nil {
		s.logger.Warn("split rejected", ports.Err(err))
		return nil, err
	}
	snap := rec.Snapshot()
	if err := s.execute("split", &edit.Cut{Interval: iv}); err != nil {
		return nil, err
	}
	return s.export(ctx, rec, snap, path, iv, progress), nil
}

func (s *FileService) export(ctx context.Context, rec, snap *domain.Recording, path string, iv domain.Interval, progress ports.ProgressFunc) *Future[struct{}] {
	return s.run(ctx, rec, progress, func(p *progressReporter) error {
		if err := edit.NewManager(snap, 1).Execute(&edit.Trim{Interval: iv}); err != nil {
			return err
		}
		if err := s.store.Write(ctx, path, snap, p.report); err != nil {
			s.logger.Error("export failed", ports.String("path", path), ports.Err(err))
			return err
		}
		s.logger.Info("recording exported",
			ports.String("path", path),
			ports.Stringer("interval", iv),
			ports.Int64("duration_ms", snap.Duration()),
		)
		return nil
	})
}

// run executes fn on a worker as an operation pending on rec.
func (s *FileService) run(ctx context.Context, rec *domain.Recording, progress ports.ProgressFunc, fn func(*progressReporter) error) *Future[struct{}] {
	if err := s.life.Begin(rec); err != nil {
		return failedFuture[struct{}](err)
	}
	f := newFuture[struct{}]()
	p := newProgressReporter(progress)

	go func() {
		defer s.life.End(rec)

		if err := s.acquire(ctx); err != nil {
			f.resolve(struct{}{}, err)
			return
		}
		err := fn(p)
		s.release()
		if err == nil {
			p.done()
		}
		f.resolve(struct{}{}, err)
	}()
	return f
}

func (s *FileService) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *FileService) release() {
	<-s.sem
}

// GetRecordingSaveHash returns the state hash rec had when it was last read
// or saved successfully.
func (s *FileService) GetRecordingSaveHash(rec *domain.Recording) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.saveHashes[rec]
	return h, ok
}

// HasUnsavedChanges reports whether rec differs from its last saved state.
// A recording that was never saved always has unsaved changes.
func (s *FileService) HasUnsavedChanges(rec *domain.Recording) bool {
	h, ok := s.GetRecordingSaveHash(rec)
	return !ok || h != rec.StateHash()
}

// RecentRecordings returns the recently opened recordings, most recent first.
func (s *FileService) RecentRecordings(ctx context.Context) ([]domain.RecentRecording, error) {
	if s.recent == nil {
		return nil, nil
	}
	return s.recent.List(ctx, s.cfg.RecentLimit)
}

func (s *FileService) addRecent(ctx context.Context, rec *domain.Recording, path string) {
	if s.recent == nil {
		return
	}
	entry := domain.RecentRecording{
		Path:     path,
		ID:       rec.Header().ID,
		Duration: rec.Duration(),
		OpenedAt: time.Now(),
	}
	if err := s.recent.Add(ctx, entry); err != nil {
		s.logger.Warn("update recent recordings failed", ports.Err(err))
		return
	}
	if err := s.recent.Prune(ctx, s.cfg.RecentLimit); err != nil {
		s.logger.Warn("prune recent recordings failed", ports.Err(err))
	}
}

func (s *FileService) watchSource(path string) {
	if s.watcher == nil || path == "" {
		return
	}
	err := s.watcher.Watch(s.ctx, path, func(p string) {
		s.events.OnSourceModified(p)
	})
	if err != nil {
		s.logger.Warn("watch source file failed", ports.String("path", path), ports.Err(err))
	}
}

// Shutdown stops accepting background work and waits up to timeout for
// pending operations.
func (s *FileService) Shutdown(timeout time.Duration) error {
	if err := s.life.TransitionTo(StateStopping, "shutdown requested"); err != nil {
		return err
	}
	if s.watcher != nil {
		s.watcher.Close()
	}
	err := s.life.WaitWithTimeout(timeout)
	s.cancel()
	_ = s.life.TransitionTo(StateStopped, "shutdown complete")
	return err
}
