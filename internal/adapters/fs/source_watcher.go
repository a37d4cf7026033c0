package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/lectrec/internal/ports"
	"github.com/bft-labs/lectrec/pkg/log"
)

// DefaultDebounce is the delay between the last file event and the check.
const DefaultDebounce = 100 * time.Millisecond

// SourceFileWatcher implements ports.SourceWatcher with fsnotify.
// It watches the directory of the file so that atomic replacements
// (write to temp, rename) are seen, and only reports a change when the
// file's size or modification time differs from what it was when watching
// started.
type SourceFileWatcher struct {
	logger   ports.Logger
	debounce time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	timer    *time.Timer
	baseline fileStamp
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

// NewSourceFileWatcher creates a watcher. A zero debounce selects
// DefaultDebounce.
func NewSourceFileWatcher(logger ports.Logger, debounce time.Duration) *SourceFileWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &SourceFileWatcher{logger: logger, debounce: debounce}
}

// Watch starts watching path, replacing any previous watch.
func (w *SourceFileWatcher) Watch(ctx context.Context, path string, fn func(path string)) error {
	w.stop()

	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.baseline = stat(path)
	w.mu.Unlock()

	w.wg.Add(1)
	go w.watchLoop(watchCtx, watcher, path, fn)
	return nil
}

// Close stops watching.
func (w *SourceFileWatcher) Close() error {
	w.stop()
	return nil
}

func (w *SourceFileWatcher) stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *SourceFileWatcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, fn func(string)) {
	defer w.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.debounceCheck(ctx, path, fn)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("source watcher error", log.String("path", path), log.Err(err))
		}
	}
}

func (w *SourceFileWatcher) debounceCheck(ctx context.Context, path string, fn func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		now := stat(path)
		w.mu.Lock()
		changed := !now.same(w.baseline)
		w.baseline = now
		w.mu.Unlock()
		if changed {
			w.logger.Info("source file changed externally", log.String("path", path))
			fn(path)
		}
	})
}

func (s fileStamp) same(o fileStamp) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

func stat(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{size: -1}
	}
	return fileStamp{size: info.Size(), modTime: info.ModTime()}
}
