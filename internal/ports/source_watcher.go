package ports

import "context"

// SourceWatcher reports changes made by other programs to a recording file.
type SourceWatcher interface {
	// Watch starts watching path and calls fn after each external
	// modification. Watching stops when ctx is done. A later call replaces
	// the previous watch.
	Watch(ctx context.Context, path string, fn func(path string)) error

	// Close stops watching and releases resources.
	Close() error
}
