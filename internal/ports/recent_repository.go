package ports

import (
	"context"

	"github.com/bft-labs/lectrec/internal/domain"
)

// RecentRepository persists the recently opened recordings.
type RecentRepository interface {
	// Add records that r was opened. An existing entry for the same path is
	// replaced.
	Add(ctx context.Context, r domain.RecentRecording) error

	// List returns up to limit entries, most recently opened first.
	List(ctx context.Context, limit int) ([]domain.RecentRecording, error)

	// Remove deletes the entry for path, if any.
	Remove(ctx context.Context, path string) error

	// Prune keeps only the keep most recently opened entries.
	Prune(ctx context.Context, keep int) error
}
