package ports

import (
	"context"

	"github.com/bft-labs/lectrec/internal/domain"
)

// ProgressFunc receives the fraction of a long operation that is done, in
// [0, 1]. It is called on a background goroutine.
type ProgressFunc func(fraction float64)

// RecordingStore reads and writes recording files.
type RecordingStore interface {
	// Read decodes the recording stored at path.
	// Format problems are reported as *domain.IncompatibleFileFormatError.
	Read(ctx context.Context, path string) (*domain.Recording, error)

	// Write encodes rec to path. The file only appears under path once it has
	// been written completely; a failed write leaves no file behind.
	// rec is only read.
	Write(ctx context.Context, path string, rec *domain.Recording, progress ProgressFunc) error
}
