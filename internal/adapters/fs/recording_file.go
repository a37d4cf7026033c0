package fs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/lectrec/internal/domain"
	"github.com/bft-labs/lectrec/internal/ports"
	"github.com/bft-labs/lectrec/pkg/recfile"
)

// RecordingFileStore implements ports.RecordingStore on the local file system.
type RecordingFileStore struct{}

// NewRecordingFileStore creates a new RecordingFileStore.
func NewRecordingFileStore() *RecordingFileStore {
	return &RecordingFileStore{}
}

// Read decodes the recording stored at path and remembers path as its source.
func (s *RecordingFileStore) Read(ctx context.Context, path string) (*domain.Recording, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rec, err := recfile.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rec.SetSourceFile(path)
	return rec, nil
}

// Write encodes rec into a temporary file next to path, syncs it and renames
// it over path. On any failure, including cancellation of ctx before the
// rename, the temporary file is removed and path is left untouched.
func (s *RecordingFileStore) Write(ctx context.Context, path string, rec *domain.Recording, progress ports.ProgressFunc) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	// The final report is held back until the file is in place.
	encodeProgress := func(f float64) {
		if progress != nil && f < 1 {
			progress(f)
		}
	}

	w := bufio.NewWriter(tmp)
	if err := recfile.Encode(w, rec, encodeProgress); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}

	if progress != nil {
		progress(1)
	}
	return nil
}
