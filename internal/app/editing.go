package app

import (
	"context"
	"fmt"

	"github.com/bft-labs/lectrec/internal/domain"
	"github.com/bft-labs/lectrec/internal/edit"
	"github.com/bft-labs/lectrec/internal/ports"
)

// Cut removes [iv.Begin, iv.End) from the selected recording.
func (s *FileService) Cut(iv domain.Interval) error {
	return s.execute("cut", &edit.Cut{Interval: iv})
}

// InsertPage inserts a page holding shapes after the page shown at time at.
func (s *FileService) InsertPage(at int64, shapes []domain.Shape) error {
	return s.execute("insert page", &edit.InsertPage{At: at, Shapes: shapes})
}

// ReplacePage replaces the shapes of page index.
func (s *FileService) ReplacePage(index int, shapes []domain.Shape) error {
	return s.execute("replace page", &edit.ReplacePage{Index: index, Shapes: shapes})
}

// ModifyPlaybackActionPositions moves the recorded geometry of shape handle
// on page by delta.
func (s *FileService) ModifyPlaybackActionPositions(page int, handle int32, delta domain.Point) error {
	return s.execute("modify positions", &edit.ModifyPositions{Page: page, Handle: handle, Delta: delta})
}

// InsertPlaybackActions adds and removes recorded actions on page in one
// undoable step.
func (s *FileService) InsertPlaybackActions(page int, add, remove []domain.PlaybackAction) error {
	return s.execute("insert actions", &edit.ReplacePageActions{Page: page, Add: add, Remove: remove})
}

// DeletePage removes page index and the time it is shown, audio included.
func (s *FileService) DeletePage(index int) error {
	return s.execute("delete page", &edit.DeletePage{Index: index})
}

// HidePage removes page index and its actions but keeps the timeline length.
func (s *FileService) HidePage(index int) error {
	return s.execute("hide page", &edit.HidePage{Index: index})
}

// MovePage moves the first change to page index to time to.
func (s *FileService) MovePage(index int, to int64) error {
	return s.execute("move page", &edit.MovePage{Index: index, To: to})
}

// HideAndMoveNextPage hides page index and starts the following page at to.
func (s *FileService) HideAndMoveNextPage(index int, to int64) error {
	return s.execute("hide and move next page", &edit.HideAndMoveNextPage{Index: index, To: to})
}

// ImportRecording reads the recording at path and inserts it into the
// selected recording at time at.
func (s *FileService) ImportRecording(ctx context.Context, at int64, path string) error {
	if s.SelectedRecording() == nil {
		return ErrNoRecording
	}
	src, err := s.read(ctx, path)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	return s.execute("import recording", &edit.ImportRecording{At: at, Source: src})
}

// UndoChanges reverts the last edit of the selected recording. It does
// nothing when there is nothing to undo.
func (s *FileService) UndoChanges() error {
	rec := s.SelectedRecording()
	if rec == nil {
		return ErrNoRecording
	}
	m := edit.ManagerFor(rec, s.cfg.HistoryLimit)
	if !m.HasUndoActions() {
		return nil
	}
	if err := m.Undo(); err != nil {
		return err
	}
	s.logger.Debug("edit undone", ports.Int64("duration_ms", rec.Duration()), ports.Hash("hash", rec.StateHash()))
	s.events.OnRecordingChanged(rec)
	return nil
}

// RedoChanges re-applies the last undone edit of the selected recording. It
// does nothing when there is nothing to redo.
func (s *FileService) RedoChanges() error {
	rec := s.SelectedRecording()
	if rec == nil {
		return ErrNoRecording
	}
	m := edit.ManagerFor(rec, s.cfg.HistoryLimit)
	if !m.HasRedoActions() {
		return nil
	}
	if err := m.Redo(); err != nil {
		return err
	}
	s.logger.Debug("edit redone", ports.Int64("duration_ms", rec.Duration()), ports.Hash("hash", rec.StateHash()))
	s.events.OnRecordingChanged(rec)
	return nil
}

func (s *FileService) execute(op string, a edit.Action) error {
	rec := s.SelectedRecording()
	if rec == nil {
		return ErrNoRecording
	}
	if err := edit.ManagerFor(rec, s.cfg.HistoryLimit).Execute(a); err != nil {
		s.logger.Warn("edit rejected", ports.String("op", op), ports.Err(err))
		return err
	}
	s.logger.Info("recording edited",
		ports.String("op", op),
		ports.Int64("duration_ms", rec.Duration()),
		ports.Hash("hash", rec.StateHash()),
	)
	s.events.OnRecordingChanged(rec)
	return nil
}

func checkInterval(op string, iv domain.Interval, duration int64) error {
	if iv.Begin > iv.End {
		return domain.NewEditError(op, "interval %v is reversed", iv)
	}
	if !iv.Within(duration) {
		return domain.NewEditError(op, "interval %v exceeds recording [0, %d]", iv, duration)
	}
	return nil
}
