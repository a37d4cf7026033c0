package domain

import (
	"errors"
	"fmt"
)

// Domain errors can be checked with errors.Is.
var (
	// ErrIncompatibleFileFormat is matched by every IncompatibleFileFormatError.
	ErrIncompatibleFileFormat = errors.New("lectrec: incompatible file format")

	// ErrRecordingEdit is matched by every RecordingEditError.
	ErrRecordingEdit = errors.New("lectrec: invalid recording edit")

	// ErrNothingToUndo is returned when an undo stack is empty.
	ErrNothingToUndo = errors.New("lectrec: nothing to undo")

	// ErrNothingToRedo is returned when a redo stack is empty.
	ErrNothingToRedo = errors.New("lectrec: nothing to redo")

	// ErrShapeNotFound is returned when no shape carries the requested handle.
	ErrShapeNotFound = errors.New("lectrec: shape not found")

	// ErrDuplicateHandle is returned when a shape handle is already in use on a page.
	ErrDuplicateHandle = errors.New("lectrec: duplicate shape handle")

	// ErrNoRecording is returned when an operation needs a selected recording.
	ErrNoRecording = errors.New("lectrec: no recording selected")

	// ErrServiceStopped is returned for work submitted after shutdown began.
	ErrServiceStopped = errors.New("lectrec: service stopped")

	// ErrShutdownTimeout is returned when pending work outlives the shutdown timeout.
	ErrShutdownTimeout = errors.New("lectrec: shutdown timeout")
)

// IncompatibleFileFormatError reports a recording file that cannot be read:
// unknown magic, unsupported version, checksum mismatch, truncation or an
// unknown action variant.
type IncompatibleFileFormatError struct {
	Version uint32
	Reason  string
	Err     error
}

func (e *IncompatibleFileFormatError) Error() string {
	msg := "lectrec: incompatible file format"
	if e.Version != 0 {
		msg += fmt.Sprintf(" (version %d)", e.Version)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrIncompatibleFileFormat.
func (e *IncompatibleFileFormatError) Is(target error) bool {
	return target == ErrIncompatibleFileFormat
}

// Unwrap returns the underlying cause, if any.
func (e *IncompatibleFileFormatError) Unwrap() error {
	return e.Err
}

// RecordingEditError reports edit parameters that were rejected before any
// mutation took place.
type RecordingEditError struct {
	Op     string
	Reason string
}

// NewEditError creates a RecordingEditError for the named edit operation.
func NewEditError(op, format string, args ...any) *RecordingEditError {
	return &RecordingEditError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func (e *RecordingEditError) Error() string {
	return fmt.Sprintf("lectrec: %s: %s", e.Op, e.Reason)
}

// Is reports whether target is ErrRecordingEdit.
func (e *RecordingEditError) Is(target error) bool {
	return target == ErrRecordingEdit
}
