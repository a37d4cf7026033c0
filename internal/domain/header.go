package domain

import (
	"time"

	"github.com/google/uuid"
)

// Header carries the recording metadata stored in the file header.
type Header struct {
	// ID identifies the recording across saves and exports.
	ID uuid.UUID

	// Created is the creation time, truncated to milliseconds.
	Created time.Time

	// Duration is the timeline length in milliseconds.
	Duration int64

	// Version is the file format version the recording was read from.
	// Zero for recordings that were never read from disk.
	Version uint32
}

// NewHeader creates a header with a fresh time-ordered ID.
func NewHeader(duration int64) Header {
	return Header{
		ID:       uuid.Must(uuid.NewV7()),
		Created:  time.Now().Truncate(time.Millisecond),
		Duration: duration,
	}
}

// SetDuration sets the timeline length in milliseconds.
func (h *Header) SetDuration(d int64) {
	h.Duration = d
}
