package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecentRecording is an entry of the recently opened list.
type RecentRecording struct {
	Path     string
	ID       uuid.UUID
	Duration int64
	OpenedAt time.Time
}
