package app

import "github.com/bft-labs/lectrec/internal/domain"

// EventHandler receives notifications from the file service. Methods may be
// called from background goroutines and must not block.
type EventHandler interface {
	// OnRecordingSelected is called after rec became the selected recording.
	OnRecordingSelected(rec *domain.Recording)

	// OnRecordingChanged is called after an edit, undo or redo on rec.
	OnRecordingChanged(rec *domain.Recording)

	// OnRecordingClosed is called after rec stopped being selected.
	OnRecordingClosed(rec *domain.Recording)

	// OnSourceModified is called when another program changed the file the
	// selected recording was read from.
	OnSourceModified(path string)
}

// NopEventHandler ignores all events. Embed it to implement only some
// methods of EventHandler.
type NopEventHandler struct{}

func (NopEventHandler) OnRecordingSelected(*domain.Recording) {}
func (NopEventHandler) OnRecordingChanged(*domain.Recording)  {}
func (NopEventHandler) OnRecordingClosed(*domain.Recording)   {}
func (NopEventHandler) OnSourceModified(string)               {}
