// Package domain contains the recording model: the header, the page/document
// structure, the timestamped playback actions and the audio track.
//
// This package is the innermost layer. It has no dependencies on file
// formats, logging or the file system and contains only the model and its
// invariants.
//
// # Entities
//
//   - [Recording]: header, pages, chronologically ordered actions and audio
//   - [PlaybackAction]: a timestamped, replayable annotation or page event
//   - [Page]: shapes addressed by handle plus a live shape undo/redo stack
//   - [Interval]: a millisecond range used by timeline edits
//
// # Mutation
//
// Structural changes go through [Recording.Apply], which recomputes the state
// hash once the change is committed. Action payloads are never written in
// place: edits build new slices, so a [Recording.Snapshot] can share the
// backing arrays of the live recording safely.
package domain
