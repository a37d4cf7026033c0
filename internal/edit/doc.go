// Package edit implements undoable timeline edits on a recording.
//
// An Action is one of a closed set of commands. Cut, Trim and ImportRecording
// change the timeline length. InsertPage, ReplacePage, HidePage, DeletePage,
// MovePage and HideAndMoveNextPage restructure pages, while ModifyPositions
// and ReplacePageActions rewrite recorded actions. Each command validates
// its parameters against the recording before touching it and records the
// data needed to revert itself exactly. A Manager applies commands and keeps
// the linear undo/redo history of a single recording.
package edit
