package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// EditHistory is the undo/redo state attached to a recording. The edit
// package provides the implementation.
type EditHistory interface {
	HasUndoActions() bool
	HasRedoActions() bool
}

// Recording aggregates a header, the page structure, the chronologically
// ordered playback actions and the audio track.
//
// A Recording has a single logical owner. It is not safe for concurrent
// mutation; concurrent readers must work on a Snapshot.
type Recording struct {
	header     Header
	pages      []*Page
	actions    []PlaybackAction
	audio      Audio
	sourceFile string
	history    EditHistory
	stateHash  uint64
}

// NewRecording creates a recording. Actions are stably sorted by timestamp.
func NewRecording(header Header, pages []*Page, actions []PlaybackAction, audio Audio) *Recording {
	r := &Recording{
		header:  header,
		pages:   append([]*Page(nil), pages...),
		actions: append([]PlaybackAction(nil), actions...),
		audio:   audio,
	}
	slices.SortStableFunc(r.actions, func(a, b PlaybackAction) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	for _, p := range r.pages {
		r.adopt(p)
	}
	r.Touch()
	return r
}

// Header returns a copy of the header.
func (r *Recording) Header() Header {
	return r.header
}

// Duration returns the timeline length in milliseconds.
func (r *Recording) Duration() int64 {
	return r.header.Duration
}

// Pages returns the pages in document order. The slice is a copy; the pages
// are shared.
func (r *Recording) Pages() []*Page {
	return append([]*Page(nil), r.pages...)
}

// PageCount returns the number of pages.
func (r *Recording) PageCount() int {
	return len(r.pages)
}

// Page returns the page at index i.
func (r *Recording) Page(i int) (*Page, error) {
	if i < 0 || i >= len(r.pages) {
		return nil, fmt.Errorf("page %d out of range [0, %d)", i, len(r.pages))
	}
	return r.pages[i], nil
}

// Actions returns the playback actions in chronological order. The slice is
// a copy.
func (r *Recording) Actions() []PlaybackAction {
	return append([]PlaybackAction(nil), r.actions...)
}

// ActionCount returns the number of playback actions.
func (r *Recording) ActionCount() int {
	return len(r.actions)
}

// Audio returns the audio track.
func (r *Recording) Audio() Audio {
	return r.audio
}

// SourceFile returns the path the recording was read from or last saved to.
func (r *Recording) SourceFile() string {
	return r.sourceFile
}

// SetSourceFile records the path backing the recording.
func (r *Recording) SetSourceFile(path string) {
	r.sourceFile = path
}

// EditManager returns the attached undo/redo history, or nil.
func (r *Recording) EditManager() EditHistory {
	return r.history
}

// SetEditManager attaches the undo/redo history.
func (r *Recording) SetEditManager(h EditHistory) {
	r.history = h
}

// HasUndoActions reports whether timeline edits can be undone.
func (r *Recording) HasUndoActions() bool {
	return r.history != nil && r.history.HasUndoActions()
}

// HasRedoActions reports whether timeline edits can be redone.
func (r *Recording) HasRedoActions() bool {
	return r.history != nil && r.history.HasRedoActions()
}

// StateHash returns the checksum over the mutable content. It changes with
// every structural mutation and is used to detect unsaved changes.
func (r *Recording) StateHash() uint64 {
	return r.stateHash
}

// Touch recomputes the state hash.
func (r *Recording) Touch() {
	r.stateHash = computeStateHash(r)
}

// PageIndexAt returns the page shown at time ms: the page of the last
// PageSelected action at or before ms, or 0 when there is none. It returns -1
// for a recording without pages.
func (r *Recording) PageIndexAt(ms int64) int {
	if len(r.pages) == 0 {
		return -1
	}
	page := 0
	for _, a := range r.actions {
		if a.Timestamp > ms {
			break
		}
		if a.Type == ActionPageSelected {
			page = a.Page
		}
	}
	return page
}

// ActionsForHandle returns the actions that target handle on page.
func (r *Recording) ActionsForHandle(page int, handle int32) []PlaybackAction {
	var out []PlaybackAction
	for _, a := range r.actions {
		if a.Addresses(page, handle) {
			out = append(out, a)
		}
	}
	return out
}

// Validate checks the structural invariants: non-negative duration,
// chronological order, page indices in range and unique shape handles.
func (r *Recording) Validate() error {
	if r.header.Duration < 0 {
		return fmt.Errorf("negative duration %d", r.header.Duration)
	}
	var last int64
	for i, a := range r.actions {
		if !a.Type.Valid() {
			return fmt.Errorf("action %d: unknown type %d", i, a.Type)
		}
		if a.Timestamp < last {
			return fmt.Errorf("action %d: timestamp %d before %d", i, a.Timestamp, last)
		}
		last = a.Timestamp
		if a.Page < 0 || a.Page >= len(r.pages) {
			return fmt.Errorf("action %d: page %d out of range [0, %d)", i, a.Page, len(r.pages))
		}
	}
	for i, p := range r.pages {
		seen := make(map[int32]bool, len(p.shapes))
		for _, s := range p.shapes {
			if seen[s.Handle] {
				return fmt.Errorf("page %d: shape %d: %w", i, s.Handle, ErrDuplicateHandle)
			}
			seen[s.Handle] = true
		}
	}
	return nil
}

// Snapshot returns an independent copy for read-only use on another
// goroutine. Payload slices are shared; the live recording never writes into
// them, so later edits do not show through. The copy has no edit history.
func (r *Recording) Snapshot() *Recording {
	s := &Recording{
		header:     r.header,
		pages:      make([]*Page, len(r.pages)),
		actions:    r.actions[:len(r.actions):len(r.actions)],
		audio:      r.audio,
		sourceFile: r.sourceFile,
		stateHash:  r.stateHash,
	}
	for i, p := range r.pages {
		s.pages[i] = p.clone()
		s.adopt(s.pages[i])
	}
	return s
}

// Apply runs fn with a transaction over the recording and recomputes the
// state hash afterwards. Callers validate before calling Apply; fn itself
// must not fail half-way.
func (r *Recording) Apply(fn func(tx *Tx)) {
	fn(&Tx{r: r})
	r.Touch()
}

func (r *Recording) adopt(p *Page) {
	p.onChange = r.Touch
}

// Tx exposes the structural mutators of a recording inside Apply.
type Tx struct {
	r *Recording
}

// SetDuration sets the timeline length.
func (tx *Tx) SetDuration(d int64) {
	tx.r.header.SetDuration(d)
}

// SetActions replaces the action sequence. The recording takes ownership of
// the slice; it must already be in chronological order.
func (tx *Tx) SetActions(actions []PlaybackAction) {
	tx.r.actions = actions
}

// SetAudio replaces the audio track.
func (tx *Tx) SetAudio(a Audio) {
	tx.r.audio = a
}

// SetPageShapes replaces the shapes of page i.
func (tx *Tx) SetPageShapes(i int, shapes []Shape) {
	tx.r.pages[i].setShapes(shapes)
}

// RemoveShape removes the shape with handle from page i and returns its
// position, or -1 when it does not exist.
func (tx *Tx) RemoveShape(i int, handle int32) (int, Shape) {
	p := tx.r.pages[i]
	idx := p.indexOf(handle)
	if idx < 0 {
		return -1, Shape{}
	}
	s := p.shapes[idx]
	p.removeAt(idx)
	return idx, s
}

// InsertShape inserts s into page i at position idx.
func (tx *Tx) InsertShape(i, idx int, s Shape) {
	tx.r.pages[i].insertAt(idx, s)
}

// InsertPage inserts p at index i.
func (tx *Tx) InsertPage(i int, p *Page) {
	tx.r.adopt(p)
	tx.r.pages = slices.Insert(slices.Clone(tx.r.pages), i, p)
}

// RemovePage removes and returns the page at index i.
func (tx *Tx) RemovePage(i int) *Page {
	p := tx.r.pages[i]
	tx.r.pages = slices.Delete(slices.Clone(tx.r.pages), i, i+1)
	return p
}
