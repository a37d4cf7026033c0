package edit

import (
	"sync"

	"github.com/bft-labs/lectrec/internal/domain"
)

// DefaultHistoryLimit bounds the undo stack when no limit is configured.
const DefaultHistoryLimit = 100

// Re-exported for callers that only import this package.
var (
	ErrNothingToUndo = domain.ErrNothingToUndo
	ErrNothingToRedo = domain.ErrNothingToRedo
)

// Manager owns the undo and redo stacks of one recording.
// Executing a new action clears the redo stack. When the undo stack grows past
// the limit the oldest entry is evicted.
type Manager struct {
	mu    sync.Mutex
	rec   *domain.Recording
	undo  []Action
	redo  []Action
	limit int
}

// NewManager creates a manager for rec and attaches it to the recording.
// A limit <= 0 selects DefaultHistoryLimit.
func NewManager(rec *domain.Recording, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	m := &Manager{rec: rec, limit: limit}
	rec.SetEditManager(m)
	return m
}

// ManagerFor returns the manager attached to rec, creating one if needed.
func ManagerFor(rec *domain.Recording, limit int) *Manager {
	if m, ok := rec.EditManager().(*Manager); ok {
		return m
	}
	return NewManager(rec, limit)
}

// Recording returns the recording the manager edits.
func (m *Manager) Recording() *domain.Recording {
	return m.rec
}

// Execute validates a, applies it and pushes it onto the undo stack.
// A rejected action leaves the recording and both stacks unchanged.
func (m *Manager) Execute(a Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validate(m.rec, a); err != nil {
		return err
	}
	apply(m.rec, a)

	m.undo = append(m.undo, a)
	if len(m.undo) > m.limit {
		m.undo = append([]Action(nil), m.undo[len(m.undo)-m.limit:]...)
	}
	m.redo = nil
	return nil
}

// Undo reverts the most recent action.
func (m *Manager) Undo() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.undo) == 0 {
		return ErrNothingToUndo
	}
	a := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	revert(m.rec, a)
	m.redo = append(m.redo, a)
	return nil
}

// Redo re-applies the most recently undone action.
func (m *Manager) Redo() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.redo) == 0 {
		return ErrNothingToRedo
	}
	a := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	apply(m.rec, a)
	m.undo = append(m.undo, a)
	return nil
}

// HasUndoActions reports whether Undo would succeed.
func (m *Manager) HasUndoActions() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

// HasRedoActions reports whether Redo would succeed.
func (m *Manager) HasRedoActions() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// UndoCount returns the depth of the undo stack.
func (m *Manager) UndoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo)
}

// RedoCount returns the depth of the redo stack.
func (m *Manager) RedoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo)
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
}
