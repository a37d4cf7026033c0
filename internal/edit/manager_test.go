package edit

import (
	"errors"
	"testing"

	"github.com/bft-labs/lectrec/internal/domain"
)

var (
	testBrush  = domain.Brush{Color: 0x000000ff, Width: 1.5}
	testFormat = domain.AudioFormat{SampleRate: 1000, Channels: 1, BitsPerSample: 16}
)

func shape(handle int32, points ...domain.Point) domain.Shape {
	return domain.Shape{Handle: handle, Kind: domain.ShapeStroke, Brush: testBrush, Points: points}
}

func audio(ms int64) domain.Audio {
	data := make([]byte, testFormat.ByteOffset(ms))
	for i := range data {
		data[i] = byte(i)
	}
	return domain.Audio{Format: testFormat, Data: data}
}

// scenario builds a 10000 ms recording with actions at 0, 2000, 5000 and 8000.
func scenario() *domain.Recording {
	p0 := domain.NewPage(
		shape(1, domain.Point{X: 1, Y: 1}),
		shape(2, domain.Point{X: 2, Y: 2}),
		shape(3, domain.Point{X: 3, Y: 3}),
	)
	actions := []domain.PlaybackAction{
		domain.NewShapeCreate(0, 0, 1, testBrush, domain.Point{X: 1, Y: 1}),
		domain.NewShapeCreate(2000, 0, 2, testBrush, domain.Point{X: 2, Y: 2}),
		domain.NewShapeModify(5000, 0, 1, testBrush, domain.Point{X: 4, Y: 4}),
		domain.NewShapeCreate(8000, 0, 3, testBrush, domain.Point{X: 3, Y: 3}),
	}
	return domain.NewRecording(domain.NewHeader(10000), []*domain.Page{p0}, actions, audio(10000))
}

func timestamps(rec *domain.Recording) []int64 {
	var out []int64
	for _, a := range rec.Actions() {
		out = append(out, a.Timestamp)
	}
	return out
}

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewManager_Attaches(t *testing.T) {
	rec := scenario()
	m := NewManager(rec, 0)

	if rec.EditManager() != m {
		t.Fatal("manager not attached to recording")
	}
	if ManagerFor(rec, 5) != m {
		t.Error("ManagerFor did not return the attached manager")
	}
	if m.limit != DefaultHistoryLimit {
		t.Errorf("limit = %d, want %d", m.limit, DefaultHistoryLimit)
	}
}

func TestManager_EmptyStacksAreNoOps(t *testing.T) {
	rec := scenario()
	m := NewManager(rec, 0)
	hash := rec.StateHash()

	if err := m.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
	if err := m.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() error = %v, want ErrNothingToRedo", err)
	}
	if rec.StateHash() != hash {
		t.Error("state hash changed")
	}
	if m.UndoCount() != 0 || m.RedoCount() != 0 {
		t.Error("stacks changed")
	}
	if rec.HasUndoActions() || rec.HasRedoActions() {
		t.Error("recording reports history")
	}
}

func TestManager_RejectedEditLeavesState(t *testing.T) {
	rec := scenario()
	m := NewManager(rec, 0)

	if err := m.Execute(&Cut{Interval: domain.Interval{Begin: 0, End: 1000}}); err != nil {
		t.Fatal(err)
	}
	if err := m.Undo(); err != nil {
		t.Fatal(err)
	}
	hash := rec.StateHash()

	tests := []struct {
		name   string
		action Action
	}{
		{"cut past duration", &Cut{Interval: domain.Interval{Begin: 5000, End: 20000}}},
		{"cut reversed", &Cut{Interval: domain.Interval{Begin: 5000, End: 1000}}},
		{"trim negative", &Trim{Interval: domain.Interval{Begin: -1, End: 1000}}},
		{"modify unknown handle", &ModifyPositions{Page: 0, Handle: 42, Delta: domain.Point{X: 1}}},
		{"insert page past end", &InsertPage{At: 10001}},
		{"replace unknown page", &ReplacePage{Index: 3}},
		{"remove unrecorded action", &ReplacePageActions{Page: 0, Remove: []domain.PlaybackAction{domain.NewShapeRemove(1, 0, 1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Execute(tt.action)
			if !errors.Is(err, domain.ErrRecordingEdit) {
				t.Fatalf("Execute() error = %v, want ErrRecordingEdit", err)
			}
			if rec.StateHash() != hash {
				t.Error("state hash changed")
			}
			if m.UndoCount() != 0 || m.RedoCount() != 1 {
				t.Errorf("stacks = (%d, %d), want (0, 1)", m.UndoCount(), m.RedoCount())
			}
		})
	}
}

func TestManager_ExecuteClearsRedo(t *testing.T) {
	rec := scenario()
	m := NewManager(rec, 0)

	_ = m.Execute(&Cut{Interval: domain.Interval{Begin: 0, End: 100}})
	_ = m.Undo()
	if !m.HasRedoActions() {
		t.Fatal("expected redo after undo")
	}
	_ = m.Execute(&Cut{Interval: domain.Interval{Begin: 0, End: 200}})
	if m.HasRedoActions() {
		t.Error("redo stack not cleared")
	}
}

func TestManager_EvictsOldest(t *testing.T) {
	rec := scenario()
	m := NewManager(rec, 2)

	for i := 0; i < 3; i++ {
		if err := m.Execute(&Cut{Interval: domain.Interval{Begin: 0, End: 100}}); err != nil {
			t.Fatal(err)
		}
	}
	if m.UndoCount() != 2 {
		t.Fatalf("UndoCount() = %d, want 2", m.UndoCount())
	}
	_ = m.Undo()
	_ = m.Undo()
	if rec.Duration() != 9900 {
		t.Errorf("duration after undoing retained edits = %d, want 9900", rec.Duration())
	}
}

func TestManager_UndoRedoSymmetry(t *testing.T) {
	rec := scenario()
	m := NewManager(rec, 0)

	edits := []Action{
		&ModifyPositions{Page: 0, Handle: 1, Delta: domain.Point{X: 12.25, Y: -0.5}},
		&InsertPage{At: 4000, Shapes: []domain.Shape{shape(10)}},
		&Cut{Interval: domain.Interval{Begin: 1000, End: 3000}},
		&ReplacePageActions{Page: 0, Add: []domain.PlaybackAction{domain.NewTextChange(500, 0, 1, "note")}},
		&Trim{Interval: domain.Interval{Begin: 500, End: 7000}},
		&ReplacePage{Index: 1, Shapes: []domain.Shape{shape(3, domain.Point{X: 3, Y: 3}), shape(11)}},
	}

	hashes := []uint64{rec.StateHash()}
	for i, e := range edits {
		if err := m.Execute(e); err != nil {
			t.Fatalf("edit %d (%T): %v", i, e, err)
		}
		if err := rec.Validate(); err != nil {
			t.Fatalf("edit %d (%T) broke the recording: %v", i, e, err)
		}
		hashes = append(hashes, rec.StateHash())
	}

	for i := len(edits) - 1; i >= 0; i-- {
		if err := m.Undo(); err != nil {
			t.Fatal(err)
		}
		if rec.StateHash() != hashes[i] {
			t.Errorf("hash after undoing edit %d = %x, want %x", i, rec.StateHash(), hashes[i])
		}
	}
	for i := range edits {
		if err := m.Redo(); err != nil {
			t.Fatal(err)
		}
		if rec.StateHash() != hashes[i+1] {
			t.Errorf("hash after redoing edit %d = %x, want %x", i, rec.StateHash(), hashes[i+1])
		}
	}
}
