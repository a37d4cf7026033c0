package domain

import (
	"errors"
	"testing"
)

func testRecording() *Recording {
	pages := []*Page{
		NewPage(stroke(1, Point{0, 0}, Point{10, 10})),
		NewPage(),
	}
	actions := []PlaybackAction{
		NewPageSelected(8000, 1),
		NewShapeCreate(0, 0, 1, Brush{Width: 2}, Point{0, 0}, Point{10, 10}),
		NewShapeModify(5000, 0, 1, Brush{Width: 2}, Point{1, 1}),
		NewTextChange(2000, 0, 1, "x"),
	}
	return NewRecording(NewHeader(10000), pages, actions, testAudio(10000))
}

func TestNewRecording_SortsActions(t *testing.T) {
	r := testRecording()

	var last int64 = -1
	for _, a := range r.Actions() {
		if a.Timestamp < last {
			t.Fatalf("actions not sorted: %d after %d", a.Timestamp, last)
		}
		last = a.Timestamp
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestRecording_PageIndexAt(t *testing.T) {
	r := testRecording()

	tests := []struct {
		ms   int64
		want int
	}{
		{0, 0},
		{7999, 0},
		{8000, 1},
		{9999, 1},
	}
	for _, tt := range tests {
		if got := r.PageIndexAt(tt.ms); got != tt.want {
			t.Errorf("PageIndexAt(%d) = %d, want %d", tt.ms, got, tt.want)
		}
	}

	empty := NewRecording(NewHeader(0), nil, nil, Audio{})
	if got := empty.PageIndexAt(0); got != -1 {
		t.Errorf("PageIndexAt() without pages = %d, want -1", got)
	}
}

func TestRecording_ActionsForHandle(t *testing.T) {
	r := testRecording()
	if got := len(r.ActionsForHandle(0, 1)); got != 3 {
		t.Errorf("ActionsForHandle(0, 1) = %d actions, want 3", got)
	}
	if got := len(r.ActionsForHandle(1, 1)); got != 0 {
		t.Errorf("ActionsForHandle(1, 1) = %d actions, want 0", got)
	}
}

func TestRecording_StateHash(t *testing.T) {
	r := testRecording()
	before := r.StateHash()

	r.Apply(func(tx *Tx) { tx.SetDuration(9000) })
	if r.StateHash() == before {
		t.Fatal("hash unchanged after duration change")
	}

	r.Apply(func(tx *Tx) { tx.SetDuration(10000) })
	if r.StateHash() != before {
		t.Error("hash differs after restoring duration")
	}

	p, _ := r.Page(1)
	if err := p.Execute(&CreateShapeAction{Shapes: []Shape{stroke(4)}}); err != nil {
		t.Fatal(err)
	}
	if r.StateHash() == before {
		t.Error("hash unchanged after live page edit")
	}
	_ = p.Undo()
	if r.StateHash() != before {
		t.Error("hash differs after undoing live page edit")
	}
}

func TestRecording_Snapshot(t *testing.T) {
	r := testRecording()
	snap := r.Snapshot()
	hash := snap.StateHash()

	r.Apply(func(tx *Tx) {
		acts := r.Actions()
		acts[0] = acts[0].Shifted(100)
		tx.SetActions(acts)
		tx.SetDuration(1)
		tx.SetAudio(r.Audio().Cut(Interval{0, 100}, r.Duration()))
		tx.RemoveShape(0, 1)
	})

	if snap.Duration() != 10000 {
		t.Errorf("snapshot duration = %d, want 10000", snap.Duration())
	}
	if snap.Actions()[0].Timestamp != 0 {
		t.Error("snapshot action changed")
	}
	p, _ := snap.Page(0)
	if !p.HasShape(1) {
		t.Error("snapshot page lost shape")
	}
	if snap.StateHash() != hash || computeStateHash(snap) != hash {
		t.Error("snapshot hash changed")
	}
}

func TestRecording_Validate(t *testing.T) {
	dup := NewRecording(NewHeader(10), []*Page{NewPage(stroke(1), stroke(1))}, nil, Audio{})
	if err := dup.Validate(); !errors.Is(err, ErrDuplicateHandle) {
		t.Errorf("Validate() error = %v, want ErrDuplicateHandle", err)
	}

	badPage := NewRecording(NewHeader(10), []*Page{NewPage()}, []PlaybackAction{NewPageSelected(0, 3)}, Audio{})
	if err := badPage.Validate(); err == nil {
		t.Error("Validate() accepted out of range page")
	}
}

func TestRecording_TxPages(t *testing.T) {
	r := testRecording()
	before := r.StateHash()

	r.Apply(func(tx *Tx) { tx.InsertPage(1, NewPage(stroke(9))) })
	if r.PageCount() != 3 {
		t.Fatalf("PageCount() = %d, want 3", r.PageCount())
	}
	p, _ := r.Page(1)
	if !p.HasShape(9) {
		t.Error("inserted page not at index 1")
	}

	r.Apply(func(tx *Tx) { tx.RemovePage(1) })
	if r.StateHash() != before {
		t.Error("hash differs after removing inserted page")
	}
}
