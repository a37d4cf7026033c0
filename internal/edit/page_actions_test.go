package edit

import (
	"errors"
	"testing"

	"github.com/bft-labs/lectrec/internal/domain"
)

// pagedScenario builds a 9000 ms recording over three pages, switching to page
// 1 at 3000 and to page 2 at 6000. Every page holds shape 1.
func pagedScenario() *domain.Recording {
	pages := []*domain.Page{
		domain.NewPage(shape(1, domain.Point{X: 1, Y: 1})),
		domain.NewPage(shape(1, domain.Point{X: 2, Y: 2})),
		domain.NewPage(shape(1, domain.Point{X: 3, Y: 3})),
	}
	actions := []domain.PlaybackAction{
		domain.NewShapeCreate(0, 0, 1, testBrush, domain.Point{X: 1, Y: 1}),
		domain.NewPageSelected(3000, 1),
		domain.NewShapeCreate(3500, 1, 1, testBrush, domain.Point{X: 2, Y: 2}),
		domain.NewPageSelected(6000, 2),
		domain.NewShapeCreate(6500, 2, 1, testBrush, domain.Point{X: 3, Y: 3}),
	}
	return domain.NewRecording(domain.NewHeader(9000), pages, actions, audio(9000))
}

func pageIndices(rec *domain.Recording) []int64 {
	var out []int64
	for _, a := range rec.Actions() {
		out = append(out, int64(a.Page))
	}
	return out
}

// checkUndo undoes the last edit and compares the state hash with want.
func checkUndo(t *testing.T, m *Manager, rec *domain.Recording, want uint64) {
	t.Helper()
	if err := m.Undo(); err != nil {
		t.Fatal(err)
	}
	if rec.StateHash() != want {
		t.Errorf("state hash after undo = %x, want %x", rec.StateHash(), want)
	}
}

func TestHidePage(t *testing.T) {
	rec := pagedScenario()
	m := NewManager(rec, 0)
	hash := rec.StateHash()

	if err := m.Execute(&HidePage{Index: 1}); err != nil {
		t.Fatal(err)
	}
	if rec.PageCount() != 2 {
		t.Fatalf("PageCount() = %d, want 2", rec.PageCount())
	}
	if rec.Duration() != 9000 || len(rec.Audio().Data) != len(audio(9000).Data) {
		t.Error("hiding a page changed the timeline length")
	}
	if got, want := timestamps(rec), []int64{0, 6000, 6500}; !equalInts(got, want) {
		t.Errorf("timestamps = %v, want %v", got, want)
	}
	if got, want := pageIndices(rec), []int64{0, 1, 1}; !equalInts(got, want) {
		t.Errorf("pages = %v, want %v", got, want)
	}
	if got := rec.PageIndexAt(4000); got != 0 {
		t.Errorf("page shown at 4000 = %d, want 0", got)
	}
	p, _ := rec.Page(1)
	if !p.HasShape(1) || p.Shapes()[0].Points[0] != (domain.Point{X: 3, Y: 3}) {
		t.Error("later page did not move up")
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	checkUndo(t, m, rec, hash)
	if err := m.Redo(); err != nil {
		t.Fatal(err)
	}
	if rec.PageCount() != 2 {
		t.Error("redo did not hide the page again")
	}
}

func TestDeletePage(t *testing.T) {
	tests := []struct {
		name       string
		index      int
		duration   int64
		timestamps []int64
		pages      []int64
	}{
		{"first", 0, 6000, []int64{0, 500, 3000, 3500}, []int64{0, 0, 1, 1}},
		{"middle", 1, 6000, []int64{0, 3000, 3500}, []int64{0, 1, 1}},
		{"last", 2, 6000, []int64{0, 3000, 3500}, []int64{0, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := pagedScenario()
			m := NewManager(rec, 0)
			hash := rec.StateHash()

			if err := m.Execute(&DeletePage{Index: tt.index}); err != nil {
				t.Fatal(err)
			}
			if rec.PageCount() != 2 {
				t.Errorf("PageCount() = %d, want 2", rec.PageCount())
			}
			if rec.Duration() != tt.duration {
				t.Errorf("Duration() = %d, want %d", rec.Duration(), tt.duration)
			}
			a := rec.Audio()
			if int64(len(a.Data)) != a.Format.ByteOffset(rec.Duration()) {
				t.Errorf("audio holds %d bytes, want %d", len(a.Data), a.Format.ByteOffset(rec.Duration()))
			}
			if got := timestamps(rec); !equalInts(got, tt.timestamps) {
				t.Errorf("timestamps = %v, want %v", got, tt.timestamps)
			}
			if got := pageIndices(rec); !equalInts(got, tt.pages) {
				t.Errorf("pages = %v, want %v", got, tt.pages)
			}
			if err := rec.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}

			checkUndo(t, m, rec, hash)
		})
	}
}

func TestDeletePage_RepeatedVisits(t *testing.T) {
	rec := pagedScenario()
	m := NewManager(rec, 0)
	hash := rec.StateHash()

	// Show page 0 again from 7000 to 8000.
	back := []domain.PlaybackAction{domain.NewPageSelected(7000, 0)}
	if err := m.Execute(&ReplacePageActions{Page: 0, Add: back}); err != nil {
		t.Fatal(err)
	}
	fwd := []domain.PlaybackAction{domain.NewPageSelected(8000, 2)}
	if err := m.Execute(&ReplacePageActions{Page: 2, Add: fwd}); err != nil {
		t.Fatal(err)
	}

	if err := m.Execute(&DeletePage{Index: 0}); err != nil {
		t.Fatal(err)
	}
	if rec.Duration() != 5000 {
		t.Errorf("Duration() = %d, want 5000", rec.Duration())
	}
	if got := rec.PageIndexAt(0); got != 0 {
		t.Errorf("page shown at 0 = %d, want 0", got)
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	_ = m.Undo()
	_ = m.Undo()
	checkUndo(t, m, rec, hash)
}

func TestMovePage(t *testing.T) {
	rec := pagedScenario()
	m := NewManager(rec, 0)
	hash := rec.StateHash()

	if err := m.Execute(&MovePage{Index: 1, To: 2000}); err != nil {
		t.Fatal(err)
	}
	if got, want := timestamps(rec), []int64{0, 2000, 3500, 6000, 6500}; !equalInts(got, want) {
		t.Errorf("timestamps = %v, want %v", got, want)
	}
	if got := rec.PageIndexAt(2500); got != 1 {
		t.Errorf("page shown at 2500 = %d, want 1", got)
	}
	if rec.Duration() != 9000 {
		t.Errorf("Duration() = %d, want 9000", rec.Duration())
	}
	checkUndo(t, m, rec, hash)

	if err := m.Execute(&MovePage{Index: 2, To: 3000}); err != nil {
		t.Fatalf("moving onto the previous page change: %v", err)
	}
	if got, want := pageIndices(rec), []int64{0, 1, 2, 1}; !equalInts(got[:4], want) {
		t.Errorf("pages = %v, want prefix %v", got, want)
	}
	checkUndo(t, m, rec, hash)
}

func TestMovePage_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		action *MovePage
	}{
		{"never selected", &MovePage{Index: 0, To: 100}},
		{"unknown page", &MovePage{Index: 5, To: 100}},
		{"past next page", &MovePage{Index: 1, To: 6001}},
		{"before previous page", &MovePage{Index: 2, To: 2999}},
		{"negative", &MovePage{Index: 1, To: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := pagedScenario()
			hash := rec.StateHash()
			err := NewManager(rec, 0).Execute(tt.action)
			if !errors.Is(err, domain.ErrRecordingEdit) {
				t.Fatalf("Execute() error = %v, want ErrRecordingEdit", err)
			}
			if rec.StateHash() != hash {
				t.Error("rejected move changed the recording")
			}
		})
	}
}

func TestHideAndMoveNextPage(t *testing.T) {
	rec := pagedScenario()
	m := NewManager(rec, 0)
	hash := rec.StateHash()

	if err := m.Execute(&HideAndMoveNextPage{Index: 1, To: 3000}); err != nil {
		t.Fatal(err)
	}
	if got, want := timestamps(rec), []int64{0, 3000, 6500}; !equalInts(got, want) {
		t.Errorf("timestamps = %v, want %v", got, want)
	}
	if got := rec.PageIndexAt(3000); got != 1 {
		t.Errorf("page shown at 3000 = %d, want 1", got)
	}
	if rec.PageCount() != 2 {
		t.Errorf("PageCount() = %d, want 2", rec.PageCount())
	}
	checkUndo(t, m, rec, hash)

	err := m.Execute(&HideAndMoveNextPage{Index: 2, To: 6000})
	if !errors.Is(err, domain.ErrRecordingEdit) {
		t.Errorf("hiding the last page: error = %v, want ErrRecordingEdit", err)
	}
}

func TestRemovePage_OnlyPage(t *testing.T) {
	for _, a := range []Action{&HidePage{Index: 0}, &DeletePage{Index: 0}, &HideAndMoveNextPage{Index: 0}} {
		rec := scenario()
		err := NewManager(rec, 0).Execute(a)
		if !errors.Is(err, domain.ErrRecordingEdit) {
			t.Errorf("%T: error = %v, want ErrRecordingEdit", a, err)
		}
		if rec.PageCount() != 1 {
			t.Errorf("%T removed the only page", a)
		}
	}
}

func importSource() *domain.Recording {
	p := domain.NewPage(shape(5, domain.Point{X: 5, Y: 5}))
	actions := []domain.PlaybackAction{
		domain.NewShapeCreate(100, 0, 5, testBrush, domain.Point{X: 5, Y: 5}),
	}
	return domain.NewRecording(domain.NewHeader(2000), []*domain.Page{p}, actions, audio(2000))
}

func TestImportRecording(t *testing.T) {
	tests := []struct {
		name       string
		at         int64
		timestamps []int64
		pages      []int64
	}{
		{"at page change", 3000, []int64{0, 3000, 3100, 5000, 5500, 8000, 8500}, []int64{0, 3, 3, 1, 1, 2, 2}},
		{"inside page", 1000, []int64{0, 1000, 1100, 3000, 5000, 5500, 8000, 8500}, []int64{0, 3, 3, 0, 1, 1, 2, 2}},
		{"at end", 9000, []int64{0, 3000, 3500, 6000, 6500, 9000, 9100}, []int64{0, 1, 1, 2, 2, 3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := pagedScenario()
			m := NewManager(rec, 0)
			hash := rec.StateHash()

			if err := m.Execute(&ImportRecording{At: tt.at, Source: importSource()}); err != nil {
				t.Fatal(err)
			}
			if rec.Duration() != 11000 || rec.PageCount() != 4 {
				t.Errorf("duration, pages = %d, %d, want 11000, 4", rec.Duration(), rec.PageCount())
			}
			a := rec.Audio()
			if int64(len(a.Data)) != a.Format.ByteOffset(11000) {
				t.Errorf("audio holds %d bytes, want %d", len(a.Data), a.Format.ByteOffset(11000))
			}
			from := a.Format.ByteOffset(tt.at)
			if a.Data[from+1] != 1 {
				t.Error("imported audio not inserted at the import position")
			}
			if got := timestamps(rec); !equalInts(got, tt.timestamps) {
				t.Errorf("timestamps = %v, want %v", got, tt.timestamps)
			}
			if got := pageIndices(rec); !equalInts(got, tt.pages) {
				t.Errorf("pages = %v, want %v", got, tt.pages)
			}
			if err := rec.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}

			checkUndo(t, m, rec, hash)
		})
	}
}

func TestImportRecording_Rejected(t *testing.T) {
	other := importSource()
	other.Apply(func(tx *domain.Tx) {
		tx.SetAudio(domain.Audio{Format: domain.AudioFormat{SampleRate: 8000, Channels: 1, BitsPerSample: 8}, Data: make([]byte, 16000)})
	})

	tests := []struct {
		name   string
		action *ImportRecording
	}{
		{"no source", &ImportRecording{At: 0}},
		{"past end", &ImportRecording{At: 9001, Source: importSource()}},
		{"format mismatch", &ImportRecording{At: 0, Source: other}},
		{"no pages", &ImportRecording{At: 0, Source: domain.NewRecording(domain.NewHeader(10), nil, nil, domain.Audio{})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := pagedScenario()
			hash := rec.StateHash()
			err := NewManager(rec, 0).Execute(tt.action)
			if !errors.Is(err, domain.ErrRecordingEdit) {
				t.Fatalf("Execute() error = %v, want ErrRecordingEdit", err)
			}
			if rec.StateHash() != hash {
				t.Error("rejected import changed the recording")
			}
		})
	}
}
