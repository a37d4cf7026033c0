package edit

import (
	"slices"

	"github.com/bft-labs/lectrec/internal/domain"
)

// HidePage removes page Index from the document together with every action
// on it. The time the page was shown stays in the recording; the page shown
// before it remains visible instead. Later pages move up by one.
type HidePage struct {
	Index int

	removed removedPage
}

// DeletePage removes page Index and the time it was shown. Every interval in
// which the page is visible is cut like Cut does, audio included, then the
// page is hidden.
type DeletePage struct {
	Index int

	cuts []*Cut
	hide HidePage
}

// MovePage moves the first change to page Index to time To. Audio, duration
// and all other actions are unchanged. To must lie between the neighbouring
// page changes so the page order is kept.
type MovePage struct {
	Index int
	To    int64

	prev []domain.PlaybackAction
}

// HideAndMoveNextPage hides page Index and moves the change to the page that
// followed it to time To, typically the time the hidden page was shown.
type HideAndMoveNextPage struct {
	Index int
	To    int64

	removed removedPage
}

// ImportRecording inserts Source at time At. Later actions move back by the
// source duration, the source pages are appended to the document and the
// source audio is inserted. The page shown before At is shown again after
// the inserted part.
type ImportRecording struct {
	At     int64
	Source *domain.Recording

	prev  timeline
	pages int
}

func (*HidePage) editAction()            {}
func (*DeletePage) editAction()          {}
func (*MovePage) editAction()            {}
func (*HideAndMoveNextPage) editAction() {}
func (*ImportRecording) editAction()     {}

type removedPage struct {
	index   int
	page    *domain.Page
	actions []domain.PlaybackAction
}

func checkRemovablePage(op string, rec *domain.Recording, index int) error {
	if index < 0 || index >= rec.PageCount() {
		return domain.NewEditError(op, "page %d out of range [0, %d)", index, rec.PageCount())
	}
	if rec.PageCount() == 1 {
		return domain.NewEditError(op, "cannot remove the only page")
	}
	return nil
}

// removePage replaces the actions with out and removes page index.
func removePage(rec *domain.Recording, index int, out []domain.PlaybackAction) removedPage {
	r := removedPage{index: index, actions: rec.Actions()}
	rec.Apply(func(tx *domain.Tx) {
		tx.SetActions(out)
		r.page = tx.RemovePage(index)
	})
	return r
}

func (r removedPage) restore(rec *domain.Recording) {
	rec.Apply(func(tx *domain.Tx) {
		tx.InsertPage(r.index, r.page)
		tx.SetActions(r.actions)
	})
}

// hiddenActions drops the actions on page and renumbers later pages.
func hiddenActions(acts []domain.PlaybackAction, page int) []domain.PlaybackAction {
	out := make([]domain.PlaybackAction, 0, len(acts))
	for _, a := range acts {
		switch {
		case a.Page == page:
			continue
		case a.Page > page:
			a.Page--
		}
		out = append(out, a)
	}
	return out
}

// pageRuns returns the intervals in which page is the page shown. Page 0 is
// shown until the first page change.
func pageRuns(acts []domain.PlaybackAction, page int, duration int64) []domain.Interval {
	var runs []domain.Interval
	shown, start := 0, int64(0)
	for _, a := range acts {
		if a.Type != domain.ActionPageSelected || a.Page == shown {
			continue
		}
		if shown == page {
			runs = append(runs, domain.Interval{Begin: start, End: a.Timestamp})
		}
		if a.Page == page {
			start = a.Timestamp
		}
		shown = a.Page
	}
	if shown == page {
		runs = append(runs, domain.Interval{Begin: start, End: duration})
	}
	return runs
}

// movedPage returns acts with the first change to page moved to t.
func movedPage(op string, acts []domain.PlaybackAction, page int, t, duration int64) ([]domain.PlaybackAction, error) {
	k := slices.IndexFunc(acts, func(a domain.PlaybackAction) bool {
		return a.Type == domain.ActionPageSelected && a.Page == page
	})
	if k < 0 {
		return nil, domain.NewEditError(op, "page %d is never selected", page)
	}

	prev, lo, hi := -1, int64(0), duration
	for i := k - 1; i >= 0; i-- {
		if acts[i].Type == domain.ActionPageSelected {
			prev, lo = i, acts[i].Timestamp
			break
		}
	}
	for _, a := range acts[k+1:] {
		if a.Type == domain.ActionPageSelected {
			hi = a.Timestamp
			break
		}
	}
	if t < lo || t > hi {
		return nil, domain.NewEditError(op, "position %d outside [%d, %d] between the neighbouring pages", t, lo, hi)
	}

	ps := acts[k]
	ps.Timestamp = t
	out := slices.Delete(slices.Clone(acts), k, k+1)
	at := max(searchTime(out, t), prev+1)
	return slices.Insert(out, at, ps), nil
}

func (h *HidePage) apply(rec *domain.Recording) {
	h.removed = removePage(rec, h.Index, hiddenActions(rec.Actions(), h.Index))
}

func (d *DeletePage) apply(rec *domain.Recording) {
	runs := pageRuns(rec.Actions(), d.Index, rec.Duration())
	d.cuts = d.cuts[:0]
	// Later runs first so earlier intervals keep their positions.
	for k := len(runs) - 1; k >= 0; k-- {
		if runs[k].Length() == 0 {
			continue
		}
		c := &Cut{Interval: runs[k]}
		c.apply(rec)
		d.cuts = append(d.cuts, c)
	}
	d.hide = HidePage{Index: d.Index}
	d.hide.apply(rec)
}

func (d *DeletePage) revert(rec *domain.Recording) {
	d.hide.removed.restore(rec)
	for k := len(d.cuts) - 1; k >= 0; k-- {
		d.cuts[k].revert(rec)
	}
}

func (m *MovePage) check(rec *domain.Recording) ([]domain.PlaybackAction, error) {
	const op = "move page"
	if m.Index < 0 || m.Index >= rec.PageCount() {
		return nil, domain.NewEditError(op, "page %d out of range [0, %d)", m.Index, rec.PageCount())
	}
	return movedPage(op, rec.Actions(), m.Index, m.To, rec.Duration())
}

func (m *MovePage) apply(rec *domain.Recording) {
	out, _ := m.check(rec)
	m.prev = rec.Actions()
	rec.Apply(func(tx *domain.Tx) { tx.SetActions(out) })
}

func (h *HideAndMoveNextPage) check(rec *domain.Recording) ([]domain.PlaybackAction, error) {
	const op = "hide and move next page"
	if err := checkRemovablePage(op, rec, h.Index); err != nil {
		return nil, err
	}
	if h.Index+1 >= rec.PageCount() {
		return nil, domain.NewEditError(op, "page %d has no next page", h.Index)
	}
	// The next page takes the hidden page's number.
	return movedPage(op, hiddenActions(rec.Actions(), h.Index), h.Index, h.To, rec.Duration())
}

func (h *HideAndMoveNextPage) apply(rec *domain.Recording) {
	out, _ := h.check(rec)
	h.removed = removePage(rec, h.Index, out)
}

func (im *ImportRecording) check(rec *domain.Recording) error {
	const op = "import recording"
	if im.Source == nil {
		return domain.NewEditError(op, "no recording to import")
	}
	if im.At < 0 || im.At > rec.Duration() {
		return domain.NewEditError(op, "position %d outside [0, %d]", im.At, rec.Duration())
	}
	if im.Source.PageCount() == 0 {
		return domain.NewEditError(op, "imported recording has no pages")
	}
	dst, src := rec.Audio().Format, im.Source.Audio().Format
	switch {
	case !src.IsZero() && dst.IsZero():
		return domain.NewEditError(op, "recording has no audio track to insert into")
	case !src.IsZero() && src != dst:
		return domain.NewEditError(op, "audio format %+v does not match %+v", src, dst)
	}
	return nil
}

func (im *ImportRecording) apply(rec *domain.Recording) {
	src := im.Source.Snapshot()
	at, length := im.At, src.Duration()
	offset := rec.PageCount()

	acts := rec.Actions()
	im.prev = timeline{actions: acts, audio: rec.Audio(), duration: rec.Duration()}
	im.pages = src.PageCount()

	split := searchTime(acts, at)
	shown := 0
	for _, a := range acts[:split] {
		if a.Type == domain.ActionPageSelected {
			shown = a.Page
		}
	}

	inserted := src.Actions()
	out := make([]domain.PlaybackAction, 0, len(acts)+len(inserted)+2)
	out = append(out, acts[:split]...)
	if !pageChangeAt(inserted, 0) {
		out = append(out, domain.NewPageSelected(at, offset))
	}
	for _, a := range inserted {
		a = a.Shifted(at)
		a.Page += offset
		out = append(out, a)
	}
	rest := acts[split:]
	if len(rest) > 0 && !pageChangeAt(rest, at) {
		out = append(out, domain.NewPageSelected(at+length, shown))
	}
	for _, a := range rest {
		out = append(out, a.Shifted(length))
	}

	audio := im.prev.audio
	if !audio.Format.IsZero() {
		f := audio.Format
		n := int64(len(audio.Data))
		from := min(f.ByteOffset(at), n)
		chunk := make([]byte, f.ByteOffset(im.prev.duration+length)-f.ByteOffset(im.prev.duration))
		copy(chunk, src.Audio().Data)
		data := make([]byte, 0, n+int64(len(chunk)))
		data = append(data, audio.Data[:from]...)
		data = append(data, chunk...)
		data = append(data, audio.Data[from:]...)
		audio = domain.Audio{Format: f, Data: data}
	}

	rec.Apply(func(tx *domain.Tx) {
		tx.SetActions(out)
		tx.SetDuration(im.prev.duration + length)
		tx.SetAudio(audio)
		for k, p := range src.Pages() {
			tx.InsertPage(offset+k, p)
		}
	})
}

func (im *ImportRecording) revert(rec *domain.Recording) {
	offset := rec.PageCount() - im.pages
	rec.Apply(func(tx *domain.Tx) {
		for k := im.pages - 1; k >= 0; k-- {
			tx.RemovePage(offset + k)
		}
		tx.SetActions(im.prev.actions)
		tx.SetAudio(im.prev.audio)
		tx.SetDuration(im.prev.duration)
	})
}

// pageChangeAt reports whether a page change is among the leading actions of
// acts stamped exactly t.
func pageChangeAt(acts []domain.PlaybackAction, t int64) bool {
	for _, a := range acts {
		if a.Timestamp != t {
			return false
		}
		if a.Type == domain.ActionPageSelected {
			return true
		}
	}
	return false
}
