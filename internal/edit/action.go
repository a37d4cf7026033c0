package edit

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/bft-labs/lectrec/internal/domain"
)

// Action is a reversible timeline edit. The concrete types are Cut, Trim,
// InsertPage, ReplacePage, ModifyPositions, ReplacePageActions, HidePage,
// DeletePage, MovePage, HideAndMoveNextPage and ImportRecording. Values
// must not be shared between managers: each action keeps the state needed
// to revert its last application.
type Action interface {
	editAction()
}

// Cut removes the half-open range [Begin, End) from the timeline. Actions in
// the range are dropped and later actions move back by the range length.
// Shapes that are no longer addressed by any action on their page are removed
// from it, and the matching audio frames are cut.
//
// When the last page change inside the range would otherwise be lost, it is
// kept and moved to Begin so the page shown after the cut stays the same.
type Cut struct {
	Interval domain.Interval

	start        int
	dropped      []domain.PlaybackAction
	carried      bool
	orphans      []orphan
	prevAudio    domain.Audio
	prevDuration int64
}

// Trim keeps only [Begin, End) of the timeline and moves it to zero. When End
// equals the duration, actions stamped exactly at End are kept as well.
type Trim struct {
	Interval domain.Interval

	prev timeline
}

// InsertPage inserts a new page after the page shown at At. Actions on that
// page from At onwards move to the new page, together with their shapes,
// unless the shape was already addressed before At. A page change to the new
// page is recorded at At.
type InsertPage struct {
	At     int64
	Shapes []domain.Shape

	source      int
	prevActions []domain.PlaybackAction
	prevShapes  []domain.Shape
}

// ReplacePage swaps the shapes of page Index.
type ReplacePage struct {
	Index  int
	Shapes []domain.Shape

	prev []domain.Shape
}

// ModifyPositions translates the recorded geometry of every action that
// addresses Handle on Page. The live shape is left alone.
type ModifyPositions struct {
	Page   int
	Handle int32
	Delta  domain.Point

	prev []indexedPoints
}

// ReplacePageActions removes and adds recorded actions on one page as a
// single step. Removed actions are matched by value.
type ReplacePageActions struct {
	Page   int
	Add    []domain.PlaybackAction
	Remove []domain.PlaybackAction

	prev []domain.PlaybackAction
}

func (*Cut) editAction()                {}
func (*Trim) editAction()               {}
func (*InsertPage) editAction()         {}
func (*ReplacePage) editAction()        {}
func (*ModifyPositions) editAction()    {}
func (*ReplacePageActions) editAction() {}

type orphan struct {
	page  int
	index int
	shape domain.Shape
}

type timeline struct {
	actions  []domain.PlaybackAction
	audio    domain.Audio
	duration int64
}

type indexedPoints struct {
	index  int
	points []domain.Point
}

type shapeRef struct {
	page   int
	handle int32
}

func validate(rec *domain.Recording, a Action) error {
	switch a := a.(type) {
	case *Cut:
		return checkInterval("cut", a.Interval, rec.Duration())
	case *Trim:
		return checkInterval("trim", a.Interval, rec.Duration())
	case *InsertPage:
		_, err := a.plan(rec)
		return err
	case *ReplacePage:
		return a.check(rec)
	case *ModifyPositions:
		return a.check(rec)
	case *ReplacePageActions:
		_, err := a.merge(rec)
		return err
	case *HidePage:
		return checkRemovablePage("hide page", rec, a.Index)
	case *DeletePage:
		return checkRemovablePage("delete page", rec, a.Index)
	case *MovePage:
		_, err := a.check(rec)
		return err
	case *HideAndMoveNextPage:
		_, err := a.check(rec)
		return err
	case *ImportRecording:
		return a.check(rec)
	default:
		return fmt.Errorf("edit: unsupported action %T", a)
	}
}

func apply(rec *domain.Recording, a Action) {
	switch a := a.(type) {
	case *Cut:
		a.apply(rec)
	case *Trim:
		a.apply(rec)
	case *InsertPage:
		a.apply(rec)
	case *ReplacePage:
		p, _ := rec.Page(a.Index)
		a.prev = p.Shapes()
		rec.Apply(func(tx *domain.Tx) { tx.SetPageShapes(a.Index, a.Shapes) })
	case *ModifyPositions:
		a.apply(rec)
	case *ReplacePageActions:
		a.prev = rec.Actions()
		out, _ := a.merge(rec)
		rec.Apply(func(tx *domain.Tx) { tx.SetActions(out) })
	case *HidePage:
		a.apply(rec)
	case *DeletePage:
		a.apply(rec)
	case *MovePage:
		a.apply(rec)
	case *HideAndMoveNextPage:
		a.apply(rec)
	case *ImportRecording:
		a.apply(rec)
	}
}

func revert(rec *domain.Recording, a Action) {
	switch a := a.(type) {
	case *Cut:
		a.revert(rec)
	case *Trim:
		rec.Apply(func(tx *domain.Tx) {
			tx.SetActions(a.prev.actions)
			tx.SetAudio(a.prev.audio)
			tx.SetDuration(a.prev.duration)
		})
	case *InsertPage:
		rec.Apply(func(tx *domain.Tx) {
			tx.RemovePage(a.source + 1)
			if a.source >= 0 {
				tx.SetPageShapes(a.source, a.prevShapes)
			}
			tx.SetActions(a.prevActions)
		})
	case *ReplacePage:
		rec.Apply(func(tx *domain.Tx) { tx.SetPageShapes(a.Index, a.prev) })
	case *ModifyPositions:
		acts := rec.Actions()
		for _, p := range a.prev {
			acts[p.index].Points = p.points
		}
		rec.Apply(func(tx *domain.Tx) { tx.SetActions(acts) })
	case *ReplacePageActions:
		rec.Apply(func(tx *domain.Tx) { tx.SetActions(a.prev) })
	case *HidePage:
		a.removed.restore(rec)
	case *DeletePage:
		a.revert(rec)
	case *MovePage:
		rec.Apply(func(tx *domain.Tx) { tx.SetActions(a.prev) })
	case *HideAndMoveNextPage:
		a.removed.restore(rec)
	case *ImportRecording:
		a.revert(rec)
	}
}

func checkInterval(op string, iv domain.Interval, duration int64) error {
	if iv.Begin > iv.End {
		return domain.NewEditError(op, "interval %v is reversed", iv)
	}
	if !iv.Within(duration) {
		return domain.NewEditError(op, "interval %v exceeds recording [0, %d]", iv, duration)
	}
	return nil
}

// searchTime returns the index of the first action stamped at or after t.
func searchTime(acts []domain.PlaybackAction, t int64) int {
	i, _ := slices.BinarySearchFunc(acts, t, func(a domain.PlaybackAction, t int64) int {
		return cmp.Compare(a.Timestamp, t)
	})
	return i
}

func (c *Cut) apply(rec *domain.Recording) {
	acts := rec.Actions()
	begin, span := c.Interval.Begin, c.Interval.Length()
	i, j := searchTime(acts, begin), searchTime(acts, c.Interval.End)

	c.start = i
	c.dropped = slices.Clone(acts[i:j])
	c.prevAudio = rec.Audio()
	c.prevDuration = rec.Duration()

	out := make([]domain.PlaybackAction, 0, len(acts)-(j-i)+1)
	out = append(out, acts[:i]...)
	carry, ok := carriedPage(acts[:i], c.dropped, acts[j:], c.Interval.End)
	c.carried = ok
	if ok {
		carry.Timestamp = begin
		out = append(out, carry)
	}
	for _, a := range acts[j:] {
		out = append(out, a.Shifted(-span))
	}

	orphaned := unreferenced(c.dropped, out, rec.PageCount())
	c.orphans = nil
	rec.Apply(func(tx *domain.Tx) {
		tx.SetActions(out)
		tx.SetDuration(c.prevDuration - span)
		tx.SetAudio(c.prevAudio.Cut(c.Interval, c.prevDuration))
		for _, ref := range orphaned {
			if idx, s := tx.RemoveShape(ref.page, ref.handle); idx >= 0 {
				c.orphans = append(c.orphans, orphan{page: ref.page, index: idx, shape: s})
			}
		}
	})
}

func (c *Cut) revert(rec *domain.Recording) {
	cur := rec.Actions()
	span := c.Interval.Length()
	rest := cur[c.start:]
	if c.carried {
		rest = rest[1:]
	}

	out := make([]domain.PlaybackAction, 0, len(cur)+len(c.dropped))
	out = append(out, cur[:c.start]...)
	out = append(out, c.dropped...)
	for _, a := range rest {
		out = append(out, a.Shifted(span))
	}

	rec.Apply(func(tx *domain.Tx) {
		tx.SetActions(out)
		tx.SetDuration(c.prevDuration)
		tx.SetAudio(c.prevAudio)
		for k := len(c.orphans) - 1; k >= 0; k-- {
			o := c.orphans[k]
			tx.InsertShape(o.page, o.index, o.shape)
		}
	})
}

// carriedPage returns the last page change among dropped when it would change
// the page shown at the cut position and no page change at end replaces it.
func carriedPage(before, dropped, after []domain.PlaybackAction, end int64) (domain.PlaybackAction, bool) {
	last := -1
	for k, a := range dropped {
		if a.Type == domain.ActionPageSelected {
			last = k
		}
	}
	if last < 0 {
		return domain.PlaybackAction{}, false
	}
	for _, a := range after {
		if a.Timestamp != end {
			break
		}
		if a.Type == domain.ActionPageSelected {
			return domain.PlaybackAction{}, false
		}
	}
	shown := 0
	for _, a := range before {
		if a.Type == domain.ActionPageSelected {
			shown = a.Page
		}
	}
	if dropped[last].Page == shown {
		return domain.PlaybackAction{}, false
	}
	return dropped[last], true
}

// unreferenced returns the shapes addressed by dropped that no remaining
// action addresses, in order of first appearance.
func unreferenced(dropped, remaining []domain.PlaybackAction, pages int) []shapeRef {
	var refs []shapeRef
	seen := make(map[shapeRef]bool)
	for _, a := range dropped {
		if !a.Type.AddressesShape() || a.Page < 0 || a.Page >= pages {
			continue
		}
		ref := shapeRef{page: a.Page, handle: a.Handle}
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	live := make(map[shapeRef]bool)
	for _, a := range remaining {
		if a.Type.AddressesShape() {
			live[shapeRef{page: a.Page, handle: a.Handle}] = true
		}
	}
	return slices.DeleteFunc(refs, func(r shapeRef) bool { return live[r] })
}

func (t *Trim) apply(rec *domain.Recording) {
	acts := rec.Actions()
	begin, end := t.Interval.Begin, t.Interval.End
	t.prev = timeline{actions: acts, audio: rec.Audio(), duration: rec.Duration()}

	i, j := searchTime(acts, begin), searchTime(acts, end)
	if end == t.prev.duration {
		j = searchTime(acts, end+1)
	}

	out := make([]domain.PlaybackAction, 0, j-i+1)
	if carry, ok := leadingPage(acts[:i], acts[i:j], begin); ok {
		carry.Timestamp = 0
		out = append(out, carry)
	}
	for _, a := range acts[i:j] {
		out = append(out, a.Shifted(-begin))
	}

	rec.Apply(func(tx *domain.Tx) {
		tx.SetActions(out)
		tx.SetDuration(end - begin)
		tx.SetAudio(t.prev.audio.Slice(t.Interval))
	})
}

// leadingPage returns the page change in effect at begin when the kept part
// does not start with its own page change.
func leadingPage(before, kept []domain.PlaybackAction, begin int64) (domain.PlaybackAction, bool) {
	for _, a := range kept {
		if a.Timestamp != begin {
			break
		}
		if a.Type == domain.ActionPageSelected {
			return domain.PlaybackAction{}, false
		}
	}
	for k := len(before) - 1; k >= 0; k-- {
		if before[k].Type == domain.ActionPageSelected {
			return before[k], before[k].Page != 0
		}
	}
	return domain.PlaybackAction{}, false
}

type insertPlan struct {
	source       int
	actions      []domain.PlaybackAction
	sourceShapes []domain.Shape
	pageShapes   []domain.Shape
}

func (ip *InsertPage) plan(rec *domain.Recording) (insertPlan, error) {
	const op = "insert page"
	if ip.At < 0 || ip.At > rec.Duration() {
		return insertPlan{}, domain.NewEditError(op, "position %d outside [0, %d]", ip.At, rec.Duration())
	}

	p := rec.PageIndexAt(ip.At)
	q := p + 1
	acts := rec.Actions()
	split := searchTime(acts, ip.At)

	before := make(map[int32]bool)
	for _, a := range acts[:split] {
		if a.Type.AddressesShape() && a.Page == p {
			before[a.Handle] = true
		}
	}

	moved := make(map[int32]bool)
	out := make([]domain.PlaybackAction, 0, len(acts)+1)
	for k, a := range acts {
		if k == split {
			out = append(out, domain.NewPageSelected(ip.At, q))
		}
		switch {
		case a.Page >= q:
			a.Page++
		case k >= split && a.Page == p && a.Type.AddressesShape() && !before[a.Handle]:
			a.Page = q
			moved[a.Handle] = true
		}
		out = append(out, a)
	}
	if split == len(acts) {
		out = append(out, domain.NewPageSelected(ip.At, q))
	}

	plan := insertPlan{source: p, actions: out}
	seen := make(map[int32]bool)
	for _, s := range ip.Shapes {
		if seen[s.Handle] {
			return insertPlan{}, domain.NewEditError(op, "shape %d: %v", s.Handle, domain.ErrDuplicateHandle)
		}
		seen[s.Handle] = true
		plan.pageShapes = append(plan.pageShapes, s)
	}
	if p >= 0 {
		src, _ := rec.Page(p)
		for _, s := range src.Shapes() {
			if !moved[s.Handle] {
				plan.sourceShapes = append(plan.sourceShapes, s)
				continue
			}
			if seen[s.Handle] {
				return insertPlan{}, domain.NewEditError(op, "shape %d: %v", s.Handle, domain.ErrDuplicateHandle)
			}
			plan.pageShapes = append(plan.pageShapes, s)
		}
	}
	return plan, nil
}

func (ip *InsertPage) apply(rec *domain.Recording) {
	plan, _ := ip.plan(rec)
	ip.source = plan.source
	ip.prevActions = rec.Actions()
	ip.prevShapes = nil
	if plan.source >= 0 {
		src, _ := rec.Page(plan.source)
		ip.prevShapes = src.Shapes()
	}

	rec.Apply(func(tx *domain.Tx) {
		tx.SetActions(plan.actions)
		if plan.source >= 0 {
			tx.SetPageShapes(plan.source, plan.sourceShapes)
		}
		tx.InsertPage(plan.source+1, domain.NewPage(plan.pageShapes...))
	})
}

func (rp *ReplacePage) check(rec *domain.Recording) error {
	const op = "replace page"
	if rp.Index < 0 || rp.Index >= rec.PageCount() {
		return domain.NewEditError(op, "page %d out of range [0, %d)", rp.Index, rec.PageCount())
	}
	handles := make(map[int32]bool, len(rp.Shapes))
	for _, s := range rp.Shapes {
		if handles[s.Handle] {
			return domain.NewEditError(op, "shape %d: %v", s.Handle, domain.ErrDuplicateHandle)
		}
		handles[s.Handle] = true
	}
	for _, a := range rec.Actions() {
		if a.Type.AddressesShape() && a.Page == rp.Index && !handles[a.Handle] {
			return domain.NewEditError(op, "shape %d is still addressed by a %s action", a.Handle, a.Type)
		}
	}
	return nil
}

func (m *ModifyPositions) check(rec *domain.Recording) error {
	const op = "modify positions"
	acts := rec.ActionsForHandle(m.Page, m.Handle)
	if len(acts) == 0 {
		return domain.NewEditError(op, "no action addresses shape %d on page %d", m.Handle, m.Page)
	}
	if !slices.ContainsFunc(acts, func(a domain.PlaybackAction) bool { return a.Type.HasGeometry() }) {
		return domain.NewEditError(op, "no action on shape %d of page %d carries geometry", m.Handle, m.Page)
	}
	return nil
}

func (m *ModifyPositions) apply(rec *domain.Recording) {
	acts := rec.Actions()
	m.prev = nil
	for k, a := range acts {
		if a.Addresses(m.Page, m.Handle) && a.Type.HasGeometry() {
			m.prev = append(m.prev, indexedPoints{index: k, points: a.Points})
			acts[k] = a.Translated(m.Delta)
		}
	}
	rec.Apply(func(tx *domain.Tx) { tx.SetActions(acts) })
}

// merge returns the action sequence with Remove taken out and Add inserted
// after existing actions of equal timestamp.
func (r *ReplacePageActions) merge(rec *domain.Recording) ([]domain.PlaybackAction, error) {
	const op = "replace page actions"
	if r.Page < 0 || r.Page >= rec.PageCount() {
		return nil, domain.NewEditError(op, "page %d out of range [0, %d)", r.Page, rec.PageCount())
	}
	page, _ := rec.Page(r.Page)

	out := rec.Actions()
	for _, rm := range r.Remove {
		if rm.Page != r.Page {
			return nil, domain.NewEditError(op, "removed action targets page %d, want %d", rm.Page, r.Page)
		}
		k := slices.IndexFunc(out, rm.Equal)
		if k < 0 {
			return nil, domain.NewEditError(op, "%s action at %d is not recorded", rm.Type, rm.Timestamp)
		}
		out = slices.Delete(out, k, k+1)
	}

	add := slices.Clone(r.Add)
	slices.SortStableFunc(add, func(a, b domain.PlaybackAction) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	for _, a := range add {
		switch {
		case !a.Type.Valid():
			return nil, domain.NewEditError(op, "unknown action type %d", a.Type)
		case a.Page != r.Page:
			return nil, domain.NewEditError(op, "action targets page %d, want %d", a.Page, r.Page)
		case a.Timestamp < 0 || a.Timestamp > rec.Duration():
			return nil, domain.NewEditError(op, "timestamp %d outside [0, %d]", a.Timestamp, rec.Duration())
		case a.Type.AddressesShape() && !page.HasShape(a.Handle):
			return nil, domain.NewEditError(op, "shape %d: %v", a.Handle, domain.ErrShapeNotFound)
		}
		out = slices.Insert(out, searchTime(out, a.Timestamp+1), a)
	}
	return out, nil
}
