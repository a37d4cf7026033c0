package domain

import "fmt"

// Page holds the shapes of one document page and the live undo/redo stack of
// shape edits made on it. The live stack is independent of the timeline edit
// history of the owning recording.
type Page struct {
	shapes []Shape
	undo   []ShapeAction
	redo   []ShapeAction

	// onChange notifies the owning recording so it can refresh its state hash.
	onChange func()
}

// NewPage creates a page holding the given shapes.
func NewPage(shapes ...Shape) *Page {
	return &Page{shapes: append([]Shape(nil), shapes...)}
}

// Shapes returns a copy of the shape list in paint order.
func (p *Page) Shapes() []Shape {
	return append([]Shape(nil), p.shapes...)
}

// ShapeCount returns the number of shapes on the page.
func (p *Page) ShapeCount() int {
	return len(p.shapes)
}

// Shape returns the shape with the given handle.
func (p *Page) Shape(handle int32) (Shape, bool) {
	if i := p.indexOf(handle); i >= 0 {
		return p.shapes[i], true
	}
	return Shape{}, false
}

// HasShape reports whether a shape with the given handle exists.
func (p *Page) HasShape(handle int32) bool {
	return p.indexOf(handle) >= 0
}

// HasUndoActions reports whether a live edit can be undone.
func (p *Page) HasUndoActions() bool {
	return len(p.undo) > 0
}

// HasRedoActions reports whether a live edit can be redone.
func (p *Page) HasRedoActions() bool {
	return len(p.redo) > 0
}

// Execute validates and applies a live shape edit, then records it for undo.
// The redo stack is cleared.
func (p *Page) Execute(a ShapeAction) error {
	if err := p.check(a); err != nil {
		return err
	}
	p.apply(a)
	p.undo = append(p.undo, a)
	p.redo = nil
	p.changed()
	return nil
}

// Undo reverts the last live shape edit.
func (p *Page) Undo() error {
	if len(p.undo) == 0 {
		return ErrNothingToUndo
	}
	a := p.undo[len(p.undo)-1]
	p.undo = p.undo[:len(p.undo)-1]
	p.revert(a)
	p.redo = append(p.redo, a)
	p.changed()
	return nil
}

// Redo re-applies the last undone live shape edit.
func (p *Page) Redo() error {
	if len(p.redo) == 0 {
		return ErrNothingToRedo
	}
	a := p.redo[len(p.redo)-1]
	p.redo = p.redo[:len(p.redo)-1]
	p.apply(a)
	p.undo = append(p.undo, a)
	p.changed()
	return nil
}

func (p *Page) check(a ShapeAction) error {
	switch a := a.(type) {
	case *CreateShapeAction:
		seen := make(map[int32]bool, len(a.Shapes))
		for _, s := range a.Shapes {
			if seen[s.Handle] || p.HasShape(s.Handle) {
				return fmt.Errorf("create shape %d: %w", s.Handle, ErrDuplicateHandle)
			}
			seen[s.Handle] = true
		}
	case *RemoveShapeAction:
		seen := make(map[int32]bool, len(a.Handles))
		for _, h := range a.Handles {
			if seen[h] {
				return fmt.Errorf("remove shape %d: %w", h, ErrDuplicateHandle)
			}
			if !p.HasShape(h) {
				return fmt.Errorf("remove shape %d: %w", h, ErrShapeNotFound)
			}
			seen[h] = true
		}
	case *ModifyShapeAction:
		if !p.HasShape(a.Handle) {
			return fmt.Errorf("modify shape %d: %w", a.Handle, ErrShapeNotFound)
		}
	default:
		return fmt.Errorf("unsupported shape action %T", a)
	}
	return nil
}

func (p *Page) apply(a ShapeAction) {
	switch a := a.(type) {
	case *CreateShapeAction:
		p.shapes = append(p.shapes[:len(p.shapes):len(p.shapes)], a.Shapes...)
	case *RemoveShapeAction:
		a.removed = a.removed[:0]
		for _, h := range a.Handles {
			i := p.indexOf(h)
			a.removed = append(a.removed, indexedShape{index: i, shape: p.shapes[i]})
			p.removeAt(i)
		}
	case *ModifyShapeAction:
		i := p.indexOf(a.Handle)
		a.prev = p.shapes[i]
		p.replaceAt(i, a.prev.Translated(a.Delta))
	}
}

func (p *Page) revert(a ShapeAction) {
	switch a := a.(type) {
	case *CreateShapeAction:
		for _, s := range a.Shapes {
			if i := p.indexOf(s.Handle); i >= 0 {
				p.removeAt(i)
			}
		}
	case *RemoveShapeAction:
		for i := len(a.removed) - 1; i >= 0; i-- {
			p.insertAt(a.removed[i].index, a.removed[i].shape)
		}
	case *ModifyShapeAction:
		p.replaceAt(p.indexOf(a.Handle), a.prev)
	}
}

func (p *Page) indexOf(handle int32) int {
	for i, s := range p.shapes {
		if s.Handle == handle {
			return i
		}
	}
	return -1
}

// The helpers below always build a new backing array so that snapshots
// sharing the previous one are unaffected.

func (p *Page) removeAt(i int) {
	out := make([]Shape, 0, len(p.shapes)-1)
	out = append(out, p.shapes[:i]...)
	p.shapes = append(out, p.shapes[i+1:]...)
}

func (p *Page) insertAt(i int, s Shape) {
	if i > len(p.shapes) {
		i = len(p.shapes)
	}
	out := make([]Shape, 0, len(p.shapes)+1)
	out = append(out, p.shapes[:i]...)
	out = append(out, s)
	p.shapes = append(out, p.shapes[i:]...)
}

func (p *Page) replaceAt(i int, s Shape) {
	out := append([]Shape(nil), p.shapes...)
	out[i] = s
	p.shapes = out
}

func (p *Page) setShapes(shapes []Shape) {
	p.shapes = append([]Shape(nil), shapes...)
}

func (p *Page) changed() {
	if p.onChange != nil {
		p.onChange()
	}
}

// clone copies the shape list. The live undo/redo stack is not carried over.
func (p *Page) clone() *Page {
	return &Page{shapes: p.shapes[:len(p.shapes):len(p.shapes)]}
}
