package domain

// ShapeAction is a live document edit on a single page. The set of variants
// is closed: CreateShapeAction, RemoveShapeAction and ModifyShapeAction.
// Page dispatches on the concrete type.
type ShapeAction interface {
	shapeAction()
}

// CreateShapeAction appends shapes to a page.
type CreateShapeAction struct {
	Shapes []Shape
}

// RemoveShapeAction removes shapes from a page by handle.
type RemoveShapeAction struct {
	Handles []int32

	removed []indexedShape
}

// ModifyShapeAction moves a shape by Delta.
type ModifyShapeAction struct {
	Handle int32
	Delta  Point

	prev Shape
}

func (*CreateShapeAction) shapeAction() {}
func (*RemoveShapeAction) shapeAction() {}
func (*ModifyShapeAction) shapeAction() {}

// indexedShape remembers where a removed shape was so it can be restored
// at the same position.
type indexedShape struct {
	index int
	shape Shape
}
