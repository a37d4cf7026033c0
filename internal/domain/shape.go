package domain

// ShapeKind identifies the geometry of a shape. The numeric values are part
// of the on-disk format.
type ShapeKind uint8

const (
	ShapeStroke ShapeKind = iota + 1
	ShapeLine
	ShapeRectangle
	ShapeEllipse
	ShapeText
)

// String returns a human-readable representation of the shape kind.
func (k ShapeKind) String() string {
	switch k {
	case ShapeStroke:
		return "Stroke"
	case ShapeLine:
		return "Line"
	case ShapeRectangle:
		return "Rectangle"
	case ShapeEllipse:
		return "Ellipse"
	case ShapeText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Valid reports whether k is a known shape kind.
func (k ShapeKind) Valid() bool {
	return k >= ShapeStroke && k <= ShapeText
}

// Shape is an annotation on a page, addressed by a handle that is unique
// within the page and stable across reordering.
type Shape struct {
	Handle int32
	Kind   ShapeKind
	Brush  Brush
	Points []Point
	Text   string
}

// Translated returns a copy of the shape moved by d.
func (s Shape) Translated(d Point) Shape {
	s.Points = translatePoints(s.Points, d)
	return s
}

// Equal reports whether both shapes carry the same handle, kind and payload.
func (s Shape) Equal(o Shape) bool {
	return s.Handle == o.Handle &&
		s.Kind == o.Kind &&
		s.Brush == o.Brush &&
		s.Text == o.Text &&
		equalPoints(s.Points, o.Points)
}
