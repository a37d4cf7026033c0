package domain

// ActionType tags the PlaybackAction variants.
// The numeric values are part of the on-disk format.
type ActionType uint8

const (
	ActionShapeCreate ActionType = iota + 1
	ActionShapeModify
	ActionShapeRemove
	ActionTextChange
	ActionTextFontChange
	ActionTextLocationChange
	ActionPageSelected
)

// String returns a human-readable representation of the action type.
func (t ActionType) String() string {
	switch t {
	case ActionShapeCreate:
		return "ShapeCreate"
	case ActionShapeModify:
		return "ShapeModify"
	case ActionShapeRemove:
		return "ShapeRemove"
	case ActionTextChange:
		return "TextChange"
	case ActionTextFontChange:
		return "TextFontChange"
	case ActionTextLocationChange:
		return "TextLocationChange"
	case ActionPageSelected:
		return "PageSelected"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is a known variant.
func (t ActionType) Valid() bool {
	return t >= ActionShapeCreate && t <= ActionPageSelected
}

// HasGeometry reports whether the variant carries points that follow a
// dragged shape.
func (t ActionType) HasGeometry() bool {
	return t == ActionShapeCreate || t == ActionShapeModify || t == ActionTextLocationChange
}

// AddressesShape reports whether the variant targets a shape by handle.
func (t ActionType) AddressesShape() bool {
	return t.Valid() && t != ActionPageSelected
}

// Brush describes the stroke of a shape.
type Brush struct {
	Color uint32 // RGBA
	Width float64
}

// Font describes the text style of a text shape.
type Font struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// PlaybackAction is a timestamped, replayable record of a single annotation
// or page event. Which payload fields are meaningful depends on Type:
//
//   - ShapeCreate, ShapeModify: Brush and Points
//   - TextChange: Text
//   - TextFontChange: Font
//   - TextLocationChange: Points (a single anchor)
//   - ShapeRemove, PageSelected: none
//
// Payload slices are treated as immutable. Use the returning methods
// (Shifted, Translated) instead of writing into them.
type PlaybackAction struct {
	Type ActionType

	// Timestamp is the offset from the start of the recording in milliseconds.
	Timestamp int64

	// Page is the index of the page the action targets. For PageSelected it is
	// the page being shown.
	Page int

	// Handle addresses the shape on Page. Zero for PageSelected.
	Handle int32

	Brush  Brush
	Points []Point
	Text   string
	Font   Font
}

// NewShapeCreate creates a ShapeCreate action.
func NewShapeCreate(ts int64, page int, handle int32, brush Brush, points ...Point) PlaybackAction {
	return PlaybackAction{Type: ActionShapeCreate, Timestamp: ts, Page: page, Handle: handle, Brush: brush, Points: points}
}

// NewShapeModify creates a ShapeModify action.
func NewShapeModify(ts int64, page int, handle int32, brush Brush, points ...Point) PlaybackAction {
	return PlaybackAction{Type: ActionShapeModify, Timestamp: ts, Page: page, Handle: handle, Brush: brush, Points: points}
}

// NewShapeRemove creates a ShapeRemove action.
func NewShapeRemove(ts int64, page int, handle int32) PlaybackAction {
	return PlaybackAction{Type: ActionShapeRemove, Timestamp: ts, Page: page, Handle: handle}
}

// NewTextChange creates a TextChange action.
func NewTextChange(ts int64, page int, handle int32, text string) PlaybackAction {
	return PlaybackAction{Type: ActionTextChange, Timestamp: ts, Page: page, Handle: handle, Text: text}
}

// NewTextFontChange creates a TextFontChange action.
func NewTextFontChange(ts int64, page int, handle int32, font Font) PlaybackAction {
	return PlaybackAction{Type: ActionTextFontChange, Timestamp: ts, Page: page, Handle: handle, Font: font}
}

// NewTextLocationChange creates a TextLocationChange action.
func NewTextLocationChange(ts int64, page int, handle int32, at Point) PlaybackAction {
	return PlaybackAction{Type: ActionTextLocationChange, Timestamp: ts, Page: page, Handle: handle, Points: []Point{at}}
}

// NewPageSelected creates a PageSelected action.
func NewPageSelected(ts int64, page int) PlaybackAction {
	return PlaybackAction{Type: ActionPageSelected, Timestamp: ts, Page: page}
}

// Shifted returns a copy of the action moved by offset milliseconds.
func (a PlaybackAction) Shifted(offset int64) PlaybackAction {
	a.Timestamp += offset
	return a
}

// Translated returns a copy of the action with its geometry moved by d.
// Actions without geometry are returned unchanged.
func (a PlaybackAction) Translated(d Point) PlaybackAction {
	if !a.Type.HasGeometry() {
		return a
	}
	a.Points = translatePoints(a.Points, d)
	return a
}

// Addresses reports whether the action targets handle on page.
func (a PlaybackAction) Addresses(page int, handle int32) bool {
	return a.Type.AddressesShape() && a.Page == page && a.Handle == handle
}

// Equal reports whether both actions carry the same type, position and payload.
func (a PlaybackAction) Equal(b PlaybackAction) bool {
	return a.Type == b.Type &&
		a.Timestamp == b.Timestamp &&
		a.Page == b.Page &&
		a.Handle == b.Handle &&
		a.Brush == b.Brush &&
		a.Text == b.Text &&
		a.Font == b.Font &&
		equalPoints(a.Points, b.Points)
}
