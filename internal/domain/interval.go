package domain

import "fmt"

// Interval is a closed millisecond range [Begin, End] with Begin <= End.
type Interval struct {
	Begin int64
	End   int64
}

// NewInterval creates an interval, rejecting begin > end.
func NewInterval(begin, end int64) (Interval, error) {
	if begin > end {
		return Interval{}, NewEditError("interval", "begin %d is after end %d", begin, end)
	}
	return Interval{Begin: begin, End: end}, nil
}

// Length returns End - Begin.
func (i Interval) Length() int64 {
	return i.End - i.Begin
}

// Contains reports whether t lies in the closed range.
func (i Interval) Contains(t int64) bool {
	return t >= i.Begin && t <= i.End
}

// Covers reports whether t lies in the half-open range [Begin, End).
// Timeline edits partition actions with Covers: an action stamped exactly at
// End belongs to the part after the interval.
func (i Interval) Covers(t int64) bool {
	return t >= i.Begin && t < i.End
}

// Within reports whether 0 <= Begin <= End <= duration.
func (i Interval) Within(duration int64) bool {
	return i.Begin >= 0 && i.Begin <= i.End && i.End <= duration
}

// Intersects reports whether both closed ranges share at least one point.
func (i Interval) Intersects(o Interval) bool {
	return i.Begin <= o.End && o.Begin <= i.End
}

func (i Interval) String() string {
	return fmt.Sprintf("[%d, %d]", i.Begin, i.End)
}
