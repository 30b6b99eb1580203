package calendar

import "fmt"

// Range is an inclusive interval [Start, End]. A zero End means the range is
// unbounded towards the future.
type Range struct {
	Start Date
	End   Date
}

// NewRange validates that start is set and not after a non-zero end.
func NewRange(start, end Date) (Range, error) {
	if start.IsZero() {
		return Range{}, fmt.Errorf("%w: range start is required", ErrRange)
	}
	if !end.IsZero() && start.After(end) {
		return Range{}, fmt.Errorf("%w: start %s is after end %s", ErrRange, start, end)
	}
	return Range{Start: start, End: end}, nil
}

// From returns the unbounded range starting at start.
func From(start Date) Range {
	return Range{Start: start}
}

// Unbounded reports whether the range has no end.
func (r Range) Unbounded() bool { return r.End.IsZero() }

// Contains reports whether d lies in [Start, End].
func (r Range) Contains(d Date) bool {
	if d.Before(r.Start) {
		return false
	}
	return r.Unbounded() || !d.After(r.End)
}

// Overlaps reports whether r and other share at least one day.
func (r Range) Overlaps(other Range) bool {
	_, ok := Overlap(r, other)
	return ok
}

// Equal reports whether both ranges start on the same day and end on the same
// day or are both unbounded.
func (r Range) Equal(other Range) bool {
	return RangeEqual(r, other)
}

func (r Range) String() string {
	if r.Unbounded() {
		return "[" + r.Start.String() + ", ∞)"
	}
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// Overlap returns the inclusive intersection of a and b. The second result is
// false when the ranges share no day.
func Overlap(a, b Range) (Range, bool) {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}

	end := minEnd(a.End, b.End)
	if !end.IsZero() && start.After(end) {
		return Range{}, false
	}
	return Range{Start: start, End: end}, true
}

// RangeEqual compares start dates and ends, treating two unbounded ends as equal.
func RangeEqual(a, b Range) bool {
	return a.Start.Equal(b.Start) && a.End.Equal(b.End)
}

// minEnd treats the zero Date as positive infinity.
func minEnd(a, b Date) Date {
	switch {
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	case a.Before(b):
		return a
	default:
		return b
	}
}
