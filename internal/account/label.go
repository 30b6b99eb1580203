// Package account models hierarchical chart-of-accounts paths such as
// "Expenses:Food:Groceries".
package account

import (
	"errors"
	"fmt"
	"strings"
)

// Separator splits account path segments.
const Separator = ":"

// ErrInvalidLabel is returned for empty paths or paths with empty segments.
var ErrInvalidLabel = errors.New("invalid account label")

// Label is a non-empty, pre-segmented account path. The zero Label is invalid
// and only useful as a "not set" marker.
type Label struct {
	segments []string
}

// Parse splits path on ":" and rejects empty input and empty segments
// (leading, trailing or doubled separators).
func Parse(path string) (Label, error) {
	if path == "" {
		return Label{}, fmt.Errorf("%w: empty path", ErrInvalidLabel)
	}
	parts := strings.Split(path, Separator)
	for i, p := range parts {
		if p == "" {
			return Label{}, fmt.Errorf("%w: empty segment %d in %q", ErrInvalidLabel, i, path)
		}
	}
	return Label{segments: parts}, nil
}

// MustParse is Parse for literals. Panics on invalid input.
func MustParse(path string) Label {
	l, err := Parse(path)
	if err != nil {
		panic(err)
	}
	return l
}

// FromSegments builds a Label from already split segments.
func FromSegments(segments ...string) (Label, error) {
	return Parse(strings.Join(segments, Separator))
}

// Segments returns a copy of the path segments.
func (l Label) Segments() []string {
	out := make([]string, len(l.segments))
	copy(out, l.segments)
	return out
}

// Depth is the number of segments.
func (l Label) Depth() int { return len(l.segments) }

// IsZero reports whether l was never parsed.
func (l Label) IsZero() bool { return len(l.segments) == 0 }

// Root returns the top-level segment, e.g. "Expenses".
func (l Label) Root() string {
	if l.IsZero() {
		return ""
	}
	return l.segments[0]
}

// Leaf returns the last segment.
func (l Label) Leaf() string {
	if l.IsZero() {
		return ""
	}
	return l.segments[len(l.segments)-1]
}

// Parent returns the label minus its last segment. The second result is false
// for top-level labels.
func (l Label) Parent() (Label, bool) {
	if len(l.segments) < 2 {
		return Label{}, false
	}
	return Label{segments: l.segments[:len(l.segments)-1 : len(l.segments)-1]}, true
}

// Child appends one segment.
func (l Label) Child(segment string) (Label, error) {
	if segment == "" || strings.Contains(segment, Separator) {
		return Label{}, fmt.Errorf("%w: bad segment %q", ErrInvalidLabel, segment)
	}
	segs := make([]string, len(l.segments), len(l.segments)+1)
	copy(segs, l.segments)
	return Label{segments: append(segs, segment)}, nil
}

// Prefix returns the first n segments.
func (l Label) Prefix(n int) Label {
	if n >= len(l.segments) {
		return l
	}
	return Label{segments: l.segments[:n:n]}
}

// Equal compares segment by segment.
func (l Label) Equal(other Label) bool {
	if len(l.segments) != len(other.segments) {
		return false
	}
	for i := range l.segments {
		if l.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// IsAncestorOf reports whether l is a strict prefix of other.
func (l Label) IsAncestorOf(other Label) bool {
	if len(l.segments) >= len(other.segments) {
		return false
	}
	for i := range l.segments {
		if l.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// Contains reports whether other is l or one of its descendants.
func (l Label) Contains(other Label) bool {
	return l.Equal(other) || l.IsAncestorOf(other)
}

func (l Label) String() string {
	return strings.Join(l.segments, Separator)
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	if l.IsZero() {
		return nil, fmt.Errorf("%w: marshaling zero label", ErrInvalidLabel)
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
