// Package id generates budget ids.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Generator returns a fresh id on every call.
type Generator func() string

// New returns a random UUID string.
func New() string {
	return uuid.NewString()
}

// Sequence returns a generator producing "prefix-001", "prefix-002", ...
// It is not safe for concurrent use.
func Sequence(prefix string) Generator {
	seq := 0
	return func() string {
		seq++
		return FormatSeq(prefix, seq)
	}
}

// FormatSeq returns an id like "budget-007".
func FormatSeq(prefix string, seq int) string {
	return fmt.Sprintf("%s-%03d", prefix, seq)
}

// Normalize trims surrounding whitespace from a caller-supplied id.
func Normalize(raw string) string {
	return strings.TrimSpace(raw)
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
