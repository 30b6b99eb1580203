package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSeq(t *testing.T) {
	tests := []struct {
		prefix string
		seq    int
		want   string
	}{
		{"budget", 1, "budget-001"},
		{"budget", 99, "budget-099"},
		{"op", 1234, "op-1234"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSeq(tt.prefix, tt.seq))
	}
}

func TestSequence(t *testing.T) {
	next := Sequence("b")
	assert.Equal(t, "b-001", next())
	assert.Equal(t, "b-002", next())

	other := Sequence("b")
	assert.Equal(t, "b-001", other(), "generators are independent")
}

func TestNew(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a, b)
	assert.True(t, IsUUID(a))
	assert.False(t, IsUUID("budget-001"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "abc", Normalize("  abc\t"))
	assert.Equal(t, "", Normalize("   "))
}
