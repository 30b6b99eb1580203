package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rng(t *testing.T, start, end string) Range {
	t.Helper()
	var e Date
	if end != "" {
		e = MustParseDate(end)
	}
	r, err := NewRange(MustParseDate(start), e)
	require.NoError(t, err)
	return r
}

func TestNewRange_StartAfterEnd(t *testing.T) {
	_, err := NewRange(MustParseDate("2024-02-01"), MustParseDate("2024-01-31"))
	assert.ErrorIs(t, err, ErrRange)
}

func TestNewRange_SingleDayAndUnbounded(t *testing.T) {
	r, err := NewRange(MustParseDate("2024-02-01"), MustParseDate("2024-02-01"))
	require.NoError(t, err)
	assert.False(t, r.Unbounded())

	r, err = NewRange(MustParseDate("2024-02-01"), Date{})
	require.NoError(t, err)
	assert.True(t, r.Unbounded())
}

func TestOverlap_SharedBoundaryDay(t *testing.T) {
	got, ok := Overlap(rng(t, "2024-01-01", "2024-01-15"), rng(t, "2024-01-15", "2024-01-31"))
	require.True(t, ok)
	assert.True(t, RangeEqual(got, rng(t, "2024-01-15", "2024-01-15")))
}

func TestOverlap_AdjacentDoNotOverlap(t *testing.T) {
	_, ok := Overlap(rng(t, "2024-01-01", "2024-01-14"), rng(t, "2024-01-15", "2024-01-31"))
	assert.False(t, ok)
}

func TestOverlap_Unbounded(t *testing.T) {
	got, ok := Overlap(rng(t, "2024-01-01", ""), rng(t, "2024-06-01", ""))
	require.True(t, ok)
	assert.True(t, got.Unbounded())
	assert.Equal(t, "2024-06-01", got.Start.String())

	got, ok = Overlap(rng(t, "2024-01-01", ""), rng(t, "2023-06-01", "2024-03-31"))
	require.True(t, ok)
	assert.True(t, RangeEqual(got, rng(t, "2024-01-01", "2024-03-31")))

	_, ok = Overlap(rng(t, "2025-01-01", ""), rng(t, "2024-01-01", "2024-12-31"))
	assert.False(t, ok)
}

func TestOverlap_Symmetric(t *testing.T) {
	ranges := []Range{
		rng(t, "2024-01-01", "2024-01-15"),
		rng(t, "2024-01-15", "2024-01-31"),
		rng(t, "2024-01-16", "2024-02-10"),
		rng(t, "2023-12-01", ""),
		rng(t, "2024-02-01", ""),
		rng(t, "2024-01-10", "2024-01-10"),
	}
	for _, a := range ranges {
		for _, b := range ranges {
			ab, okAB := Overlap(a, b)
			ba, okBA := Overlap(b, a)
			assert.Equal(t, okAB, okBA, "%s vs %s", a, b)
			if okAB {
				assert.True(t, RangeEqual(ab, ba), "%s vs %s", a, b)
			}
		}
	}
}

func TestRangeEqual(t *testing.T) {
	assert.True(t, RangeEqual(rng(t, "2024-01-01", ""), rng(t, "2024-01-01", "")))
	assert.False(t, RangeEqual(rng(t, "2024-01-01", ""), rng(t, "2024-01-01", "2024-12-31")))
	assert.False(t, RangeEqual(rng(t, "2024-01-02", "2024-12-31"), rng(t, "2024-01-01", "2024-12-31")))
}

func TestContains(t *testing.T) {
	r := rng(t, "2024-01-01", "2024-01-31")
	assert.True(t, r.Contains(MustParseDate("2024-01-01")))
	assert.True(t, r.Contains(MustParseDate("2024-01-31")))
	assert.False(t, r.Contains(MustParseDate("2024-02-01")))
	assert.True(t, From(MustParseDate("2024-01-01")).Contains(MustParseDate("2099-01-01")))
}
