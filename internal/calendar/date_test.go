package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_RoundTrip(t *testing.T) {
	inputs := []string{
		"2024-01-01",
		"2024-02-29",
		"2000-02-29",
		"1999-12-31",
		"0001-01-01",
		"0000-01-01",
		"0000-02-29",
		"9999-12-31",
		"2025-06-09",
	}
	for _, in := range inputs {
		d, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, d.String())
	}
}

func TestParseDate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"slashes", "2024/01/01"},
		{"short month", "2024-1-01"},
		{"trailing text", "2024-01-01T00:00"},
		{"empty", ""},
		{"month zero", "2024-00-10"},
		{"month thirteen", "2024-13-10"},
		{"day zero", "2024-01-00"},
		{"april 31", "2024-04-31"},
		{"non-leap feb 29", "2023-02-29"},
		{"century non-leap", "1900-02-29"},
		{"year zero non-leap day", "0000-02-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDate(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}

func TestYearZero(t *testing.T) {
	d := MustParseDate("0000-01-01")
	assert.False(t, d.IsZero(), "a real date, not the unset value")
	assert.Equal(t, -1, d.Compare(MustParseDate("0001-01-01")))
	assert.Equal(t, "0001-01-01", d.AddDays(366).String())

	var unset Date
	assert.True(t, unset.IsZero())
	assert.Equal(t, "", unset.String())
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, IsLeapYear(2024))
	assert.True(t, IsLeapYear(2000))
	assert.False(t, IsLeapYear(1900))
	assert.False(t, IsLeapYear(2023))
}

func TestCompare(t *testing.T) {
	a := MustParseDate("2024-01-15")
	b := MustParseDate("2024-02-01")
	c := MustParseDate("2025-01-01")

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, c.Compare(b))
	assert.Equal(t, 0, a.Compare(MustParseDate("2024-01-15")))
	assert.True(t, a.Before(b))
	assert.True(t, c.After(a))
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, "2024-03-01", MustParseDate("2024-02-29").AddDays(1).String())
	assert.Equal(t, "2023-12-31", MustParseDate("2024-01-01").AddDays(-1).String())
	assert.Equal(t, "2024-02-29", MustParseDate("2024-03-01").AddDays(-1).String())
}

func TestTextMarshaling(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("2024-07-04")))
	out, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2024-07-04", string(out))

	require.NoError(t, d.UnmarshalText(nil))
	assert.True(t, d.IsZero())

	assert.ErrorIs(t, d.UnmarshalText([]byte("2024-7-4")), ErrInvalidDate)
}
