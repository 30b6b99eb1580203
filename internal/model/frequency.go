package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Frequency is the recurrence period of a standard budget.
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Frequencies lists every frequency from finest to coarsest.
var Frequencies = []Frequency{FrequencyMonthly, FrequencyQuarterly, FrequencyYearly}

var periodsPerYear = map[Frequency]int64{
	FrequencyMonthly:   12,
	FrequencyQuarterly: 4,
	FrequencyYearly:    1,
}

// ParseFrequency validates a frequency string.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: unknown frequency %q", ErrInvalidBudget, s)
	}
	return f, nil
}

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	_, ok := periodsPerYear[f]
	return ok
}

// Multiplier is the number of periods per year.
func (f Frequency) Multiplier() decimal.Decimal {
	return decimal.NewFromInt(periodsPerYear[f])
}

// Rank orders frequencies by resolution: lower is finer.
func (f Frequency) Rank() int {
	for i, other := range Frequencies {
		if other == f {
			return i
		}
	}
	return len(Frequencies)
}

// FinerThan reports whether f has a higher resolution (shorter period) than other.
func (f Frequency) FinerThan(other Frequency) bool {
	return f.Rank() < other.Rank()
}

// Unit is the suffix used when rendering amounts in this frequency.
func (f Frequency) Unit() string {
	switch f {
	case FrequencyMonthly:
		return "/monthly"
	case FrequencyQuarterly:
		return "/quarterly"
	case FrequencyYearly:
		return "/yr"
	default:
		return "/" + string(f)
	}
}

// ToAnnual converts an amount per period of freq into an amount per year.
func ToAnnual(amount decimal.Decimal, freq Frequency) decimal.Decimal {
	return amount.Mul(freq.Multiplier())
}

// FromAnnual converts a yearly amount into an amount per period of freq.
func FromAnnual(annual decimal.Decimal, freq Frequency) decimal.Decimal {
	return annual.Div(freq.Multiplier())
}
