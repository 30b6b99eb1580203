package model

import "github.com/bagelcount/bagelcount/internal/calendar"

// ExtendedBudget is a budget as held by the facade: the raw record, the range
// over which it is in effect, and the constraint violations currently attached to it.
type ExtendedBudget struct {
	Budget
	EffectiveRange calendar.Range
	Warnings       ViolationMap
}

// Clone deep-copies e so callers cannot reach facade state through it.
func (e ExtendedBudget) Clone() ExtendedBudget {
	return ExtendedBudget{
		Budget:         e.Budget.Clone(),
		EffectiveRange: e.EffectiveRange,
		Warnings:       e.Warnings.Clone(),
	}
}

// Equal compares the record, effective range and warnings.
func (e ExtendedBudget) Equal(other ExtendedBudget) bool {
	return e.Budget.Equal(other.Budget) &&
		calendar.RangeEqual(e.EffectiveRange, other.EffectiveRange) &&
		e.Warnings.Equal(other.Warnings)
}
