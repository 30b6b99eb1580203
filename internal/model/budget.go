// Package model holds the budget records exchanged between the facade, its
// constraint engine and the outer layers.
package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bagelcount/bagelcount/internal/account"
	"github.com/bagelcount/bagelcount/internal/calendar"
)

var (
	// ErrInvalidBudget is returned for structurally malformed budget records.
	ErrInvalidBudget = errors.New("invalid budget")

	// ErrNegativeAmount is returned when a budget amount is below zero.
	ErrNegativeAmount = errors.New("negative budget amount")
)

// Schedule is either Recurring or Fixed.
type Schedule interface {
	isSchedule()
}

// Recurring budgets repeat every period of Frequency from their start date on.
type Recurring struct {
	Frequency Frequency
}

// Fixed budgets cover the inclusive range [start date, EndDate] once.
type Fixed struct {
	EndDate calendar.Date
}

func (Recurring) isSchedule() {}
func (Fixed) isSchedule()     {}

// Budget is a raw budget record.
type Budget struct {
	ID        string
	Account   account.Label
	Amount    decimal.Decimal
	Currency  string
	StartDate calendar.Date
	Schedule  Schedule
	Tags      []string
	CreatedAt *int64
}

// Validate checks the structural invariants of b.
func (b Budget) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidBudget)
	}
	if b.Account.IsZero() {
		return fmt.Errorf("%w: account is required", ErrInvalidBudget)
	}
	if b.Amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeAmount, b.Amount.String())
	}
	if b.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidBudget)
	}
	switch s := b.Schedule.(type) {
	case Recurring:
		if !s.Frequency.Valid() {
			return fmt.Errorf("%w: unknown frequency %q", ErrInvalidBudget, s.Frequency)
		}
	case Fixed:
		if _, err := calendar.NewRange(b.StartDate, s.EndDate); err != nil || s.EndDate.IsZero() {
			return fmt.Errorf("%w: end date %q must be set and not before start %s", ErrInvalidBudget, s.EndDate, b.StartDate)
		}
	case nil:
		return fmt.Errorf("%w: frequency or end date is required", ErrInvalidBudget)
	default:
		return fmt.Errorf("%w: unsupported schedule %T", ErrInvalidBudget, s)
	}
	return nil
}

// Frequency returns the recurrence frequency. The second result is false for fixed budgets.
func (b Budget) Frequency() (Frequency, bool) {
	if r, ok := b.Schedule.(Recurring); ok {
		return r.Frequency, true
	}
	return "", false
}

// DeclaredRange is the range the record itself states: [start, end] for fixed
// budgets and [start, ∞) for recurring ones.
func (b Budget) DeclaredRange() calendar.Range {
	if f, ok := b.Schedule.(Fixed); ok {
		return calendar.Range{Start: b.StartDate, End: f.EndDate}
	}
	return calendar.From(b.StartDate)
}

// TagKey is the normalized (sorted, deduplicated) tag set joined by commas.
func (b Budget) TagKey() string {
	tags := NormalizeTags(b.Tags)
	sort.Strings(tags)
	out := tags[:0]
	for i, t := range tags {
		if i > 0 && t == tags[i-1] {
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, ",")
}

// Dimension identifies the independent series a budget belongs to. Budgets in
// the same dimension and account may not overlap in time.
type Dimension struct {
	Kind string // frequency name, or "custom" for fixed budgets
	Tags string // TagKey
}

// KindCustom is the Dimension kind of fixed-range budgets.
const KindCustom = "custom"

// Dimension returns the series b belongs to.
func (b Budget) Dimension() Dimension {
	kind := KindCustom
	if f, ok := b.Frequency(); ok {
		kind = string(f)
	}
	return Dimension{Kind: kind, Tags: b.TagKey()}
}

func (d Dimension) String() string {
	if d.Tags == "" {
		return d.Kind
	}
	return d.Kind + "[" + d.Tags + "]"
}

// Clone returns a deep copy of b.
func (b Budget) Clone() Budget {
	out := b
	if b.Tags != nil {
		out.Tags = append([]string(nil), b.Tags...)
	}
	if b.CreatedAt != nil {
		ts := *b.CreatedAt
		out.CreatedAt = &ts
	}
	return out
}

// Equal compares every field of two budgets.
func (b Budget) Equal(other Budget) bool {
	if b.ID != other.ID || !b.Account.Equal(other.Account) || !b.Amount.Equal(other.Amount) ||
		b.Currency != other.Currency || !b.StartDate.Equal(other.StartDate) || b.Schedule != other.Schedule {
		return false
	}
	if len(b.Tags) != len(other.Tags) {
		return false
	}
	for i := range b.Tags {
		if b.Tags[i] != other.Tags[i] {
			return false
		}
	}
	switch {
	case b.CreatedAt == nil && other.CreatedAt == nil:
		return true
	case b.CreatedAt == nil || other.CreatedAt == nil:
		return false
	default:
		return *b.CreatedAt == *other.CreatedAt
	}
}

// NormalizeTags trims whitespace and drops empty tags, keeping order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Patch is a partial update. Nil fields are left unchanged; a non-nil empty
// Tags slice clears the tags.
type Patch struct {
	ID        string
	Account   *account.Label
	Amount    *decimal.Decimal
	Currency  *string
	StartDate *calendar.Date
	Schedule  Schedule
	Tags      []string
	CreatedAt *int64
}

// Apply returns a copy of b with the patch applied. The ID is never changed.
func (p Patch) Apply(b Budget) Budget {
	out := b.Clone()
	if p.Account != nil {
		out.Account = *p.Account
	}
	if p.Amount != nil {
		out.Amount = *p.Amount
	}
	if p.Currency != nil {
		out.Currency = *p.Currency
	}
	if p.StartDate != nil {
		out.StartDate = *p.StartDate
	}
	if p.Schedule != nil {
		out.Schedule = p.Schedule
	}
	if p.Tags != nil {
		out.Tags = NormalizeTags(p.Tags)
	}
	if p.CreatedAt != nil {
		ts := *p.CreatedAt
		out.CreatedAt = &ts
	}
	return out
}
