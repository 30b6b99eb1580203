package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bagelcount/bagelcount/internal/account"
	"github.com/bagelcount/bagelcount/internal/calendar"
)

// DefaultCurrency is used when a record leaves currency empty.
const DefaultCurrency = "USD"

// Record is the wire shape of a budget as produced by the persistence/API layer.
// Amount is a decimal string; dates are ISO YYYY-MM-DD.
type Record struct {
	ID        string   `json:"id" yaml:"id"`
	Account   string   `json:"account" yaml:"account"`
	Amount    string   `json:"amount" yaml:"amount"`
	Currency  string   `json:"currency,omitempty" yaml:"currency,omitempty"`
	StartDate string   `json:"start_date" yaml:"start_date"`
	Frequency string   `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	EndDate   *string  `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt *int64   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Budget parses r into a validated Budget. When both frequency and end date
// are present the frequency wins.
func (r Record) Budget() (Budget, error) {
	label, err := account.Parse(r.Account)
	if err != nil {
		return Budget{}, fmt.Errorf("budget %s: %w", r.ID, err)
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return Budget{}, fmt.Errorf("budget %s: %w: parsing amount %q: %v", r.ID, ErrInvalidBudget, r.Amount, err)
	}

	start, err := calendar.ParseDate(r.StartDate)
	if err != nil {
		return Budget{}, fmt.Errorf("budget %s: start_date: %w", r.ID, err)
	}

	var schedule Schedule
	switch {
	case r.Frequency != "":
		freq, err := ParseFrequency(r.Frequency)
		if err != nil {
			return Budget{}, fmt.Errorf("budget %s: %w", r.ID, err)
		}
		schedule = Recurring{Frequency: freq}
	case r.EndDate != nil && *r.EndDate != "":
		end, err := calendar.ParseDate(*r.EndDate)
		if err != nil {
			return Budget{}, fmt.Errorf("budget %s: end_date: %w", r.ID, err)
		}
		schedule = Fixed{EndDate: end}
	}

	currency := r.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	b := Budget{
		ID:        r.ID,
		Account:   label,
		Amount:    amount,
		Currency:  currency,
		StartDate: start,
		Schedule:  schedule,
		Tags:      NormalizeTags(r.Tags),
	}
	if r.CreatedAt != nil {
		ts := *r.CreatedAt
		b.CreatedAt = &ts
	}

	if err := b.Validate(); err != nil {
		return Budget{}, fmt.Errorf("budget %s: %w", r.ID, err)
	}
	return b, nil
}

// RecordOf converts a Budget back into its wire shape.
func RecordOf(b Budget) Record {
	r := Record{
		ID:        b.ID,
		Account:   b.Account.String(),
		Amount:    b.Amount.String(),
		Currency:  b.Currency,
		StartDate: b.StartDate.String(),
	}
	switch s := b.Schedule.(type) {
	case Recurring:
		r.Frequency = string(s.Frequency)
	case Fixed:
		end := s.EndDate.String()
		r.EndDate = &end
	}
	if len(b.Tags) > 0 {
		r.Tags = append([]string(nil), b.Tags...)
	}
	if b.CreatedAt != nil {
		ts := *b.CreatedAt
		r.CreatedAt = &ts
	}
	return r
}
