package facade

import (
	"fmt"
	"sort"

	"github.com/bagelcount/bagelcount/internal/account"
	"github.com/bagelcount/bagelcount/internal/budgettree"
	"github.com/bagelcount/bagelcount/internal/calendar"
	"github.com/bagelcount/bagelcount/internal/constraint"
	"github.com/bagelcount/bagelcount/internal/model"
)

// seriesKey groups the budgets whose effective ranges depend on each other:
// one account, one dimension.
type seriesKey struct {
	account string
	dim     model.Dimension
}

func keyOf(b model.Budget) seriesKey {
	return seriesKey{account: b.Account.String(), dim: b.Dimension()}
}

// state is one consistent version of the facade data. Mutations build a new
// state from the current one and swap it in on commit.
type state struct {
	budgets map[string]model.ExtendedBudget
	order   []string
	series  map[seriesKey][]string
	forests map[model.Dimension]budgettree.Forest
	snap    *constraint.Snapshot
}

func emptyState() *state {
	return &state{
		budgets: map[string]model.ExtendedBudget{},
		series:  map[seriesKey][]string{},
		forests: map[model.Dimension]budgettree.Forest{},
		snap:    constraint.NewSnapshot(nil),
	}
}

// clone copies the indexes. Values are replaced, never changed in place, so a
// shallow copy is enough.
func (s *state) clone() *state {
	out := &state{
		budgets: make(map[string]model.ExtendedBudget, len(s.budgets)+1),
		order:   append([]string(nil), s.order...),
		series:  make(map[seriesKey][]string, len(s.series)+1),
		forests: make(map[model.Dimension]budgettree.Forest, len(s.forests)+1),
		snap:    s.snap,
	}
	for k, v := range s.budgets {
		out.budgets[k] = v
	}
	for k, v := range s.series {
		out.series[k] = v
	}
	for k, v := range s.forests {
		out.forests[k] = v
	}
	return out
}

func (s *state) put(b model.Budget) {
	prev, exists := s.budgets[b.ID]
	if exists {
		s.unlink(prev.Budget)
	} else {
		s.order = append(s.order, b.ID)
	}
	s.budgets[b.ID] = model.ExtendedBudget{Budget: b, Warnings: prev.Warnings}
	k := keyOf(b)
	s.series[k] = append(append([]string(nil), s.series[k]...), b.ID)
}

func (s *state) drop(id string) {
	prev, ok := s.budgets[id]
	if !ok {
		return
	}
	s.unlink(prev.Budget)
	delete(s.budgets, id)
	order := make([]string, 0, len(s.order))
	for _, o := range s.order {
		if o != id {
			order = append(order, o)
		}
	}
	s.order = order
}

func (s *state) unlink(b model.Budget) {
	k := keyOf(b)
	var ids []string
	for _, id := range s.series[k] {
		if id != b.ID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		delete(s.series, k)
		return
	}
	s.series[k] = ids
}

// reindex recomputes effective ranges for the given series and moves their
// instances in the dimension forests. before is the state the forests were
// built from.
func (s *state) reindex(before *state, keys []seriesKey) error {
	for _, k := range keys {
		forest := s.forests[k.dim]
		for _, id := range before.series[k] {
			old := before.budgets[id]
			f, err := forest.Delete(old.Account, old.EffectiveRange)
			if err != nil {
				return fmt.Errorf("removing %s from %s: %w", id, k.dim, err)
			}
			forest = f
		}

		members := make([]model.Budget, 0, len(s.series[k]))
		for _, id := range s.series[k] {
			members = append(members, s.budgets[id].Budget)
		}
		ranges, err := effectiveRanges(members)
		if err != nil {
			return err
		}
		for _, b := range members {
			eb := s.budgets[b.ID]
			eb.EffectiveRange = ranges[b.ID]
			s.budgets[b.ID] = eb

			inst, err := budgettree.NewInstance(b.ID, eb.EffectiveRange, b.Amount)
			if err != nil {
				return fmt.Errorf("budget %s: %w", b.ID, err)
			}
			f, err := forest.Insert(b.Account, inst)
			if err != nil {
				return fmt.Errorf("budget %s on %s (%s): %w", b.ID, b.Account, k.dim, err)
			}
			forest = f
		}
		s.forests[k.dim] = forest
	}
	s.snap = constraint.NewSnapshot(s.list())
	return nil
}

// effectiveRanges assigns ranges within one series. Fixed budgets keep their
// declared range. A recurring budget runs until the day before the next one in
// the series starts.
func effectiveRanges(members []model.Budget) (map[string]calendar.Range, error) {
	out := make(map[string]calendar.Range, len(members))
	var recurring []model.Budget
	for _, b := range members {
		if _, ok := b.Frequency(); ok {
			recurring = append(recurring, b)
			continue
		}
		out[b.ID] = b.DeclaredRange()
	}
	sort.Slice(recurring, func(i, j int) bool {
		if c := recurring[i].StartDate.Compare(recurring[j].StartDate); c != 0 {
			return c < 0
		}
		return recurring[i].ID < recurring[j].ID
	})
	for i, b := range recurring {
		r := calendar.From(b.StartDate)
		if i+1 < len(recurring) {
			next := recurring[i+1]
			if next.StartDate.Equal(b.StartDate) {
				return nil, fmt.Errorf("%w: budgets %s and %s on %s both start %s",
					budgettree.ErrOverlap, b.ID, next.ID, b.Account, b.StartDate)
			}
			r.End = next.StartDate.AddDays(-1)
		}
		out[b.ID] = r
	}
	return out, nil
}

func (s *state) list() []model.ExtendedBudget {
	out := make([]model.ExtendedBudget, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.budgets[id])
	}
	return out
}

func (s *state) keys() []seriesKey {
	out := make([]seriesKey, 0, len(s.series))
	for k := range s.series {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.account != b.account {
			return a.account < b.account
		}
		if a.dim.Kind != b.dim.Kind {
			return a.dim.Kind < b.dim.Kind
		}
		return a.dim.Tags < b.dim.Tags
	})
	return out
}

// affected returns the accounts whose violations may differ between before
// and s after budgets at labels changed.
func (s *state) affected(before *state, labels []account.Label) map[string]bool {
	out := map[string]bool{}
	for _, l := range labels {
		for a := range before.snap.Neighborhood(l) {
			out[a] = true
		}
		for a := range s.snap.Neighborhood(l) {
			out[a] = true
		}
	}
	return out
}

func uniqueKeys(keys ...seriesKey) []seriesKey {
	var out []seriesKey
	seen := map[seriesKey]bool{}
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
