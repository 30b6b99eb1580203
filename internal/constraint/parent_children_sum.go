package constraint

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bagelcount/bagelcount/internal/model"
)

// ParentChildren compares annualized budgets along the account hierarchy and
// across frequencies on one account.
type ParentChildren struct{}

// Name implements Constraint.
func (ParentChildren) Name() model.ConstraintName { return model.ParentChildrenSum }

// Evaluate implements Constraint. Records are produced in a fixed order:
// frequency, children sum as child, children sum as parent, capacity.
func (ParentChildren) Evaluate(s *Snapshot, id string, modes RoleModes) []model.Violation {
	g, e := s.lookup(id)
	if e == nil {
		return nil
	}
	acct := e.label.String()
	parentMode := modes.forRole(model.RoleParent)
	childMode := modes.forRole(model.RoleChild)

	var out []model.Violation
	add := func(v model.Violation, mode Mode, forced bool) {
		if mode == ModeDisabled {
			return
		}
		v.Frequency = e.freq
		v.Blocking = !forced && mode == ModeBlocking
		out = append(out, v)
	}

	// Same account, different frequency. The finer budget carries the frequency
	// record; the largest finer budget becomes e's children for capacity below.
	var finest *entry
	for _, o := range g.byAccount[acct] {
		if o.id == e.id || o.freq == e.freq || !o.overlaps(e) {
			continue
		}
		if o.freq.FinerThan(e.freq) {
			if finest == nil || o.annual.GreaterThan(finest.annual) {
				finest = o
			}
			continue
		}
		if e.annual.GreaterThan(o.annual) {
			add(model.Violation{
				Role:     model.RoleChild,
				Check:    model.CheckFrequency,
				ParentID: o.id,
				Message: fmt.Sprintf("%s budget of %s (%s) exceeds the %s budget of %s on %s",
					e.freq, money(e.amount, e.freq), money(e.annual, model.FrequencyYearly),
					o.freq, money(o.amount, o.freq), acct),
			}, childMode, false)
		}
	}

	// e as a child of the nearest budgeted ancestor.
	if parentAcct, ok := g.parent[acct]; ok {
		targets, fallback := g.targets(parentAcct, e)
		for _, p := range targets {
			total := e.annual.Add(g.siblingsSum(parentAcct, acct, p))
			if !total.GreaterThan(p.annual) {
				continue
			}
			add(model.Violation{
				Role:     model.RoleChild,
				Check:    model.CheckChildrenSum,
				ParentID: p.id,
				Message: fmt.Sprintf("%s with its siblings needs %s, more than %s on %s",
					acct, money(total, model.FrequencyYearly), money(p.amount, p.freq), parentAcct),
			}, childMode, fallback)
		}
	}

	// e as the parent of its child accounts.
	var exceeding []string
	maxExcess := decimal.Zero
	relevant := false
	for _, childAcct := range g.children[acct] {
		for _, c := range g.byAccount[childAcct] {
			if !c.overlaps(e) {
				continue
			}
			targets, fallback := g.targets(acct, c)
			if !containsEntry(targets, e) {
				continue
			}
			total := c.annual.Add(g.siblingsSum(acct, childAcct, e))
			excess := total.Sub(e.annual)
			if !excess.IsPositive() {
				continue
			}
			exceeding = append(exceeding, c.id)
			if excess.GreaterThan(maxExcess) {
				maxExcess = excess
			}
			relevant = relevant || !fallback
		}
	}
	if len(exceeding) > 0 {
		over := model.FromAnnual(maxExcess, e.freq)
		add(model.Violation{
			Role:              model.RoleParent,
			Check:             model.CheckChildrenSum,
			ExceedingChildIDs: exceeding,
			OverageAmount:     over,
			Message: fmt.Sprintf("children of %s exceed %s by %s",
				acct, money(e.amount, e.freq), money(over, e.freq)),
		}, parentMode, !relevant)
	}

	// Capacity. A finer budget on the same account subsumes the child
	// accounts; otherwise the child accounts' representatives have to fit.
	sum := decimal.Zero
	var reps []string
	switch {
	case finest != nil:
		sum = finest.annual
		reps = []string{finest.id}
	case len(exceeding) > 0:
		return out
	default:
		for _, childAcct := range g.children[acct] {
			if r := g.rep(childAcct, e); r != nil {
				sum = sum.Add(r.annual)
				reps = append(reps, r.id)
			}
		}
	}
	if short := sum.Sub(e.annual); short.IsPositive() {
		over := model.FromAnnual(short, e.freq)
		add(model.Violation{
			Role:              model.RoleParent,
			Check:             model.CheckCapacity,
			ExceedingChildIDs: reps,
			OverageAmount:     over,
			Message: fmt.Sprintf("children of %s need %s, %s more than budgeted",
				acct, money(model.FromAnnual(sum, e.freq), e.freq), money(over, e.freq)),
		}, parentMode, true)
	}
	return out
}

// targets returns the budgets at parentAcct that child is checked against.
// Parents at the child's frequency or coarser are preferred; when only finer
// ones overlap they are used and fallback is true.
func (g *group) targets(parentAcct string, child *entry) (targets []*entry, fallback bool) {
	var finer []*entry
	for _, p := range g.byAccount[parentAcct] {
		if !p.overlaps(child) {
			continue
		}
		if p.freq.FinerThan(child.freq) {
			finer = append(finer, p)
		} else {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 && len(finer) > 0 {
		return finer, true
	}
	return targets, false
}

func containsEntry(entries []*entry, e *entry) bool {
	for _, x := range entries {
		if x == e {
			return true
		}
	}
	return false
}

func money(amount decimal.Decimal, freq model.Frequency) string {
	return amount.StringFixed(2) + freq.Unit()
}
