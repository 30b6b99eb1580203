package constraint

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bagelcount/bagelcount/internal/account"
	"github.com/bagelcount/bagelcount/internal/calendar"
	"github.com/bagelcount/bagelcount/internal/model"
)

// entry is a recurring budget prepared for comparison.
type entry struct {
	id     string
	label  account.Label
	freq   model.Frequency
	amount decimal.Decimal
	annual decimal.Decimal
	rng    calendar.Range
}

func (e *entry) overlaps(other *entry) bool {
	return e.rng.Overlaps(other.rng)
}

// group indexes the recurring budgets sharing one tag set. Budgets in
// different groups are never compared.
type group struct {
	byAccount map[string][]*entry
	labels    map[string]account.Label
	parent    map[string]string
	children  map[string][]string
}

// Snapshot is a read-only index over a set of budgets. It never changes after
// NewSnapshot returns, so evaluations over one snapshot are safe to run concurrently.
type Snapshot struct {
	ids      []string
	accounts map[string]string // budget id -> account
	entries  map[string]*entry // recurring budgets only
	groupOf  map[string]string // budget id -> tag key
	groups   map[string]*group
}

// NewSnapshot indexes budgets by tag set and account. Fixed-range budgets are
// kept so they can be reported, but take no part in comparisons.
func NewSnapshot(budgets []model.ExtendedBudget) *Snapshot {
	s := &Snapshot{
		accounts: make(map[string]string, len(budgets)),
		entries:  make(map[string]*entry, len(budgets)),
		groupOf:  make(map[string]string, len(budgets)),
		groups:   make(map[string]*group),
	}
	for _, b := range budgets {
		s.ids = append(s.ids, b.ID)
		acct := b.Account.String()
		s.accounts[b.ID] = acct

		freq, ok := b.Frequency()
		if !ok {
			continue
		}
		key := b.TagKey()
		g := s.groups[key]
		if g == nil {
			g = &group{
				byAccount: make(map[string][]*entry),
				labels:    make(map[string]account.Label),
			}
			s.groups[key] = g
		}
		s.groupOf[b.ID] = key
		g.labels[acct] = b.Account
		e := &entry{
			id:     b.ID,
			label:  b.Account,
			freq:   freq,
			amount: b.Amount,
			annual: model.ToAnnual(b.Amount, freq),
			rng:    b.EffectiveRange,
		}
		s.entries[b.ID] = e
		g.byAccount[acct] = append(g.byAccount[acct], e)
	}
	for _, g := range s.groups {
		g.link()
	}
	return s
}

func (g *group) link() {
	g.parent = make(map[string]string, len(g.byAccount))
	g.children = make(map[string][]string)
	for acct, entries := range g.byAccount {
		sort.Slice(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.freq != b.freq {
				return a.freq.Rank() < b.freq.Rank()
			}
			if !a.rng.Start.Equal(b.rng.Start) {
				return a.rng.Start.Before(b.rng.Start)
			}
			return a.id < b.id
		})
		if p, ok := g.nearestAncestor(g.labels[acct]); ok {
			g.parent[acct] = p
			g.children[p] = append(g.children[p], acct)
		}
	}
	for _, kids := range g.children {
		sort.Strings(kids)
	}
}

// nearestAncestor walks up from label and returns the first strict ancestor
// holding a budget.
func (g *group) nearestAncestor(label account.Label) (string, bool) {
	for d := label.Depth() - 1; d >= 1; d-- {
		p := label.Prefix(d).String()
		if _, ok := g.byAccount[p]; ok {
			return p, true
		}
	}
	return "", false
}

// childAccounts returns the budgeted accounts whose nearest budgeted ancestor
// is label. label itself does not need to hold a budget.
func (g *group) childAccounts(label account.Label) []string {
	key := label.String()
	if _, ok := g.byAccount[key]; ok {
		return g.children[key]
	}
	var out []string
	for acct, l := range g.labels {
		if !label.IsAncestorOf(l) {
			continue
		}
		p, ok := g.nearestAncestor(l)
		if !ok || !label.IsAncestorOf(g.labels[p]) {
			out = append(out, acct)
		}
	}
	sort.Strings(out)
	return out
}

// rep is the budget at acct overlapping ctx with the largest annual amount.
func (g *group) rep(acct string, ctx *entry) *entry {
	var best *entry
	for _, e := range g.byAccount[acct] {
		if !e.overlaps(ctx) {
			continue
		}
		if best == nil || e.annual.GreaterThan(best.annual) {
			best = e
		}
	}
	return best
}

// siblingsSum adds up the representatives of parent's child accounts other
// than exclude, considering only budgets overlapping ctx.
func (g *group) siblingsSum(parent, exclude string, ctx *entry) decimal.Decimal {
	sum := decimal.Zero
	for _, acct := range g.children[parent] {
		if acct == exclude {
			continue
		}
		if r := g.rep(acct, ctx); r != nil {
			sum = sum.Add(r.annual)
		}
	}
	return sum
}

func (s *Snapshot) lookup(id string) (*group, *entry) {
	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	return s.groups[s.groupOf[id]], e
}

// IDs returns every budget id in input order.
func (s *Snapshot) IDs() []string {
	return append([]string(nil), s.ids...)
}

// AccountOf returns the account of a budget id.
func (s *Snapshot) AccountOf(id string) (string, bool) {
	a, ok := s.accounts[id]
	return a, ok
}

// Neighborhood returns the accounts whose violations can change when budgets
// at label change: label, its nearest budgeted ancestor in every tag set, that
// ancestor's child accounts, and label's own child accounts.
func (s *Snapshot) Neighborhood(label account.Label) map[string]bool {
	out := map[string]bool{label.String(): true}
	for _, g := range s.groups {
		if p, ok := g.nearestAncestor(label); ok {
			out[p] = true
			for _, c := range g.children[p] {
				out[c] = true
			}
		}
		for _, c := range g.childAccounts(label) {
			out[c] = true
		}
	}
	return out
}

// BudgetsAt returns the ids of budgets held by any of the given accounts, in input order.
func (s *Snapshot) BudgetsAt(accounts map[string]bool) []string {
	var out []string
	for _, id := range s.ids {
		if accounts[s.accounts[id]] {
			out = append(out, id)
		}
	}
	return out
}
