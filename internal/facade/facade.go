// Package facade owns the canonical set of budgets for one session. It seeds
// them, answers range queries and applies guarded mutations that re-run the
// constraint engine over the neighborhood of the change.
//
// A Facade serializes its own calls. Every value it returns is a copy.
package facade

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bagelcount/bagelcount/internal/account"
	"github.com/bagelcount/bagelcount/internal/calendar"
	"github.com/bagelcount/bagelcount/internal/constraint"
	"github.com/bagelcount/bagelcount/internal/id"
	"github.com/bagelcount/bagelcount/internal/model"
)

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(f *Facade) {
		if l != nil {
			f.log = l
		}
	}
}

// WithIDGenerator sets how ids are assigned to budgets that arrive without one.
func WithIDGenerator(g id.Generator) Option {
	return func(f *Facade) {
		if g != nil {
			f.newID = g
		}
	}
}

// Facade is the stateful entry point to the budget core.
type Facade struct {
	mu     sync.Mutex
	log    *slog.Logger
	newID  id.Generator
	engine *constraint.Engine
	cur    *state
}

// New returns an empty facade running the default constraint configuration
// until InitializeBudgets is called.
func New(opts ...Option) *Facade {
	f := &Facade{
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:  id.New,
		engine: constraint.NewEngine(constraint.DefaultConfig()),
		cur:    emptyState(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With("component", "facade")
	return f
}

// InitializeBudgets replaces the state with raw, evaluated under cfg. cfg is
// kept for every later mutation. Constraint violations never fail seeding;
// structural errors do, and leave the previous state in place. The result
// preserves input order.
func (f *Facade) InitializeBudgets(raw []model.Budget, cfg constraint.Config) ([]model.ExtendedBudget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := emptyState()
	for _, b := range raw {
		b = b.Clone()
		b.ID = id.Normalize(b.ID)
		if b.ID == "" {
			b.ID = f.newID()
		}
		if _, dup := next.budgets[b.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, b.ID)
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		next.put(b)
	}
	if err := next.reindex(emptyState(), next.keys()); err != nil {
		return nil, err
	}

	engine := constraint.NewEngine(cfg)
	warned := 0
	for bid, vm := range engine.Evaluate(next.snap, nil) {
		next.setWarnings(bid, vm)
		if vm.Len() > 0 {
			warned++
		}
	}

	f.engine = engine
	f.cur = next
	f.log.Info("budgets initialized", "count", len(next.order), "with_warnings", warned)
	return cloneAll(next.list()), nil
}

// GetBudgetList returns every budget whose effective range overlaps r, in
// insertion order.
func (f *Facade) GetBudgetList(r calendar.Range) []model.ExtendedBudget {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := map[string]bool{}
	for _, forest := range f.cur.forests {
		for _, inst := range forest.Filter(r).Instances() {
			matched[inst.ID] = true
		}
	}
	out := make([]model.ExtendedBudget, 0, len(matched))
	for _, bid := range f.cur.order {
		if matched[bid] {
			out = append(out, f.cur.budgets[bid].Clone())
		}
	}
	return out
}

// Budgets returns every budget in insertion order.
func (f *Facade) Budgets() []model.ExtendedBudget {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneAll(f.cur.list())
}

// Get returns the budget with the given id.
func (f *Facade) Get(budgetID string) (model.ExtendedBudget, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.cur.budgets[budgetID]
	if !ok {
		return model.ExtendedBudget{}, false
	}
	return b.Clone(), true
}

// Config returns the constraint configuration in effect.
func (f *Facade) Config() constraint.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.engine.Config()
}

// AddBudget adds b. A budget without an id gets a generated one.
func (f *Facade) AddBudget(b model.Budget) OperationResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	b = b.Clone()
	b.ID = id.Normalize(b.ID)
	if b.ID == "" {
		b.ID = f.newID()
	}
	if _, exists := f.cur.budgets[b.ID]; exists {
		return f.reject("add", b.ID, fmt.Errorf("%w: %s", ErrDuplicateID, b.ID))
	}
	if err := b.Validate(); err != nil {
		return f.reject("add", b.ID, err)
	}

	next := f.cur.clone()
	next.put(b)
	if err := next.reindex(f.cur, []seriesKey{keyOf(b)}); err != nil {
		return f.reject("add", b.ID, err)
	}
	return f.settle("add", b.ID, next, []account.Label{b.Account}, true)
}

// UpdateBudget applies p to the budget budgetID. p.ID may be empty; when set
// it must equal budgetID.
func (f *Facade) UpdateBudget(budgetID string, p model.Patch) OperationResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, ok := f.cur.budgets[budgetID]
	if !ok {
		return f.reject("update", budgetID, fmt.Errorf("%w: %s", ErrUnknownID, budgetID))
	}
	if p.ID != "" && p.ID != budgetID {
		return f.reject("update", budgetID, fmt.Errorf("%w: path %s, body %s", ErrIDMismatch, budgetID, p.ID))
	}
	b := p.Apply(prev.Budget)
	if err := b.Validate(); err != nil {
		return f.reject("update", budgetID, err)
	}

	next := f.cur.clone()
	next.put(b)
	keys := uniqueKeys(keyOf(prev.Budget), keyOf(b))
	if err := next.reindex(f.cur, keys); err != nil {
		return f.reject("update", budgetID, err)
	}
	return f.settle("update", budgetID, next, []account.Label{prev.Account, b.Account}, true)
}

// RemoveBudget removes budgetID. Removal never fails for constraint reasons;
// budgets below the removed one report against the next budgeted ancestor.
func (f *Facade) RemoveBudget(budgetID string) OperationResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, ok := f.cur.budgets[budgetID]
	if !ok {
		return f.reject("remove", budgetID, fmt.Errorf("%w: %s", ErrUnknownID, budgetID))
	}

	next := f.cur.clone()
	next.drop(budgetID)
	if err := next.reindex(f.cur, []seriesKey{keyOf(prev.Budget)}); err != nil {
		return f.reject("remove", budgetID, err)
	}
	return f.settle("remove", budgetID, next, []account.Label{prev.Account}, false)
}

// settle evaluates the neighborhood of the change in next and either commits
// next or reports why it cannot. Add and update are rejected when a blocking
// record involves the mutated budget.
func (f *Facade) settle(op, mutated string, next *state, labels []account.Label, canBlock bool) OperationResult {
	ids := next.snap.BudgetsAt(next.affected(f.cur, labels))
	res := f.engine.Evaluate(next.snap, ids)

	if canBlock && blocked(res, mutated) {
		out := failure(mutated, fmt.Errorf("%w: %s", ErrBlocked, mutated))
		for _, bid := range ids {
			for name, vs := range res[bid] {
				for _, v := range vs {
					if blocks(bid, v, mutated) {
						addViolation(out.Errors, bid, name, v)
					} else {
						addViolation(out.Warnings, bid, name, v)
					}
				}
			}
		}
		f.log.Warn("mutation rejected", "op", op, "id", mutated,
			"errors", out.ErrorCount(), "warnings", out.WarningCount())
		return out
	}

	for _, bid := range ids {
		next.setWarnings(bid, res[bid])
	}
	updates := make(map[string]model.ExtendedBudget)
	for _, bid := range ids {
		after := next.budgets[bid]
		before, existed := f.cur.budgets[bid]
		if bid == mutated || !existed || !before.Equal(after) {
			updates[bid] = after.Clone()
		}
	}
	f.cur = next
	f.log.Info("mutation applied", "op", op, "id", mutated, "evaluated", len(ids), "updates", len(updates))
	return OperationResult{
		BudgetID: mutated,
		Success:  true,
		Updates:  updates,
		Errors:   map[string]model.ViolationMap{},
		Warnings: map[string]model.ViolationMap{},
	}
}

func (f *Facade) reject(op, budgetID string, err error) OperationResult {
	f.log.Warn("mutation failed", "op", op, "id", budgetID, "error", err)
	return failure(budgetID, err)
}

func (s *state) setWarnings(budgetID string, vm model.ViolationMap) {
	eb, ok := s.budgets[budgetID]
	if !ok {
		return
	}
	eb.Warnings = vm
	s.budgets[budgetID] = eb
}

// blocked reports whether any record in res stops the mutation of mutated.
func blocked(res map[string]model.ViolationMap, mutated string) bool {
	for bid, vm := range res {
		for _, vs := range vm {
			for _, v := range vs {
				if blocks(bid, v, mutated) {
					return true
				}
			}
		}
	}
	return false
}

// blocks reports whether v, attached to owner, stops the mutation of mutated.
// A blocking record stops every budget it involves, except that a frequency
// record only stops its finer owner, never the coarser budget it names.
func blocks(owner string, v model.Violation, mutated string) bool {
	if !v.Blocking {
		return false
	}
	if v.Check == model.CheckFrequency {
		return owner == mutated
	}
	return v.Involves(owner, mutated)
}

func addViolation(m map[string]model.ViolationMap, budgetID string, name model.ConstraintName, v model.Violation) {
	vm := m[budgetID]
	if vm == nil {
		vm = model.ViolationMap{}
		m[budgetID] = vm
	}
	vm.Add(name, v)
}

func cloneAll(in []model.ExtendedBudget) []model.ExtendedBudget {
	out := make([]model.ExtendedBudget, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}
