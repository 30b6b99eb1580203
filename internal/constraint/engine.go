// Package constraint evaluates cross-budget rules over a read-only snapshot
// and reports violations as data.
package constraint

import "github.com/bagelcount/bagelcount/internal/model"

// Constraint is one named rule. Evaluate returns the violations attached to
// the budget id, already filtered and flagged according to modes.
type Constraint interface {
	Name() model.ConstraintName
	Evaluate(s *Snapshot, id string, modes RoleModes) []model.Violation
}

// Engine runs every registered constraint under a fixed configuration.
type Engine struct {
	cfg         Config
	constraints []Constraint
}

// NewEngine returns an engine running ParentChildrenSum under cfg. cfg is
// copied.
func NewEngine(cfg Config, extra ...Constraint) *Engine {
	return &Engine{
		cfg:         cfg.Clone(),
		constraints: append([]Constraint{ParentChildren{}}, extra...),
	}
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg.Clone()
}

// Evaluate returns a violation map for every id in ids, or for every budget
// in s when ids is nil. Ids with no violations map to an empty map.
func (e *Engine) Evaluate(s *Snapshot, ids []string) map[string]model.ViolationMap {
	if ids == nil {
		ids = s.IDs()
	}
	out := make(map[string]model.ViolationMap, len(ids))
	for _, id := range ids {
		vm := model.ViolationMap{}
		for _, c := range e.constraints {
			for _, v := range c.Evaluate(s, id, e.cfg.Modes(c.Name())) {
				vm.Add(c.Name(), v)
			}
		}
		out[id] = vm
	}
	return out
}
