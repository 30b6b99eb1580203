package budgetfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/bagelcount/bagelcount/internal/account"
	"github.com/bagelcount/bagelcount/internal/calendar"
	"github.com/bagelcount/bagelcount/internal/id"
	"github.com/bagelcount/bagelcount/internal/model"
)

// OpKind names a facade mutation.
type OpKind string

const (
	OpAdd    OpKind = "add"
	OpUpdate OpKind = "update"
	OpRemove OpKind = "remove"
)

// Operation is one step of an operation script.
type Operation struct {
	Kind OpKind
	// ID is the target of update and remove.
	ID string
	// Budget is set for add.
	Budget model.Budget
	// Patch is set for update.
	Patch model.Patch
}

type opDocument struct {
	Operations []opEntry `yaml:"operations"`
}

type opEntry struct {
	Op     string    `yaml:"op"`
	ID     string    `yaml:"id"`
	Budget yaml.Node `yaml:"budget"`
}

// LoadOperations reads an operation script from disk. See ParseOperations.
func LoadOperations(path string) ([]Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading operations: %w", err)
	}
	ops, err := ParseOperations(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ops, nil
}

// ParseOperations decodes a script of the form
//
//	operations:
//	  - op: add
//	    budget: {account: "Expenses:Food", amount: 600, start_date: 2024-01-01, frequency: monthly}
//	  - op: update
//	    id: food
//	    budget: {amount: 300}
//	  - op: remove
//	    id: food
//
// Unlike budget files a script is all or nothing: any bad step fails the parse.
// Added budgets without an id are left for the facade to assign.
func ParseOperations(data []byte) ([]Operation, error) {
	var doc opDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	ops := make([]Operation, 0, len(doc.Operations))
	for i, e := range doc.Operations {
		op, err := e.operation()
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i+1, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (e opEntry) operation() (Operation, error) {
	op := Operation{Kind: OpKind(strings.TrimSpace(e.Op)), ID: id.Normalize(e.ID)}
	switch op.Kind {
	case OpAdd:
		var be entry
		if err := e.decodeBudget(&be); err != nil {
			return Operation{}, err
		}
		rec := be.record()
		if rec.ID == "" {
			rec.ID = op.ID
		}
		b, err := addBudget(rec)
		if err != nil {
			return Operation{}, err
		}
		op.Budget = b
		op.ID = b.ID
	case OpUpdate:
		if op.ID == "" {
			return Operation{}, fmt.Errorf("%w: update needs an id", ErrMalformed)
		}
		var be entry
		if err := e.decodeBudget(&be); err != nil {
			return Operation{}, err
		}
		p, err := patchOf(be)
		if err != nil {
			return Operation{}, err
		}
		op.Patch = p
	case OpRemove:
		if op.ID == "" {
			return Operation{}, fmt.Errorf("%w: remove needs an id", ErrMalformed)
		}
	default:
		return Operation{}, fmt.Errorf("%w: unknown op %q", ErrMalformed, e.Op)
	}
	return op, nil
}

func (e opEntry) decodeBudget(out *entry) error {
	if e.Budget.Kind == 0 {
		return nil
	}
	if err := e.Budget.Decode(out); err != nil {
		return fmt.Errorf("%w: budget: %v", ErrMalformed, err)
	}
	return nil
}

// addBudget parses rec like Record.Budget but tolerates a missing id.
func addBudget(rec model.Record) (model.Budget, error) {
	placeholder := rec.ID == ""
	if placeholder {
		rec.ID = "new"
	}
	b, err := rec.Budget()
	if err != nil {
		return model.Budget{}, err
	}
	if placeholder {
		b.ID = ""
	}
	return b, nil
}

// patchOf converts the fields present in e. Empty strings mean unchanged.
func patchOf(e entry) (model.Patch, error) {
	p := model.Patch{ID: id.Normalize(e.ID), CreatedAt: e.CreatedAt}
	if e.Account != "" {
		l, err := account.Parse(strings.TrimSpace(e.Account))
		if err != nil {
			return model.Patch{}, err
		}
		p.Account = &l
	}
	if e.Amount != "" {
		d, err := decimal.NewFromString(string(e.Amount))
		if err != nil {
			return model.Patch{}, fmt.Errorf("%w: parsing amount %q: %v", model.ErrInvalidBudget, e.Amount, err)
		}
		p.Amount = &d
	}
	if e.Currency != "" {
		c := e.Currency
		p.Currency = &c
	}
	if e.StartDate != "" {
		d, err := calendar.ParseDate(e.StartDate)
		if err != nil {
			return model.Patch{}, fmt.Errorf("start_date: %w", err)
		}
		p.StartDate = &d
	}
	switch {
	case e.Frequency != "":
		f, err := model.ParseFrequency(e.Frequency)
		if err != nil {
			return model.Patch{}, err
		}
		p.Schedule = model.Recurring{Frequency: f}
	case e.EndDate != nil && *e.EndDate != "":
		d, err := calendar.ParseDate(*e.EndDate)
		if err != nil {
			return model.Patch{}, fmt.Errorf("end_date: %w", err)
		}
		p.Schedule = model.Fixed{EndDate: d}
	}
	if e.Tags != nil {
		p.Tags = []string(e.Tags)
	}
	return p, nil
}
