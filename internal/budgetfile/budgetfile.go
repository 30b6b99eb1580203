// Package budgetfile reads and writes budgets.yaml and operation scripts.
package budgetfile

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bagelcount/bagelcount/internal/id"
	"github.com/bagelcount/bagelcount/internal/model"
)

// ErrMalformed is returned when a file is not valid YAML or has the wrong shape.
var ErrMalformed = errors.New("malformed budget file")

// Skipped is an entry that could not be turned into a budget.
type Skipped struct {
	Index  int
	Line   int
	Reason string
}

// Set is the result of loading a budget file.
type Set struct {
	// Budgets are the resolved budgets in file order.
	Budgets []model.Budget
	// Skipped entries were malformed and ignored.
	Skipped []Skipped
	// Superseded budgets lost to a newer record with the same key.
	Superseded []model.Budget
}

type document struct {
	Budgets []yaml.Node `yaml:"budgets"`
}

type entry struct {
	ID        string  `yaml:"id"`
	Account   string  `yaml:"account"`
	Amount    scalar  `yaml:"amount"`
	Currency  string  `yaml:"currency"`
	StartDate string  `yaml:"start_date"`
	Frequency string  `yaml:"frequency"`
	EndDate   *string `yaml:"end_date"`
	Tags      tagList `yaml:"tags"`
	CreatedAt *int64  `yaml:"created_at"`
}

func (e entry) record() model.Record {
	return model.Record{
		ID:        id.Normalize(e.ID),
		Account:   strings.TrimSpace(e.Account),
		Amount:    string(e.Amount),
		Currency:  e.Currency,
		StartDate: e.StartDate,
		Frequency: e.Frequency,
		EndDate:   e.EndDate,
		Tags:      e.Tags,
		CreatedAt: e.CreatedAt,
	}
}

// scalar accepts any YAML scalar so amounts can be written bare (600) or quoted ("600.00").
type scalar string

func (s *scalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", n.Line)
	}
	*s = scalar(n.Value)
	return nil
}

// tagList accepts a YAML sequence or a comma separated string.
type tagList []string

func (t *tagList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*t = strings.Split(n.Value, ",")
		return nil
	case yaml.SequenceNode:
		out := make(tagList, 0, len(n.Content))
		if err := n.Decode((*[]string)(&out)); err != nil {
			return err
		}
		*t = out
		return nil
	default:
		return fmt.Errorf("line %d: tags must be a list or a comma separated string", n.Line)
	}
}

// Load reads a budget file from disk. See Parse.
func Load(path string, newID id.Generator) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading budget file: %w", err)
	}
	set, err := Parse(data, newID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse decodes a budget file. Entries that fail to parse are skipped instead
// of failing the file; entries without an id get one from newID. Duplicate
// records are collapsed with Resolve.
func Parse(data []byte, newID id.Generator) (*Set, error) {
	if newID == nil {
		newID = id.New
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	set := &Set{}
	var parsed []model.Budget
	for i, node := range doc.Budgets {
		var e entry
		if err := node.Decode(&e); err != nil {
			set.Skipped = append(set.Skipped, Skipped{Index: i, Line: node.Line, Reason: err.Error()})
			continue
		}
		rec := e.record()
		if rec.ID == "" {
			rec.ID = newID()
		}
		b, err := rec.Budget()
		if err != nil {
			set.Skipped = append(set.Skipped, Skipped{Index: i, Line: node.Line, Reason: err.Error()})
			continue
		}
		parsed = append(parsed, b)
	}
	set.Budgets, set.Superseded = Resolve(parsed)
	return set, nil
}

// Resolve collapses records describing the same budget: same account, start
// date, frequency or end date, and tag set. The record with the highest
// created_at wins; a missing created_at counts as zero and ties go to the
// earlier record. Winners keep their relative order.
func Resolve(budgets []model.Budget) (kept, superseded []model.Budget) {
	winner := map[string]int{}
	for i, b := range budgets {
		k := resolveKey(b)
		w, ok := winner[k]
		if !ok || createdAt(b) > createdAt(budgets[w]) {
			winner[k] = i
		}
	}
	for i, b := range budgets {
		if winner[resolveKey(b)] == i {
			kept = append(kept, b)
		} else {
			superseded = append(superseded, b)
		}
	}
	return kept, superseded
}

// Retain returns the superseded records that still lose to a record in
// current, so that the history Resolve dropped can be written back without
// reviving anything. Records whose winner was removed or rekeyed, or whose id
// is now taken, are dropped.
func Retain(current, superseded []model.Budget) []model.Budget {
	winners := make(map[string]int64, len(current))
	taken := make(map[string]bool, len(current))
	for _, b := range current {
		winners[resolveKey(b)] = createdAt(b)
		taken[b.ID] = true
	}
	var out []model.Budget
	for _, b := range superseded {
		at, ok := winners[resolveKey(b)]
		if !ok || taken[b.ID] || createdAt(b) > at {
			continue
		}
		out = append(out, b)
	}
	return out
}

func resolveKey(b model.Budget) string {
	var when string
	switch s := b.Schedule.(type) {
	case model.Recurring:
		when = "freq=" + string(s.Frequency)
	case model.Fixed:
		when = "end=" + s.EndDate.String()
	}
	tags := append([]string(nil), b.Tags...)
	sort.Strings(tags)
	return strings.Join([]string{b.Account.String(), b.StartDate.String(), when, strings.Join(tags, ",")}, "|")
}

func createdAt(b model.Budget) int64 {
	if b.CreatedAt == nil {
		return 0
	}
	return *b.CreatedAt
}

type output struct {
	Budgets []model.Record `yaml:"budgets"`
}

// Save writes budgets to path in the format Load reads.
func Save(path string, budgets []model.Budget) error {
	out := output{Budgets: make([]model.Record, 0, len(budgets))}
	for _, b := range budgets {
		out.Budgets = append(out.Budgets, model.RecordOf(b))
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshaling budgets: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing budget file: %w", err)
	}
	return nil
}
