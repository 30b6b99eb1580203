package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ConstraintName identifies a constraint in violation maps and configuration.
type ConstraintName string

// ParentChildrenSum checks children's annualized budgets against their parent.
const ParentChildrenSum ConstraintName = "ParentChildrenSum"

// Role says which side of a parent/child relationship a violation is attached to.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// Check names the rule inside a constraint that produced a violation.
type Check string

const (
	// CheckFrequency: a finer same-account budget promises more per year than a coarser one.
	CheckFrequency Check = "frequency"
	// CheckChildrenSum: children of a parent budget add up to more than the parent.
	CheckChildrenSum Check = "children_sum"
	// CheckCapacity: a parent cannot cover children it is not the authoritative parent of.
	CheckCapacity Check = "capacity"
)

// Violation is one role-tagged constraint violation attached to a budget.
//
// Parent-role records carry ExceedingChildIDs and OverageAmount (in Frequency
// units of the parent); child-role records carry ParentID.
type Violation struct {
	Role              Role
	Check             Check
	ParentID          string
	ExceedingChildIDs []string
	OverageAmount     decimal.Decimal
	Frequency         Frequency
	Blocking          bool
	Message           string
}

// Equal compares two violations field by field.
func (v Violation) Equal(other Violation) bool {
	if v.Role != other.Role || v.Check != other.Check || v.ParentID != other.ParentID ||
		!v.OverageAmount.Equal(other.OverageAmount) || v.Frequency != other.Frequency ||
		v.Blocking != other.Blocking || v.Message != other.Message {
		return false
	}
	if len(v.ExceedingChildIDs) != len(other.ExceedingChildIDs) {
		return false
	}
	for i := range v.ExceedingChildIDs {
		if v.ExceedingChildIDs[i] != other.ExceedingChildIDs[i] {
			return false
		}
	}
	return true
}

// Involves reports whether id owns, parents or is listed in v. owner is the id
// of the budget v is attached to.
func (v Violation) Involves(owner, id string) bool {
	if owner == id || v.ParentID == id {
		return true
	}
	for _, c := range v.ExceedingChildIDs {
		if c == id {
			return true
		}
	}
	return false
}

func (v Violation) clone() Violation {
	out := v
	if v.ExceedingChildIDs != nil {
		out.ExceedingChildIDs = append([]string(nil), v.ExceedingChildIDs...)
	}
	return out
}

// ViolationMap groups violations by constraint name.
type ViolationMap map[ConstraintName][]Violation

// Add appends v under name.
func (m ViolationMap) Add(name ConstraintName, v Violation) {
	m[name] = append(m[name], v)
}

// Len counts every violation across constraints.
func (m ViolationMap) Len() int {
	n := 0
	for _, vs := range m {
		n += len(vs)
	}
	return n
}

// Clone deep-copies the map.
func (m ViolationMap) Clone() ViolationMap {
	out := make(ViolationMap, len(m))
	for name, vs := range m {
		cp := make([]Violation, len(vs))
		for i, v := range vs {
			cp[i] = v.clone()
		}
		out[name] = cp
	}
	return out
}

// Equal treats nil and empty lists as equal.
func (m ViolationMap) Equal(other ViolationMap) bool {
	for _, name := range m.names(other) {
		a, b := m[name], other[name]
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
	}
	return true
}

// Split partitions the map into blocking and non-blocking violations.
func (m ViolationMap) Split() (blocking, warning ViolationMap) {
	blocking, warning = ViolationMap{}, ViolationMap{}
	for name, vs := range m {
		for _, v := range vs {
			if v.Blocking {
				blocking.Add(name, v.clone())
			} else {
				warning.Add(name, v.clone())
			}
		}
	}
	return blocking, warning
}

func (m ViolationMap) names(other ViolationMap) []ConstraintName {
	seen := make(map[ConstraintName]bool, len(m)+len(other))
	var names []ConstraintName
	for _, src := range []ViolationMap{m, other} {
		for name := range src {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
