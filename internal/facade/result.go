package facade

import (
	"errors"

	"github.com/bagelcount/bagelcount/internal/model"
)

var (
	// ErrUnknownID is returned when an update or remove names a budget that does not exist.
	ErrUnknownID = errors.New("unknown budget id")

	// ErrDuplicateID is returned when an added budget reuses an existing id.
	ErrDuplicateID = errors.New("duplicate budget id")

	// ErrIDMismatch is returned when an update's path id and body id differ.
	ErrIDMismatch = errors.New("budget id mismatch")

	// ErrBlocked is returned when a mutation would leave a blocking violation
	// involving the mutated budget.
	ErrBlocked = errors.New("blocked by constraint")
)

// OperationResult describes the outcome of a mutation.
//
// On success Updates holds a fresh copy of every budget whose fields or
// warnings changed. On failure Errors holds the blocking violations and
// Warnings the rest, keyed by budget id, and the facade state is unchanged.
// BudgetID is the id of the mutated budget, including one assigned by
// AddBudget.
type OperationResult struct {
	BudgetID string
	Success  bool
	Updates  map[string]model.ExtendedBudget
	Errors   map[string]model.ViolationMap
	Warnings map[string]model.ViolationMap
	Err      error
}

func failure(budgetID string, err error) OperationResult {
	return OperationResult{
		BudgetID: budgetID,
		Errors:   map[string]model.ViolationMap{},
		Warnings: map[string]model.ViolationMap{},
		Err:      err,
	}
}

// ErrorCount is the number of blocking violations in r.
func (r OperationResult) ErrorCount() int {
	return countViolations(r.Errors)
}

// WarningCount is the number of non-blocking violations reported in r.
func (r OperationResult) WarningCount() int {
	if r.Success {
		n := 0
		for _, b := range r.Updates {
			n += b.Warnings.Len()
		}
		return n
	}
	return countViolations(r.Warnings)
}

func countViolations(m map[string]model.ViolationMap) int {
	n := 0
	for _, vm := range m {
		n += vm.Len()
	}
	return n
}
