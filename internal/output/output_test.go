package output

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bagelcount/bagelcount/internal/account"
	"github.com/bagelcount/bagelcount/internal/calendar"
	"github.com/bagelcount/bagelcount/internal/facade"
	"github.com/bagelcount/bagelcount/internal/model"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func food() model.ExtendedBudget {
	start := calendar.MustParseDate("2024-01-01")
	return model.ExtendedBudget{
		Budget: model.Budget{
			ID:        "food",
			Account:   account.MustParse("Expenses:Food"),
			Amount:    decimal.NewFromInt(600),
			Currency:  "CAD",
			StartDate: start,
			Schedule:  model.Recurring{Frequency: model.FrequencyMonthly},
			Tags:      []string{"home"},
		},
		EffectiveRange: calendar.From(start),
		Warnings: model.ViolationMap{
			model.ParentChildrenSum: {{
				Role:    model.RoleChild,
				Check:   model.CheckChildrenSum,
				Message: "too much",
			}},
		},
	}
}

func TestBudget(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Budget(food())

	assert.Equal(t,
		"food  Expenses:Food  600.00 CAD  monthly  [2024-01-01, ∞)  [home]\n"+
			"  ⚠ child/children_sum: too much\n",
		buf.String())
}

func TestBudget_Fixed(t *testing.T) {
	b := food()
	b.Schedule = model.Fixed{EndDate: calendar.MustParseDate("2024-03-31")}
	b.Tags = nil
	b.Warnings = nil

	var buf bytes.Buffer
	New(&buf).Budget(b)
	assert.Contains(t, buf.String(), "until 2024-03-31")
	assert.NotContains(t, buf.String(), "[home]")
}

func TestResult_Success(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Result("add", "food", facade.OperationResult{
		Success: true,
		Updates: map[string]model.ExtendedBudget{"food": food()},
	})
	assert.Contains(t, buf.String(), "  → add food: 1 budget(s) updated\n")
	assert.Contains(t, buf.String(), "⚠ child/children_sum: too much")
}

func TestResult_Failure(t *testing.T) {
	var buf bytes.Buffer
	vm := model.ViolationMap{model.ParentChildrenSum: {{Role: model.RoleParent, Check: model.CheckChildrenSum, Message: "over", Blocking: true}}}
	New(&buf).Result("update", "food", facade.OperationResult{
		Errors:   map[string]model.ViolationMap{"food": vm},
		Warnings: map[string]model.ViolationMap{"rent": food().Warnings},
		Err:      errors.New("blocked by constraint: food"),
	})

	out := buf.String()
	assert.Contains(t, out, "Error: update food: blocked by constraint: food\n")
	assert.Contains(t, out, "    ✗ parent/children_sum: over\n")
	assert.Contains(t, out, "  ⚠ child/children_sum: too much\n")
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)
	p.Header("Budgets")
	p.Step(1, 2, "load")
	p.Info("ok")

	out := buf.String()
	assert.Contains(t, out, "                          Budgets")
	assert.Contains(t, out, "[1/2] load\n")
	assert.Contains(t, out, "  → ok\n")
}

func TestCenter(t *testing.T) {
	assert.Equal(t, "  ab", center("ab", 6))
	assert.Equal(t, "abcdef", center("abcdef", 3))
}
