package budgettree

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bagelcount/bagelcount/internal/account"
	"github.com/bagelcount/bagelcount/internal/calendar"
	"github.com/bagelcount/bagelcount/internal/model"
)

func day(s string) calendar.Date { return calendar.MustParseDate(s) }

func span(start, end string) calendar.Range {
	r := calendar.Range{Start: day(start)}
	if end != "" {
		r.End = day(end)
	}
	return r
}

func inst(id, start, end string, amount int64) Instance {
	return Instance{ID: id, Range: span(start, end), Amount: decimal.NewFromInt(amount)}
}

func label(s string) account.Label { return account.MustParse(s) }

func TestNewNode_SortsBudgets(t *testing.T) {
	n, err := NewNode(label("Expenses"), []Instance{
		inst("b", "2024-03-01", "2024-03-31", 1),
		inst("a", "2024-01-01", "2024-01-31", 1),
		inst("c", "2024-02-01", "2024-02-29", 1),
	}, nil)
	require.NoError(t, err)

	var ids []string
	for _, b := range n.Budgets() {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"a", "c", "b"}, ids)
}

func TestNewNode_RejectsOverlap(t *testing.T) {
	_, err := NewNode(label("Expenses"), []Instance{
		inst("a", "2024-01-01", "2024-01-15", 1),
		inst("b", "2024-01-15", "2024-01-31", 1),
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverlap)
	assert.ErrorIs(t, err, calendar.ErrRange)

	_, err = NewNode(label("Expenses"), []Instance{
		inst("a", "2024-01-01", "", 1),
		inst("b", "2025-01-01", "2025-01-31", 1),
	}, nil)
	assert.ErrorIs(t, err, calendar.ErrRange)
}

func TestNewNode_NonOverlappingNeverFails(t *testing.T) {
	var budgets []Instance
	start := day("2024-01-01")
	for i := 0; i < 40; i++ {
		s := start.AddDays(i * 10)
		budgets = append(budgets, Instance{
			ID:     fmt.Sprintf("b%d", i),
			Range:  calendar.Range{Start: s, End: s.AddDays(9)},
			Amount: decimal.NewFromInt(int64(i)),
		})
	}
	// Reverse to exercise the sort.
	for i, j := 0, len(budgets)-1; i < j; i, j = i+1, j-1 {
		budgets[i], budgets[j] = budgets[j], budgets[i]
	}
	_, err := NewNode(label("Expenses"), budgets, nil)
	assert.NoError(t, err)
}

func TestNewNode_RejectsIndirectChild(t *testing.T) {
	grandchild, err := NewNode(label("Expenses:Food:Groceries"), nil, nil)
	require.NoError(t, err)
	_, err = NewNode(label("Expenses"), nil, []*Node{grandchild})
	assert.ErrorIs(t, err, ErrBadChild)
}

func TestNewNode_RejectsNegativeAmount(t *testing.T) {
	_, err := NewNode(label("Expenses"), []Instance{inst("a", "2024-01-01", "", -5)}, nil)
	assert.ErrorIs(t, err, model.ErrNegativeAmount)

	_, err = NewInstance("a", span("2024-01-01", ""), decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, model.ErrNegativeAmount)
}

func TestInsert_CreatesIntermediateNodes(t *testing.T) {
	root, err := NewNode(label("Expenses"), nil, nil)
	require.NoError(t, err)

	updated, err := Insert(root, label("Expenses:Food:Restaurants"), inst("r", "2024-01-01", "", 250))
	require.NoError(t, err)

	food := updated.Find(label("Expenses:Food"))
	require.NotNil(t, food)
	assert.Empty(t, food.Budgets(), "intermediate node is created without budgets")

	restaurants := updated.Find(label("Expenses:Food:Restaurants"))
	require.NotNil(t, restaurants)
	require.Len(t, restaurants.Budgets(), 1)
	assert.Equal(t, "r", restaurants.Budgets()[0].ID)

	assert.Nil(t, root.Find(label("Expenses:Food")), "original tree is unchanged")
}

func TestInsert_SortedPositionAndNeighborOverlap(t *testing.T) {
	root, err := NewNode(label("Expenses"), []Instance{
		inst("jan", "2024-01-01", "2024-01-31", 1),
		inst("mar", "2024-03-01", "2024-03-31", 1),
	}, nil)
	require.NoError(t, err)

	updated, err := Insert(root, label("Expenses"), inst("feb", "2024-02-01", "2024-02-29", 1))
	require.NoError(t, err)
	budgets := updated.Budgets()
	require.Len(t, budgets, 3)
	assert.Equal(t, "feb", budgets[1].ID)

	_, err = Insert(updated, label("Expenses"), inst("x", "2024-02-15", "2024-02-20", 1))
	assert.ErrorIs(t, err, calendar.ErrRange)

	_, err = Insert(updated, label("Expenses"), inst("y", "2024-03-31", "", 1))
	assert.ErrorIs(t, err, calendar.ErrRange)

	assert.Len(t, root.Budgets(), 2, "original tree is unchanged")
}

func TestInsert_OutsideTree(t *testing.T) {
	root, err := NewNode(label("Expenses"), nil, nil)
	require.NoError(t, err)
	_, err = Insert(root, label("Income:Salary"), inst("x", "2024-01-01", "", 1))
	assert.ErrorIs(t, err, ErrOutsideTree)
}

func TestInsert_SharesUntouchedSubtrees(t *testing.T) {
	root, err := NewNode(label("Expenses"), nil, nil)
	require.NoError(t, err)
	root, err = Insert(root, label("Expenses:Rent"), inst("rent", "2024-01-01", "", 1500))
	require.NoError(t, err)
	root, err = Insert(root, label("Expenses:Food"), inst("food", "2024-01-01", "", 600))
	require.NoError(t, err)

	rentBefore := root.Find(label("Expenses:Rent"))
	updated, err := Insert(root, label("Expenses:Food:Coffee"), inst("coffee", "2024-01-01", "", 100))
	require.NoError(t, err)

	assert.Same(t, rentBefore, updated.Find(label("Expenses:Rent")))
	assert.NotSame(t, root.Find(label("Expenses:Food")), updated.Find(label("Expenses:Food")))
}

func TestDelete(t *testing.T) {
	root, err := NewNode(label("Expenses"), []Instance{inst("exp", "2024-01-01", "", 1000)}, nil)
	require.NoError(t, err)
	root, err = Insert(root, label("Expenses:Food"), inst("food", "2024-01-01", "", 600))
	require.NoError(t, err)
	root, err = Insert(root, label("Expenses:Food:Restaurants"), inst("rest", "2024-01-01", "", 250))
	require.NoError(t, err)

	updated, err := Delete(root, label("Expenses:Food"), span("2024-01-01", ""))
	require.NoError(t, err)

	food := updated.Find(label("Expenses:Food"))
	require.NotNil(t, food, "gap node stays in place")
	assert.Empty(t, food.Budgets())
	require.NotNil(t, updated.Find(label("Expenses:Food:Restaurants")))
	assert.Len(t, updated.Budgets(), 1)

	assert.Len(t, root.Find(label("Expenses:Food")).Budgets(), 1, "original tree is unchanged")
}

func TestDelete_RequiresExactRange(t *testing.T) {
	root, err := NewNode(label("Expenses"), []Instance{inst("exp", "2024-01-01", "2024-12-31", 1000)}, nil)
	require.NoError(t, err)

	_, err = Delete(root, label("Expenses"), span("2024-01-01", ""))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Delete(root, label("Expenses:Food"), span("2024-01-01", "2024-12-31"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Delete(root, label("Expenses"), span("2024-01-01", "2024-12-31"))
	assert.NoError(t, err)
}

func TestFilter_PreservesGapHierarchy(t *testing.T) {
	root, err := NewNode(label("Expenses"), []Instance{inst("exp", "2023-01-01", "2023-12-31", 1000)}, nil)
	require.NoError(t, err)
	root, err = Insert(root, label("Expenses:Food:Restaurants"), inst("rest", "2024-01-01", "", 250))
	require.NoError(t, err)
	root, err = Insert(root, label("Expenses:Rent"), inst("rent", "2022-01-01", "2022-12-31", 1500))
	require.NoError(t, err)

	filtered := root.Filter(span("2024-02-01", "2024-02-29"))

	assert.Empty(t, filtered.Budgets())
	food := filtered.Find(label("Expenses:Food"))
	require.NotNil(t, food, "intermediate node with matching descendant survives")
	assert.Empty(t, food.Budgets())
	assert.NotNil(t, filtered.Find(label("Expenses:Food:Restaurants")))
	assert.Nil(t, filtered.Find(label("Expenses:Rent")), "node with nothing left is dropped")

	empty := root.Filter(span("1990-01-01", "1990-12-31"))
	require.NotNil(t, empty)
	assert.True(t, empty.IsEmpty())
}

func TestWalk(t *testing.T) {
	root, err := NewNode(label("Expenses"), nil, nil)
	require.NoError(t, err)
	root, err = Insert(root, label("Expenses:Food:Coffee"), inst("c", "2024-01-01", "", 1))
	require.NoError(t, err)
	root, err = Insert(root, label("Expenses:Auto"), inst("a", "2024-01-01", "", 1))
	require.NoError(t, err)

	var seen []string
	root.Walk(func(n *Node) bool {
		seen = append(seen, n.Label().String())
		return true
	})
	assert.Equal(t, []string{"Expenses", "Expenses:Auto", "Expenses:Food", "Expenses:Food:Coffee"}, seen)
}
