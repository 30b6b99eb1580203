package budgettree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForest(t *testing.T) {
	var f Forest
	f, err := f.Insert(label("Expenses:Food"), inst("food", "2024-01-01", "", 600))
	require.NoError(t, err)
	f, err = f.Insert(label("Income:Salary"), inst("salary", "2024-01-01", "2024-12-31", 5000))
	require.NoError(t, err)

	roots := f.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "Expenses", roots[0].Label().String())
	assert.Equal(t, "Income", roots[1].Label().String())
	assert.Len(t, f.Instances(), 2)

	filtered := f.Filter(span("2025-01-01", "2025-01-31"))
	require.Len(t, filtered.Roots(), 1)
	assert.NotNil(t, filtered.Find(label("Expenses:Food")))
	assert.Nil(t, filtered.Find(label("Income:Salary")))

	removed, err := f.Delete(label("Income:Salary"), span("2024-01-01", "2024-12-31"))
	require.NoError(t, err)
	assert.Len(t, removed.Instances(), 1)
	assert.Len(t, f.Instances(), 2, "original forest is unchanged")

	_, err = f.Delete(label("Assets:Cash"), span("2024-01-01", ""))
	assert.ErrorIs(t, err, ErrNotFound)
}
