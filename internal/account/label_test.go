package account

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	l, err := Parse("Expenses:Food:Groceries")
	require.NoError(t, err)
	assert.Equal(t, []string{"Expenses", "Food", "Groceries"}, l.Segments())
	assert.Equal(t, 3, l.Depth())
	assert.Equal(t, "Expenses", l.Root())
	assert.Equal(t, "Groceries", l.Leaf())
	assert.Equal(t, "Expenses:Food:Groceries", l.String())
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{"", ":", "Expenses:", ":Expenses", "Expenses::Food"} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidLabel, "input %q", raw)
	}
}

func TestSegmentsIsACopy(t *testing.T) {
	l := MustParse("Expenses:Food")
	segs := l.Segments()
	segs[0] = "Income"
	assert.Equal(t, "Expenses:Food", l.String())
}

func TestParent(t *testing.T) {
	parent, ok := MustParse("Expenses:Food:Groceries").Parent()
	require.True(t, ok)
	assert.Equal(t, "Expenses:Food", parent.String())

	_, ok = MustParse("Expenses").Parent()
	assert.False(t, ok)
}

func TestParentDoesNotAliasChild(t *testing.T) {
	parent, _ := MustParse("Expenses:Food:Groceries").Parent()
	child, err := parent.Child("Restaurants")
	require.NoError(t, err)
	assert.Equal(t, "Expenses:Food:Restaurants", child.String())
	assert.Equal(t, "Expenses:Food", parent.String())
}

func TestChild_Invalid(t *testing.T) {
	_, err := MustParse("Expenses").Child("")
	assert.ErrorIs(t, err, ErrInvalidLabel)
	_, err = MustParse("Expenses").Child("a:b")
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestAncestry(t *testing.T) {
	expenses := MustParse("Expenses")
	food := MustParse("Expenses:Food")
	foodish := MustParse("Expenses:FoodCourt")

	assert.True(t, expenses.IsAncestorOf(food))
	assert.False(t, food.IsAncestorOf(expenses))
	assert.False(t, food.IsAncestorOf(food))
	assert.False(t, food.IsAncestorOf(foodish))
	assert.True(t, food.Contains(food))
	assert.True(t, expenses.Contains(foodish))
	assert.Equal(t, "Expenses", food.Prefix(1).String())
}

func TestEqual(t *testing.T) {
	assert.True(t, MustParse("A:B").Equal(MustParse("A:B")))
	assert.False(t, MustParse("A:B").Equal(MustParse("A:C")))
	assert.False(t, MustParse("A:B").Equal(MustParse("A")))
}

func TestJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		Account Label `json:"account"`
	}
	data, err := json.Marshal(wrapper{Account: MustParse("Expenses:Rent")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"account":"Expenses:Rent"}`, string(data))

	var got wrapper
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Account.Equal(MustParse("Expenses:Rent")))

	err = json.Unmarshal([]byte(`{"account":"Expenses::Rent"}`), &got)
	assert.ErrorIs(t, err, ErrInvalidLabel)
}
