// Package budgettree stores budget instances in an immutable tree keyed by
// account path. Every mutation returns a new tree that shares the subtrees it
// did not touch; existing trees are never altered.
package budgettree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bagelcount/bagelcount/internal/account"
	"github.com/bagelcount/bagelcount/internal/calendar"
	"github.com/bagelcount/bagelcount/internal/model"
)

var (
	// ErrOverlap is returned when two instances on one node share a day. It
	// matches calendar.ErrRange.
	ErrOverlap = fmt.Errorf("%w: overlapping budget instances", calendar.ErrRange)

	// ErrNotFound is returned when a delete names a node or range that does not exist.
	ErrNotFound = errors.New("budget instance not found")

	// ErrOutsideTree is returned when a label is not the root or one of its descendants.
	ErrOutsideTree = errors.New("account outside tree")

	// ErrBadChild is returned when a child node is not a direct child of its parent.
	ErrBadChild = errors.New("invalid child node")
)

// Instance is an amount valid over one effective range. ID links the instance
// back to the budget record it was derived from.
type Instance struct {
	ID     string
	Range  calendar.Range
	Amount decimal.Decimal
}

// NewInstance rejects negative amounts. Zero is allowed.
func NewInstance(id string, r calendar.Range, amount decimal.Decimal) (Instance, error) {
	if amount.IsNegative() {
		return Instance{}, fmt.Errorf("instance %s: %w", id, model.ErrNegativeAmount)
	}
	return Instance{ID: id, Range: r, Amount: amount}, nil
}

// Node is one account in the tree. A node may have children without budgets
// of its own (a gap in the hierarchy).
type Node struct {
	label    account.Label
	budgets  []Instance
	children []*Node
}

// NewNode sorts budgets by start date and rejects overlapping instances. Each
// child must be a direct child account of label; children are ordered by name.
func NewNode(label account.Label, budgets []Instance, children []*Node) (*Node, error) {
	if label.IsZero() {
		return nil, fmt.Errorf("%w: node label is required", account.ErrInvalidLabel)
	}

	sorted := make([]Instance, len(budgets))
	copy(sorted, budgets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Range.Start.Before(sorted[j].Range.Start)
	})
	for i := range sorted {
		if sorted[i].Amount.IsNegative() {
			return nil, fmt.Errorf("%s: instance %s: %w", label, sorted[i].ID, model.ErrNegativeAmount)
		}
		if i > 0 && sorted[i-1].Range.Overlaps(sorted[i].Range) {
			return nil, fmt.Errorf("%s: %s and %s: %w", label, sorted[i-1].Range, sorted[i].Range, ErrOverlap)
		}
	}

	kids := make([]*Node, len(children))
	copy(kids, children)
	for _, c := range kids {
		if c == nil {
			return nil, fmt.Errorf("%w: nil child of %s", ErrBadChild, label)
		}
		parent, ok := c.label.Parent()
		if !ok || !parent.Equal(label) {
			return nil, fmt.Errorf("%w: %s is not a direct child of %s", ErrBadChild, c.label, label)
		}
	}
	sort.Slice(kids, func(i, j int) bool { return kids[i].label.Leaf() < kids[j].label.Leaf() })
	for i := 1; i < len(kids); i++ {
		if kids[i].label.Leaf() == kids[i-1].label.Leaf() {
			return nil, fmt.Errorf("%w: duplicate child %s", ErrBadChild, kids[i].label)
		}
	}

	return &Node{label: label, budgets: sorted, children: kids}, nil
}

// Label returns the node's account.
func (n *Node) Label() account.Label { return n.label }

// Budgets returns a copy of the node's instances, sorted by start date.
func (n *Node) Budgets() []Instance {
	out := make([]Instance, len(n.budgets))
	copy(out, n.budgets)
	return out
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// IsEmpty reports whether the node has neither budgets nor children.
func (n *Node) IsEmpty() bool {
	return len(n.budgets) == 0 && len(n.children) == 0
}

// Find returns the node for label, or nil.
func (n *Node) Find(label account.Label) *Node {
	if !n.label.Contains(label) {
		return nil
	}
	cur := n
	for cur.label.Depth() < label.Depth() {
		_, next := cur.child(label.Segments()[cur.label.Depth()])
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Filter keeps only instances overlapping r. A child is dropped only when it
// ends up with neither instances nor children, so intermediate nodes without
// budgets survive as long as a descendant matches.
func (n *Node) Filter(r calendar.Range) *Node {
	var budgets []Instance
	for _, b := range n.budgets {
		if b.Range.Overlaps(r) {
			budgets = append(budgets, b)
		}
	}
	var children []*Node
	for _, c := range n.children {
		fc := c.Filter(r)
		if !fc.IsEmpty() {
			children = append(children, fc)
		}
	}
	return &Node{label: n.label, budgets: budgets, children: children}
}

// Insert adds inst at target, creating empty intermediate nodes as needed.
func Insert(root *Node, target account.Label, inst Instance) (*Node, error) {
	if !root.label.Contains(target) {
		return nil, fmt.Errorf("%w: %s is not under %s", ErrOutsideTree, target, root.label)
	}
	if inst.Amount.IsNegative() {
		return nil, fmt.Errorf("instance %s: %w", inst.ID, model.ErrNegativeAmount)
	}
	return root.insert(target, inst)
}

func (n *Node) insert(target account.Label, inst Instance) (*Node, error) {
	if n.label.Equal(target) {
		return n.withInstance(inst)
	}

	childLabel := target.Prefix(n.label.Depth() + 1)
	idx, child := n.child(childLabel.Leaf())
	existing := child != nil
	if !existing {
		child = &Node{label: childLabel}
	}
	updated, err := child.insert(target, inst)
	if err != nil {
		return nil, err
	}
	return n.withChild(idx, existing, updated), nil
}

// withInstance places inst at its sorted position, checking only its two neighbors.
func (n *Node) withInstance(inst Instance) (*Node, error) {
	pos := sort.Search(len(n.budgets), func(i int) bool {
		return inst.Range.Start.Before(n.budgets[i].Range.Start)
	})
	if pos > 0 && n.budgets[pos-1].Range.Overlaps(inst.Range) {
		return nil, fmt.Errorf("%s: %s overlaps %s: %w", n.label, inst.Range, n.budgets[pos-1].Range, ErrOverlap)
	}
	if pos < len(n.budgets) && n.budgets[pos].Range.Overlaps(inst.Range) {
		return nil, fmt.Errorf("%s: %s overlaps %s: %w", n.label, inst.Range, n.budgets[pos].Range, ErrOverlap)
	}

	budgets := make([]Instance, 0, len(n.budgets)+1)
	budgets = append(budgets, n.budgets[:pos]...)
	budgets = append(budgets, inst)
	budgets = append(budgets, n.budgets[pos:]...)
	return &Node{label: n.label, budgets: budgets, children: n.children}, nil
}

// Delete removes the instance at target whose range equals r exactly.
func Delete(root *Node, target account.Label, r calendar.Range) (*Node, error) {
	if !root.label.Contains(target) {
		return nil, fmt.Errorf("%w: %s is not under %s", ErrOutsideTree, target, root.label)
	}
	return root.delete(target, r)
}

func (n *Node) delete(target account.Label, r calendar.Range) (*Node, error) {
	if n.label.Equal(target) {
		for i, b := range n.budgets {
			if calendar.RangeEqual(b.Range, r) {
				budgets := make([]Instance, 0, len(n.budgets)-1)
				budgets = append(budgets, n.budgets[:i]...)
				budgets = append(budgets, n.budgets[i+1:]...)
				return &Node{label: n.label, budgets: budgets, children: n.children}, nil
			}
		}
		return nil, fmt.Errorf("%w: no instance %s at %s", ErrNotFound, r, target)
	}

	childLabel := target.Prefix(n.label.Depth() + 1)
	idx, child := n.child(childLabel.Leaf())
	if child == nil {
		return nil, fmt.Errorf("%w: no node %s", ErrNotFound, target)
	}
	updated, err := child.delete(target, r)
	if err != nil {
		return nil, err
	}
	return n.withChild(idx, true, updated), nil
}

// child binary-searches the sorted children. It returns the index where leaf
// is or would be inserted, and the child if present.
func (n *Node) child(leaf string) (int, *Node) {
	idx := sort.Search(len(n.children), func(i int) bool {
		return n.children[i].label.Leaf() >= leaf
	})
	if idx < len(n.children) && n.children[idx].label.Leaf() == leaf {
		return idx, n.children[idx]
	}
	return idx, nil
}

// withChild returns a copy of n with the child at idx replaced (or inserted when
// replace is false). Other children are shared.
func (n *Node) withChild(idx int, replace bool, c *Node) *Node {
	var children []*Node
	if replace {
		children = make([]*Node, len(n.children))
		copy(children, n.children)
		children[idx] = c
	} else {
		children = make([]*Node, 0, len(n.children)+1)
		children = append(children, n.children[:idx]...)
		children = append(children, c)
		children = append(children, n.children[idx:]...)
	}
	return &Node{label: n.label, budgets: n.budgets, children: children}
}
