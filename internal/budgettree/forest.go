package budgettree

import (
	"sort"

	"github.com/bagelcount/bagelcount/internal/account"
	"github.com/bagelcount/bagelcount/internal/calendar"
)

// Forest holds one tree per top-level account ("Expenses", "Income", ...).
// Like Node it is immutable; the zero Forest is empty and ready to use.
type Forest struct {
	roots map[string]*Node
}

// Insert adds inst at label, creating the root tree if needed.
func (f Forest) Insert(label account.Label, inst Instance) (Forest, error) {
	root := f.roots[label.Root()]
	if root == nil {
		root = &Node{label: label.Prefix(1)}
	}
	updated, err := Insert(root, label, inst)
	if err != nil {
		return Forest{}, err
	}
	return f.with(label.Root(), updated), nil
}

// Delete removes the instance at label with range r.
func (f Forest) Delete(label account.Label, r calendar.Range) (Forest, error) {
	root := f.roots[label.Root()]
	if root == nil {
		return Forest{}, ErrNotFound
	}
	updated, err := Delete(root, label, r)
	if err != nil {
		return Forest{}, err
	}
	return f.with(label.Root(), updated), nil
}

// Filter applies Node.Filter to every root, dropping roots that end up empty.
func (f Forest) Filter(r calendar.Range) Forest {
	out := Forest{roots: make(map[string]*Node, len(f.roots))}
	for name, root := range f.roots {
		if fr := root.Filter(r); !fr.IsEmpty() {
			out.roots[name] = fr
		}
	}
	return out
}

// Find returns the node for label, or nil.
func (f Forest) Find(label account.Label) *Node {
	root := f.roots[label.Root()]
	if root == nil {
		return nil
	}
	return root.Find(label)
}

// Roots returns the root nodes ordered by name.
func (f Forest) Roots() []*Node {
	out := make([]*Node, 0, len(f.roots))
	for _, r := range f.roots {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].label.Root() < out[j].label.Root() })
	return out
}

// Instances returns every instance in the forest.
func (f Forest) Instances() []Instance {
	var out []Instance
	for _, r := range f.Roots() {
		r.Walk(func(n *Node) bool {
			out = append(out, n.budgets...)
			return true
		})
	}
	return out
}

func (f Forest) with(name string, root *Node) Forest {
	roots := make(map[string]*Node, len(f.roots)+1)
	for k, v := range f.roots {
		roots[k] = v
	}
	roots[name] = root
	return Forest{roots: roots}
}
