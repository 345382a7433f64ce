package tree

import (
	"fmt"
	"slices"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// Insert adds a node built from entry under parent at row. A negative row or a
// row past the last child appends. The entry's full name is computed from the
// parent, and groups never carry text.
func (t *Tree) Insert(entry types.Entry, parent Handle, row int) (Handle, error) {
	p, err := t.get(parent)
	if err != nil {
		return Handle{}, fmt.Errorf("inserting %q: %w", entry.Name, err)
	}
	if !p.entry.IsGroup {
		return Handle{}, fmt.Errorf("inserting %q under %q: %w", entry.Name, p.entry.FullName, ErrNotGroup)
	}

	entry.FullName = types.JoinFullName(p.entry.FullName, entry.Name, entry.IsGroup)
	if entry.IsGroup {
		entry.Text = ""
	}

	h := t.alloc(entry, parent)

	// alloc may grow the arena, so the parent slot is looked up again.
	p = &t.nodes[parent.Index]
	if row < 0 || row >= len(p.children) {
		p.children = append(p.children, h)
	} else {
		p.children = slices.Insert(p.children, row, h)
	}

	return h, nil
}

// Rename changes the display name of h and refreshes the full names of h and
// every descendant. The name is corrected first; when nothing usable remains the
// node keeps its name and Rename returns false.
func (t *Tree) Rename(h Handle, name string) (bool, error) {
	if h.IsRoot() {
		return false, ErrRootImmutable
	}
	n, err := t.get(h)
	if err != nil {
		return false, err
	}

	corrected, ok := types.CorrectName(name)
	if !ok {
		return false, nil
	}

	n.entry.Name = corrected
	t.refreshFullNames(h)
	return true, nil
}

// refreshFullNames recomputes the cached full name of h and its subtree.
func (t *Tree) refreshFullNames(h Handle) {
	n := &t.nodes[h.Index]
	parent := t.nodes[n.parent.Index].entry.FullName
	n.entry.FullName = types.JoinFullName(parent, n.entry.Name, n.entry.IsGroup)

	for _, child := range n.children {
		t.refreshFullNames(child)
	}
}

// SetText replaces the payload of a leaf.
func (t *Tree) SetText(h Handle, text string) error {
	n, err := t.get(h)
	if err != nil {
		return err
	}
	if n.entry.IsGroup {
		return fmt.Errorf("setting text on %q: %w", n.entry.FullName, ErrNotLeaf)
	}
	n.entry.Text = text
	return nil
}

// Remove detaches h from its parent and destroys it with its subtree.
// Every handle into the subtree becomes stale.
func (t *Tree) Remove(h Handle) error {
	if h.IsRoot() {
		return ErrRootImmutable
	}
	n, err := t.get(h)
	if err != nil {
		return err
	}

	p := &t.nodes[n.parent.Index]
	if i := slices.Index(p.children, h); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}

	t.release(h)
	return nil
}

// Clear removes every node except the root. Outstanding handles become stale.
func (t *Tree) Clear() {
	root := &t.nodes[0]
	children := root.children
	root.children = nil
	for _, child := range children {
		t.release(child)
	}
}

// Entry returns the value view of h.
func (t *Tree) Entry(h Handle) (types.Entry, error) {
	n, err := t.get(h)
	if err != nil {
		return types.Entry{}, err
	}
	return n.entry, nil
}

// IsGroup reports whether h is a live group. The root is a group.
func (t *Tree) IsGroup(h Handle) bool {
	n, err := t.get(h)
	return err == nil && n.entry.IsGroup
}

// Parent returns the parent of h. Top-level nodes have the root as parent.
func (t *Tree) Parent(h Handle) (Handle, error) {
	if h.IsRoot() {
		return Handle{}, ErrNoParent
	}
	n, err := t.get(h)
	if err != nil {
		return Handle{}, err
	}
	return n.parent, nil
}

// Row returns the position of h among its siblings.
func (t *Tree) Row(h Handle) (int, error) {
	parent, err := t.Parent(h)
	if err != nil {
		return 0, err
	}
	return slices.Index(t.nodes[parent.Index].children, h), nil
}

// Children returns a copy of the ordered child handles of h.
func (t *Tree) Children(h Handle) ([]Handle, error) {
	n, err := t.get(h)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.children), nil
}

// ChildAt returns the child of h at row.
func (t *Tree) ChildAt(h Handle, row int) (Handle, error) {
	n, err := t.get(h)
	if err != nil {
		return Handle{}, err
	}
	if row < 0 || row >= len(n.children) {
		return Handle{}, fmt.Errorf("row %d of %q: %w", row, n.entry.FullName, ErrRowOutOfRange)
	}
	return n.children[row], nil
}

// ChildCount returns the number of children of h, or 0 for a stale handle.
func (t *Tree) ChildCount(h Handle) int {
	n, err := t.get(h)
	if err != nil {
		return 0
	}
	return len(n.children)
}

// Contains reports whether h lies in the subtree rooted at ancestor,
// including ancestor itself.
func (t *Tree) Contains(ancestor, h Handle) bool {
	if !t.Valid(ancestor) || !t.Valid(h) {
		return false
	}
	for {
		if h == ancestor {
			return true
		}
		if h.IsRoot() {
			return false
		}
		h = t.nodes[h.Index].parent
	}
}
