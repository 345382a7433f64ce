package tree

import (
	"strings"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// InsertPath inserts a node described by a hierarchical name, synthesising any
// missing intermediate groups.
//
// When parent is a leaf the insertion is retargeted to the leaf's parent, just
// after the leaf. Each group segment reuses the first existing child group with
// that name or creates a new one. Once at least one group segment was walked the
// final leaf is appended; otherwise it goes to row. For group names the deepest
// group is returned and text is ignored.
//
// Unlike a library load, which always appends, the first synthesised group is
// placed at row.
//
// A name without segments returns ErrEmptyName and leaves the tree untouched.
func (t *Tree) InsertPath(name, text string, isGroup bool, parent Handle, row int) (Handle, error) {
	p, err := t.get(parent)
	if err != nil {
		return Handle{}, err
	}

	if !p.entry.IsGroup {
		leafRow, err := t.Row(parent)
		if err != nil {
			return Handle{}, err
		}
		parent = p.parent
		row = leafRow + 1
	}

	groups, leaf := types.SplitHierarchicalName(name, isGroup)
	if len(groups) == 0 && leaf == "" {
		return Handle{}, ErrEmptyName
	}

	current := parent
	for i, segment := range groups {
		if existing, ok := t.findChildGroup(current, segment); ok {
			current = existing
			continue
		}

		// Only a top-level group segment honours the requested row.
		groupRow := -1
		if i == 0 {
			groupRow = row
		}
		current, err = t.Insert(types.Entry{Name: segment, IsGroup: true}, current, groupRow)
		if err != nil {
			return Handle{}, err
		}
	}

	if isGroup {
		return current, nil
	}

	if len(groups) > 0 {
		row = -1
	}
	return t.Insert(types.Entry{Name: leaf, Text: text}, current, row)
}

// findChildGroup returns the first child group of parent named name.
func (t *Tree) findChildGroup(parent Handle, name string) (Handle, bool) {
	for _, child := range t.nodes[parent.Index].children {
		e := t.nodes[child.Index].entry
		if e.IsGroup && e.Name == name {
			return child, true
		}
	}
	return Handle{}, false
}

// Resolve finds the first node in depth-first pre-order whose full name
// equals fullName. An empty name resolves to the root. A group may be given
// without its trailing separator; an exact match is preferred, so a leaf wins
// over a group of the same name.
func (t *Tree) Resolve(fullName string) (Handle, bool) {
	fullName = types.NormalizeFullName(fullName)
	if fullName == "" {
		return Handle{}, true
	}

	if h, ok := t.findFullName(fullName); ok {
		return h, true
	}
	if !strings.HasSuffix(fullName, types.Separator) {
		return t.findFullName(fullName + types.Separator)
	}
	return Handle{}, false
}

func (t *Tree) findFullName(fullName string) (Handle, bool) {
	var found Handle
	ok := false
	t.Walk(func(h Handle, e types.Entry) bool {
		if ok {
			return false
		}
		if e.FullName == fullName {
			found, ok = h, true
			return false
		}
		// Only a group whose name prefixes the query can contain it.
		return e.IsGroup && strings.HasPrefix(fullName, e.FullName)
	})
	return found, ok
}

// Walk visits every node below the root in depth-first pre-order.
// Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(h Handle, e types.Entry) bool) {
	t.walkChildren(Handle{}, fn)
}

// WalkFrom visits h and its subtree in depth-first pre-order.
func (t *Tree) WalkFrom(h Handle, fn func(h Handle, e types.Entry) bool) error {
	n, err := t.get(h)
	if err != nil {
		return err
	}
	if h.IsRoot() || fn(h, n.entry) {
		t.walkChildren(h, fn)
	}
	return nil
}

func (t *Tree) walkChildren(h Handle, fn func(Handle, types.Entry) bool) {
	for _, child := range t.nodes[h.Index].children {
		if fn(child, t.nodes[child.Index].entry) {
			t.walkChildren(child, fn)
		}
	}
}

// Childless returns every node without children in the subtree of h, in
// depth-first order. Both leaves and empty groups are included. When h itself
// has no children it is returned alone. The root is never included.
func (t *Tree) Childless(h Handle) ([]Handle, error) {
	var out []Handle
	err := t.WalkFrom(h, func(c Handle, _ types.Entry) bool {
		if !c.IsRoot() && len(t.nodes[c.Index].children) == 0 {
			out = append(out, c)
		}
		return true
	})
	return out, err
}

// Leaves returns the non-group descendants of h in depth-first order.
func (t *Tree) Leaves(h Handle) ([]Handle, error) {
	var out []Handle
	err := t.WalkFrom(h, func(c Handle, e types.Entry) bool {
		if !e.IsGroup && !c.IsRoot() {
			out = append(out, c)
		}
		return true
	})
	return out, err
}

// Flatten returns the entries of every node below the root in depth-first order.
func (t *Tree) Flatten() []types.Entry {
	out := make([]types.Entry, 0, t.count)
	t.Walk(func(_ Handle, e types.Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}
