// Package tree provides the in-memory clip tree: an arena of nodes addressed by
// generation-checked handles, with row-based insertion, cascading renames and
// path-based group synthesis.
package tree

import (
	"errors"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

var (
	// ErrStaleHandle is returned when a handle refers to a removed node.
	ErrStaleHandle = errors.New("stale node handle")

	// ErrNotGroup is returned when children are added under a leaf.
	ErrNotGroup = errors.New("node is not a group")

	// ErrNotLeaf is returned when text is set on a group.
	ErrNotLeaf = errors.New("node is not a leaf")

	// ErrRootImmutable is returned for operations that cannot apply to the root.
	ErrRootImmutable = errors.New("root node cannot be modified")

	// ErrNoParent is returned when asking for the parent or row of the root.
	ErrNoParent = errors.New("node has no parent")

	// ErrRowOutOfRange is returned by ChildAt for rows outside the child list.
	ErrRowOutOfRange = errors.New("row out of range")

	// ErrEmptyName is returned by InsertPath when a name has no segments.
	// Callers treat it as a no-op insertion.
	ErrEmptyName = errors.New("empty hierarchical name")
)

// Handle identifies a node in a Tree. It stays valid across renames and moves
// of other nodes, and becomes stale once its node is removed. The zero Handle
// is the root.
type Handle struct {
	Index      uint32
	Generation uint32
}

// IsRoot reports whether h is the root handle.
func (h Handle) IsRoot() bool {
	return h == Handle{}
}

// node is one arena slot.
type node struct {
	generation uint32
	live       bool
	entry      types.Entry
	parent     Handle
	children   []Handle
}

// Tree is an ordered, parent-indexed tree of clip entries.
// It is not safe for concurrent use; the owning library serialises access.
type Tree struct {
	nodes []node
	free  []uint32
	count int
}

// New creates an empty tree containing only the root.
func New() *Tree {
	return &Tree{
		nodes: []node{{
			live:  true,
			entry: types.Entry{IsGroup: true},
		}},
	}
}

// Root returns the root handle.
func (t *Tree) Root() Handle {
	return Handle{}
}

// Len returns the number of live nodes, excluding the root.
func (t *Tree) Len() int {
	return t.count
}

// Valid reports whether h refers to a live node.
func (t *Tree) Valid(h Handle) bool {
	_, err := t.get(h)
	return err == nil
}

// get returns the slot for h. The pointer is only valid until the next allocation.
func (t *Tree) get(h Handle) (*node, error) {
	if int(h.Index) >= len(t.nodes) {
		return nil, ErrStaleHandle
	}
	n := &t.nodes[h.Index]
	if !n.live || n.generation != h.Generation {
		return nil, ErrStaleHandle
	}
	return n, nil
}

// alloc stores entry in a free slot and returns its handle.
func (t *Tree) alloc(entry types.Entry, parent Handle) Handle {
	t.count++
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		slot := &t.nodes[idx]
		slot.generation++
		slot.live = true
		slot.entry = entry
		slot.parent = parent
		slot.children = nil
		return Handle{Index: idx, Generation: slot.generation}
	}

	t.nodes = append(t.nodes, node{
		generation: 1,
		live:       true,
		entry:      entry,
		parent:     parent,
	})
	return Handle{Index: uint32(len(t.nodes) - 1), Generation: 1}
}

// release frees h and its whole subtree.
func (t *Tree) release(h Handle) {
	n := &t.nodes[h.Index]
	children := n.children
	n.live = false
	n.children = nil
	n.entry = types.Entry{}
	t.free = append(t.free, h.Index)
	t.count--

	for _, child := range children {
		t.release(child)
	}
}
