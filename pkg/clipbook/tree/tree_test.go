package tree_test

import (
	"testing"

	"github.com/jamesainslie/clipbook/pkg/clipbook/tree"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertFullNames checks that every node's full name is derived from its parent.
func assertFullNames(t *testing.T, tr *tree.Tree) {
	t.Helper()
	tr.Walk(func(h tree.Handle, e types.Entry) bool {
		parent, err := tr.Parent(h)
		require.NoError(t, err)
		pe, err := tr.Entry(parent)
		require.NoError(t, err)
		assert.Equal(t, types.JoinFullName(pe.FullName, e.Name, e.IsGroup), e.FullName)
		return true
	})
}

func names(t *testing.T, tr *tree.Tree, hs []tree.Handle) []string {
	t.Helper()
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		e, err := tr.Entry(h)
		require.NoError(t, err)
		out = append(out, e.FullName)
	}
	return out
}

func TestInsert(t *testing.T) {
	t.Run("computes full names from parent", func(t *testing.T) {
		tr := tree.New()
		g, err := tr.Insert(types.Entry{Name: "HTML", IsGroup: true}, tr.Root(), -1)
		require.NoError(t, err)
		leaf, err := tr.Insert(types.Entry{Name: "Bold", Text: "<b>"}, g, -1)
		require.NoError(t, err)

		ge, _ := tr.Entry(g)
		le, _ := tr.Entry(leaf)
		assert.Equal(t, "HTML/", ge.FullName)
		assert.Equal(t, "HTML/Bold", le.FullName)
		assert.Equal(t, "<b>", le.Text)
		assert.Equal(t, 2, tr.Len())
	})

	t.Run("groups drop text", func(t *testing.T) {
		tr := tree.New()
		g, err := tr.Insert(types.Entry{Name: "G", Text: "ignored", IsGroup: true}, tr.Root(), -1)
		require.NoError(t, err)
		e, _ := tr.Entry(g)
		assert.Empty(t, e.Text)
	})

	t.Run("inserts at row and appends out of range", func(t *testing.T) {
		tr := tree.New()
		a, _ := tr.Insert(types.Entry{Name: "a"}, tr.Root(), -1)
		c, _ := tr.Insert(types.Entry{Name: "c"}, tr.Root(), 99)
		b, _ := tr.Insert(types.Entry{Name: "b"}, tr.Root(), 1)
		first, _ := tr.Insert(types.Entry{Name: "first"}, tr.Root(), 0)

		children, err := tr.Children(tr.Root())
		require.NoError(t, err)
		assert.Equal(t, []tree.Handle{first, a, b, c}, children)

		row, err := tr.Row(b)
		require.NoError(t, err)
		assert.Equal(t, 2, row)
	})

	t.Run("rejects leaf parent", func(t *testing.T) {
		tr := tree.New()
		leaf, _ := tr.Insert(types.Entry{Name: "leaf"}, tr.Root(), -1)
		_, err := tr.Insert(types.Entry{Name: "child"}, leaf, -1)
		assert.ErrorIs(t, err, tree.ErrNotGroup)
	})
}

func TestRename(t *testing.T) {
	t.Run("cascades to descendants", func(t *testing.T) {
		tr := tree.New()
		a, _ := tr.InsertPath("A/", "", true, tr.Root(), -1)
		child, _ := tr.InsertPath("A/child", "x", false, tr.Root(), -1)
		deep, _ := tr.InsertPath("A/B/deep", "y", false, tr.Root(), -1)

		ok, err := tr.Rename(a, "Z")
		require.NoError(t, err)
		assert.True(t, ok)

		ce, _ := tr.Entry(child)
		assert.Equal(t, "child", ce.Name)
		assert.Equal(t, "Z/child", ce.FullName)

		de, _ := tr.Entry(deep)
		assert.Equal(t, "Z/B/deep", de.FullName)
		assertFullNames(t, tr)
	})

	t.Run("corrects names with separators", func(t *testing.T) {
		tr := tree.New()
		leaf, _ := tr.InsertPath("G/leaf", "", false, tr.Root(), -1)

		ok, err := tr.Rename(leaf, "Other/renamed/")
		require.NoError(t, err)
		assert.True(t, ok)

		e, _ := tr.Entry(leaf)
		assert.Equal(t, "renamed", e.Name)
		assert.Equal(t, "G/renamed", e.FullName)
	})

	t.Run("empty or separator-only names are ignored", func(t *testing.T) {
		tr := tree.New()
		leaf, _ := tr.InsertPath("G/leaf", "", false, tr.Root(), -1)

		for _, name := range []string{"", "/", "  "} {
			ok, err := tr.Rename(leaf, name)
			require.NoError(t, err)
			assert.False(t, ok, "name %q", name)
		}

		e, _ := tr.Entry(leaf)
		assert.Equal(t, "leaf", e.Name)
		assert.Equal(t, "G/leaf", e.FullName)
	})

	t.Run("root cannot be renamed", func(t *testing.T) {
		tr := tree.New()
		_, err := tr.Rename(tr.Root(), "x")
		assert.ErrorIs(t, err, tree.ErrRootImmutable)
	})
}

func TestSetText(t *testing.T) {
	tr := tree.New()
	g, _ := tr.InsertPath("G/", "", true, tr.Root(), -1)
	leaf, _ := tr.InsertPath("G/leaf", "old", false, tr.Root(), -1)

	require.NoError(t, tr.SetText(leaf, "new"))
	e, _ := tr.Entry(leaf)
	assert.Equal(t, "new", e.Text)

	assert.ErrorIs(t, tr.SetText(g, "x"), tree.ErrNotLeaf)
}

func TestRemove(t *testing.T) {
	t.Run("destroys subtree and invalidates handles", func(t *testing.T) {
		tr := tree.New()
		g, _ := tr.InsertPath("G/", "", true, tr.Root(), -1)
		leaf, _ := tr.InsertPath("G/leaf", "", false, tr.Root(), -1)
		other, _ := tr.InsertPath("other", "", false, tr.Root(), -1)

		require.NoError(t, tr.Remove(g))

		assert.False(t, tr.Valid(g))
		assert.False(t, tr.Valid(leaf))
		assert.True(t, tr.Valid(other))
		assert.Equal(t, 1, tr.Len())

		_, err := tr.Entry(leaf)
		assert.ErrorIs(t, err, tree.ErrStaleHandle)
		assert.ErrorIs(t, tr.Remove(g), tree.ErrStaleHandle)
	})

	t.Run("reused slots do not revive stale handles", func(t *testing.T) {
		tr := tree.New()
		old, _ := tr.Insert(types.Entry{Name: "old"}, tr.Root(), -1)
		require.NoError(t, tr.Remove(old))

		fresh, _ := tr.Insert(types.Entry{Name: "fresh"}, tr.Root(), -1)
		assert.Equal(t, old.Index, fresh.Index)
		assert.NotEqual(t, old.Generation, fresh.Generation)
		assert.False(t, tr.Valid(old))
		assert.True(t, tr.Valid(fresh))
	})

	t.Run("root cannot be removed", func(t *testing.T) {
		tr := tree.New()
		assert.ErrorIs(t, tr.Remove(tr.Root()), tree.ErrRootImmutable)
	})
}

func TestClear(t *testing.T) {
	tr := tree.New()
	leaf, _ := tr.InsertPath("A/B/leaf", "", false, tr.Root(), -1)

	tr.Clear()

	assert.Zero(t, tr.Len())
	assert.Zero(t, tr.ChildCount(tr.Root()))
	assert.False(t, tr.Valid(leaf))
	assert.True(t, tr.Valid(tr.Root()))
}

func TestAccessors(t *testing.T) {
	tr := tree.New()
	g, _ := tr.InsertPath("G/", "", true, tr.Root(), -1)
	a, _ := tr.InsertPath("G/a", "", false, tr.Root(), -1)

	parent, err := tr.Parent(a)
	require.NoError(t, err)
	assert.Equal(t, g, parent)

	top, err := tr.Parent(g)
	require.NoError(t, err)
	assert.True(t, top.IsRoot())

	_, err = tr.Parent(tr.Root())
	assert.ErrorIs(t, err, tree.ErrNoParent)

	got, err := tr.ChildAt(g, 0)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = tr.ChildAt(g, 1)
	assert.ErrorIs(t, err, tree.ErrRowOutOfRange)

	assert.True(t, tr.IsGroup(tr.Root()))
	assert.True(t, tr.IsGroup(g))
	assert.False(t, tr.IsGroup(a))

	assert.True(t, tr.Contains(g, a))
	assert.True(t, tr.Contains(g, g))
	assert.True(t, tr.Contains(tr.Root(), a))
	assert.False(t, tr.Contains(a, g))
}

func TestTraversals(t *testing.T) {
	tr := tree.New()
	_, _ = tr.InsertPath("A/B/leaf1", "x", false, tr.Root(), -1)
	_, _ = tr.InsertPath("A/Empty/", "", true, tr.Root(), -1)
	_, _ = tr.InsertPath("A/leaf2", "y", false, tr.Root(), -1)
	_, _ = tr.InsertPath("top", "z", false, tr.Root(), -1)

	t.Run("flatten is depth-first left-to-right", func(t *testing.T) {
		var got []string
		for _, e := range tr.Flatten() {
			got = append(got, e.FullName)
		}
		assert.Equal(t, []string{"A/", "A/B/", "A/B/leaf1", "A/Empty/", "A/leaf2", "top"}, got)
	})

	t.Run("childless includes empty groups", func(t *testing.T) {
		hs, err := tr.Childless(tr.Root())
		require.NoError(t, err)
		assert.Equal(t, []string{"A/B/leaf1", "A/Empty/", "A/leaf2", "top"}, names(t, tr, hs))
	})

	t.Run("leaves excludes groups", func(t *testing.T) {
		a, ok := tr.Resolve("A/")
		require.True(t, ok)
		hs, err := tr.Leaves(a)
		require.NoError(t, err)
		assert.Equal(t, []string{"A/B/leaf1", "A/leaf2"}, names(t, tr, hs))
	})

	t.Run("childless of a leaf is the leaf", func(t *testing.T) {
		top, ok := tr.Resolve("top")
		require.True(t, ok)
		hs, err := tr.Childless(top)
		require.NoError(t, err)
		assert.Equal(t, []tree.Handle{top}, hs)
	})

	t.Run("walk can prune subtrees", func(t *testing.T) {
		var visited []string
		tr.Walk(func(_ tree.Handle, e types.Entry) bool {
			visited = append(visited, e.FullName)
			return e.FullName != "A/"
		})
		assert.Equal(t, []string{"A/", "top"}, visited)
	})
}
