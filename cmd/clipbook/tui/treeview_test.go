package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/clipbook/pkg/clipbook/library"
	"github.com/jamesainslie/clipbook/pkg/clipbook/settings"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// newTestLibrary returns a loaded library with this layout:
//
//	HTML/
//	  Bold
//	  Lists/
//	    Item
//	Scratch/
//	Note
func newTestLibrary(t *testing.T) *library.Library {
	t.Helper()
	store := settings.NewMemory("test")
	require.NoError(t, store.WriteArray(context.Background(), settings.ClipEntriesGroup, []types.Record{
		{Name: "HTML/Bold", Text: "<b>\\1</b>"},
		{Name: "HTML/Lists/Item", Text: "<li>|</li>"},
		{Name: "Scratch/"},
		{Name: "Note", Text: "hello\nworld"},
	}))
	lib := library.New(store, library.WithTemplate(nil))
	require.NoError(t, lib.Load(context.Background()))
	return lib
}

func rowNames(tv *TreeView) []string {
	names := make([]string, 0, len(tv.rows))
	for _, r := range tv.rows {
		names = append(names, r.entry.FullName)
	}
	return names
}

func currentName(t *testing.T, tv *TreeView) string {
	t.Helper()
	r, ok := tv.Current()
	require.True(t, ok)
	return r.entry.FullName
}

func TestNewTreeView(t *testing.T) {
	tv := NewTreeView(newTestLibrary(t))

	assert.Equal(t, []string{"HTML/", "HTML/Bold", "HTML/Lists/", "HTML/Lists/Item", "Scratch/", "Note"}, rowNames(tv))
	assert.Equal(t, 0, tv.Cursor())
	assert.Empty(t, tv.Marked())
}

func TestTreeViewNavigation(t *testing.T) {
	tv := NewTreeView(newTestLibrary(t))

	tv.MoveUp()
	assert.Equal(t, 0, tv.Cursor(), "cursor stops at the top")

	tv.MoveDown()
	tv.MoveDown()
	assert.Equal(t, "HTML/Lists/", currentName(t, tv))

	tv.Bottom()
	assert.Equal(t, "Note", currentName(t, tv))
	tv.MoveDown()
	assert.Equal(t, "Note", currentName(t, tv), "cursor stops at the bottom")

	tv.Top()
	assert.Equal(t, "HTML/", currentName(t, tv))
}

func TestTreeViewExpandCollapse(t *testing.T) {
	t.Run("toggle hides and shows children", func(t *testing.T) {
		tv := NewTreeView(newTestLibrary(t))

		tv.Toggle()
		assert.Equal(t, []string{"HTML/", "Scratch/", "Note"}, rowNames(tv))

		tv.Toggle()
		assert.Len(t, tv.rows, 6)
	})

	t.Run("toggle on a clip does nothing", func(t *testing.T) {
		tv := NewTreeView(newTestLibrary(t))
		tv.Bottom()
		tv.Toggle()
		assert.Len(t, tv.rows, 6)
	})

	t.Run("collapse on a clip moves to its group", func(t *testing.T) {
		tv := NewTreeView(newTestLibrary(t))
		tv.MoveDown()
		tv.MoveDown()
		tv.MoveDown()
		require.Equal(t, "HTML/Lists/Item", currentName(t, tv))

		tv.Collapse()
		assert.Equal(t, "HTML/Lists/", currentName(t, tv))

		tv.Collapse()
		assert.Equal(t, []string{"HTML/", "HTML/Bold", "HTML/Lists/", "Scratch/", "Note"}, rowNames(tv))

		tv.Collapse()
		assert.Equal(t, "HTML/", currentName(t, tv))

		tv.Expand()
		tv.MoveDown()
		tv.MoveDown()
		tv.Expand()
		assert.Len(t, tv.rows, 6)
	})

	t.Run("collapsed state survives a refresh", func(t *testing.T) {
		tv := NewTreeView(newTestLibrary(t))
		tv.Toggle()
		tv.Refresh()
		assert.Len(t, tv.rows, 3)
	})
}

func TestTreeViewMarks(t *testing.T) {
	lib := newTestLibrary(t)
	tv := NewTreeView(lib)

	tv.Bottom()
	tv.ToggleMark()
	tv.Top()
	tv.MoveDown()
	tv.ToggleMark()

	marked := tv.Marked()
	require.Len(t, marked, 2)
	first, err := lib.Entry(marked[0])
	require.NoError(t, err)
	assert.Equal(t, "HTML/Bold", first.FullName, "marks come back in tree order")

	t.Run("marks inside collapsed groups are kept", func(t *testing.T) {
		tv.Top()
		tv.Toggle()
		assert.Len(t, tv.Marked(), 2)
	})

	t.Run("stale marks are dropped on refresh", func(t *testing.T) {
		h, ok := lib.Resolve("Note")
		require.True(t, ok)
		require.NoError(t, lib.Remove(h))
		tv.Refresh()
		assert.Len(t, tv.Marked(), 1)
	})

	tv.ClearMarks()
	assert.Empty(t, tv.Marked())
}

func TestTreeViewRefreshKeepsCursor(t *testing.T) {
	lib := newTestLibrary(t)
	tv := NewTreeView(lib)
	tv.Bottom()

	h, ok := lib.Resolve("HTML/Bold")
	require.True(t, ok)
	require.NoError(t, lib.Remove(h))
	tv.Refresh()

	assert.Equal(t, "Note", currentName(t, tv))
}

func TestTreeViewView(t *testing.T) {
	t.Run("renders rows", func(t *testing.T) {
		tv := NewTreeView(newTestLibrary(t))
		out := tv.View(60, 10)

		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		assert.Contains(t, lines[0], iconExpanded)
		assert.Contains(t, lines[0], "HTML/")
		assert.Contains(t, out, "Bold")
		assert.Contains(t, out, "hello…")
		assert.NotContains(t, out, "world")
	})

	t.Run("scrolls to the cursor", func(t *testing.T) {
		tv := NewTreeView(newTestLibrary(t))
		tv.Bottom()
		out := tv.View(60, 2)
		assert.Contains(t, out, "Note")
		assert.NotContains(t, out, "HTML/")
	})

	t.Run("empty library", func(t *testing.T) {
		lib := library.New(settings.NewMemory("empty"), library.WithTemplate(nil))
		require.NoError(t, lib.Load(context.Background()))
		tv := NewTreeView(lib)
		assert.Contains(t, tv.View(40, 5), "The library is empty")
		_, ok := tv.Current()
		assert.False(t, ok)
	})
}
