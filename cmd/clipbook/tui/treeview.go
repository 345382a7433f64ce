package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/clipbook/pkg/clipbook/library"
	"github.com/jamesainslie/clipbook/pkg/clipbook/output"
	"github.com/jamesainslie/clipbook/pkg/clipbook/tree"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// Tree view icons using Unicode symbols.
const (
	iconExpanded  = "▼" // Black down-pointing triangle
	iconCollapsed = "▶" // Black right-pointing triangle
	iconMarked    = "●" // Black circle (filled)
	iconUnmarked  = "○" // White circle (outline)
)

// row is one visible line of the tree.
type row struct {
	handle   tree.Handle
	entry    types.Entry
	children int
}

// TreeView displays the library as an expandable tree with a cursor and a
// set of marked entries. Expansion is remembered by full name so it survives
// reloads and moves; marks are handles and are dropped once they go stale.
type TreeView struct {
	lib       *library.Library
	rows      []row
	cursor    int
	offset    int
	collapsed map[string]bool
	marked    map[tree.Handle]bool
}

// NewTreeView creates a TreeView over lib with every group expanded.
func NewTreeView(lib *library.Library) *TreeView {
	tv := &TreeView{
		lib:       lib,
		collapsed: make(map[string]bool),
		marked:    make(map[tree.Handle]bool),
	}
	tv.Refresh()
	return tv
}

// Refresh rebuilds the visible rows from the library. The cursor stays on the
// same entry when it still exists.
func (tv *TreeView) Refresh() {
	current := ""
	if r, ok := tv.Current(); ok {
		current = r.entry.FullName
	}

	tv.rows = tv.rows[:0]
	tv.lib.View(func(t *tree.Tree) {
		t.Walk(func(h tree.Handle, e types.Entry) bool {
			tv.rows = append(tv.rows, row{handle: h, entry: e, children: t.ChildCount(h)})
			return !tv.collapsed[e.FullName]
		})
		for h := range tv.marked {
			if !t.Valid(h) {
				delete(tv.marked, h)
			}
		}
	})

	if current != "" {
		for i, r := range tv.rows {
			if r.entry.FullName == current {
				tv.cursor = i
				break
			}
		}
	}
	tv.clampCursor()
}

func (tv *TreeView) clampCursor() {
	if tv.cursor >= len(tv.rows) {
		tv.cursor = len(tv.rows) - 1
	}
	if tv.cursor < 0 {
		tv.cursor = 0
	}
}

// Len returns the number of visible rows.
func (tv *TreeView) Len() int { return len(tv.rows) }

// Cursor returns the cursor position.
func (tv *TreeView) Cursor() int { return tv.cursor }

// Current returns the row under the cursor.
func (tv *TreeView) Current() (row, bool) {
	if tv.cursor < 0 || tv.cursor >= len(tv.rows) {
		return row{}, false
	}
	return tv.rows[tv.cursor], true
}

// MoveUp moves the cursor up one position.
func (tv *TreeView) MoveUp() {
	if tv.cursor > 0 {
		tv.cursor--
	}
}

// MoveDown moves the cursor down one position.
func (tv *TreeView) MoveDown() {
	if tv.cursor < len(tv.rows)-1 {
		tv.cursor++
	}
}

// Top moves the cursor to the first row.
func (tv *TreeView) Top() { tv.cursor = 0 }

// Bottom moves the cursor to the last row.
func (tv *TreeView) Bottom() {
	tv.cursor = len(tv.rows) - 1
	tv.clampCursor()
}

// Toggle expands or collapses the group under the cursor.
func (tv *TreeView) Toggle() {
	r, ok := tv.Current()
	if !ok || !r.entry.IsGroup {
		return
	}
	name := r.entry.FullName
	tv.collapsed[name] = !tv.collapsed[name]
	tv.Refresh()
}

// Expand opens the group under the cursor.
func (tv *TreeView) Expand() {
	if r, ok := tv.Current(); ok && r.entry.IsGroup && tv.collapsed[r.entry.FullName] {
		delete(tv.collapsed, r.entry.FullName)
		tv.Refresh()
	}
}

// Collapse closes the group under the cursor, or moves to the parent group
// when the cursor is on a clip or an already collapsed group.
func (tv *TreeView) Collapse() {
	r, ok := tv.Current()
	if !ok {
		return
	}
	if r.entry.IsGroup && !tv.collapsed[r.entry.FullName] && r.children > 0 {
		tv.collapsed[r.entry.FullName] = true
		tv.Refresh()
		return
	}
	depth := r.entry.Depth()
	for i := tv.cursor - 1; i >= 0; i-- {
		if tv.rows[i].entry.Depth() < depth {
			tv.cursor = i
			return
		}
	}
}

// ToggleMark marks or unmarks the entry under the cursor.
func (tv *TreeView) ToggleMark() {
	r, ok := tv.Current()
	if !ok {
		return
	}
	if tv.marked[r.handle] {
		delete(tv.marked, r.handle)
	} else {
		tv.marked[r.handle] = true
	}
}

// Marked returns the marked handles in tree order, including marks hidden
// inside collapsed groups.
func (tv *TreeView) Marked() []tree.Handle {
	if len(tv.marked) == 0 {
		return nil
	}
	var out []tree.Handle
	tv.lib.View(func(t *tree.Tree) {
		t.Walk(func(h tree.Handle, _ types.Entry) bool {
			if tv.marked[h] {
				out = append(out, h)
			}
			return true
		})
	})
	return out
}

// ClearMarks removes all marks.
func (tv *TreeView) ClearMarks() {
	tv.marked = make(map[tree.Handle]bool)
}

// View renders the tree within the given dimensions.
func (tv *TreeView) View(width, height int) string {
	if len(tv.rows) == 0 {
		return center(mutedTextStyle.Render("The library is empty"), width) + "\n"
	}

	visible := max(height, 1)
	if tv.cursor < tv.offset {
		tv.offset = tv.cursor
	} else if tv.cursor >= tv.offset+visible {
		tv.offset = tv.cursor - visible + 1
	}
	tv.offset = max(tv.offset, 0)

	var b strings.Builder
	end := min(tv.offset+visible, len(tv.rows))
	for i := tv.offset; i < end; i++ {
		b.WriteString(tv.renderRow(tv.rows[i], width, i == tv.cursor))
		b.WriteString("\n")
	}
	for i := end - tv.offset; i < visible; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (tv *TreeView) renderRow(r row, width int, isCursor bool) string {
	indent := strings.Repeat("  ", r.entry.Depth())

	mark := iconUnmarked
	if tv.marked[r.handle] {
		mark = markedStyle.Render(iconMarked)
	}

	var name string
	switch {
	case r.entry.IsGroup && tv.collapsed[r.entry.FullName]:
		name = iconCollapsed + " " + groupNameStyle.Render(r.entry.Name+"/")
	case r.entry.IsGroup:
		name = iconExpanded + " " + groupNameStyle.Render(r.entry.Name+"/")
	default:
		name = "  " + r.entry.Name
	}

	line := indent + mark + " " + name
	if !r.entry.IsGroup {
		room := width - lipgloss.Width(line) - 3
		if room > 8 {
			line += "  " + previewStyle.Render(output.Preview(r.entry.Text, room))
		}
	}

	if isCursor {
		return rowHighlightStyle.Width(width).Render(line)
	}
	return rowNormalStyle.Width(width).Render(line)
}
