package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/clipbook/pkg/clipbook/library"
	"github.com/jamesainslie/clipbook/pkg/clipbook/settings"
)

func keys(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds key presses to m and returns the resulting model and the last
// command.
func press(t *testing.T, m Model, presses ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range presses {
		var next tea.Model
		next, cmd = m.Update(k)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m, cmd
}

func newTestModel(t *testing.T) (Model, *library.Library) {
	t.Helper()
	lib := newTestLibrary(t)
	return NewModel(context.Background(), lib), lib
}

func TestModelDrop(t *testing.T) {
	t.Run("moves marked entries into the group under the cursor", func(t *testing.T) {
		m, lib := newTestModel(t)

		m, _ = press(t, m, keys("G"), keys(" "), keys("k"), keys("p"))

		_, ok := lib.Resolve("Scratch/Note")
		assert.True(t, ok)
		_, ok = lib.Resolve("Note")
		assert.False(t, ok)
		assert.True(t, m.dirty)
		assert.False(t, m.statusErr)
		assert.Equal(t, "Moved 1 into Scratch/", m.status)
		assert.Empty(t, m.tv.Marked())
	})

	t.Run("a clip target drops next to it", func(t *testing.T) {
		m, lib := newTestModel(t)

		m, _ = press(t, m, keys("G"), keys(" "), keys("g"), keys("j"), keys("p"))

		_, ok := lib.Resolve("HTML/Note")
		assert.True(t, ok)
		assert.Equal(t, "Moved 1 into HTML/", m.status)
	})

	t.Run("rejects a group together with its contents", func(t *testing.T) {
		m, lib := newTestModel(t)

		m, _ = press(t, m, keys(" "), keys(" "), keys("G"), keys("p"))

		assert.True(t, m.statusErr)
		assert.False(t, m.dirty)
		_, ok := lib.Resolve("HTML/Bold")
		assert.True(t, ok)
	})

	t.Run("nothing marked", func(t *testing.T) {
		m, _ := newTestModel(t)
		m, _ = press(t, m, keys("p"))
		assert.True(t, m.statusErr)
	})
}

func TestModelRename(t *testing.T) {
	m, lib := newTestModel(t)

	m, _ = press(t, m, keys("r"))
	assert.Equal(t, StateRename, m.state)
	assert.True(t, m.input.Focused())
	assert.Equal(t, "HTML", m.input.Value())

	t.Run("escape cancels", func(t *testing.T) {
		cancelled, _ := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, StateBrowse, cancelled.state)
		_, ok := lib.Resolve("HTML/Bold")
		assert.True(t, ok)
	})

	m.input.SetValue("Web")
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, StateBrowse, m.state)
	_, ok := lib.Resolve("Web/Lists/Item")
	assert.True(t, ok)
	assert.Equal(t, "Renamed to Web/", m.status)
	assert.True(t, m.dirty)

	t.Run("unusable name is reported", func(t *testing.T) {
		m, _ := press(t, m, keys("r"))
		m.input.SetValue("/")
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.True(t, m.statusErr)
		_, ok := lib.Resolve("Web/")
		assert.True(t, ok)
	})
}

func TestModelDelete(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		m, lib := newTestModel(t)
		m, _ = press(t, m, keys("d"))
		assert.Equal(t, StateConfirmDelete, m.state)

		m, _ = press(t, m, keys("y"))
		assert.Equal(t, StateBrowse, m.state)
		_, ok := lib.Resolve("HTML/Bold")
		assert.False(t, ok)
		assert.Equal(t, []string{"Scratch/", "Note"}, rowNames(m.tv))
	})

	t.Run("cancelled", func(t *testing.T) {
		m, lib := newTestModel(t)
		m, _ = press(t, m, keys("d"), keys("n"))
		assert.Equal(t, "Delete cancelled", m.status)
		assert.Equal(t, 6, lib.Len())
	})
}

func TestModelSave(t *testing.T) {
	m, lib := newTestModel(t)
	m, _ = press(t, m, keys("G"), keys("d"), keys("y"))
	require.True(t, m.dirty)

	m, cmd := press(t, m, keys("s"))
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)

	assert.False(t, m.dirty)
	assert.False(t, m.statusErr)

	records, err := lib.Store().ReadArray(context.Background(), settings.ClipEntriesGroup)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	t.Run("failure keeps the model dirty", func(t *testing.T) {
		m.dirty = true
		next, _ := m.Update(savedMsg("Unable to create file test"))
		m := next.(Model)
		assert.True(t, m.dirty)
		assert.True(t, m.statusErr)
	})
}

func TestModelQuit(t *testing.T) {
	t.Run("clean library quits at once", func(t *testing.T) {
		m, _ := newTestModel(t)
		_, cmd := press(t, m, keys("q"))
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
	})

	t.Run("modified library asks first", func(t *testing.T) {
		m, _ := newTestModel(t)
		m, _ = press(t, m, keys("d"), keys("y"), keys("q"))
		assert.Equal(t, StateConfirmQuit, m.state)

		back, cmd := press(t, m, keys("x"))
		assert.Equal(t, StateBrowse, back.state)
		assert.Nil(t, cmd)

		_, cmd = press(t, m, keys("y"))
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
	})
}

func TestModelView(t *testing.T) {
	m, _ := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 70, Height: 15})
	m = next.(Model)

	out := m.View()
	assert.Contains(t, out, "clipbook")
	assert.Contains(t, out, "test")
	assert.Contains(t, out, "HTML/")
	assert.Contains(t, out, "quit")
	assert.NotContains(t, out, "[modified]")

	m, _ = press(t, m, keys("d"))
	assert.Contains(t, m.View(), "Delete HTML/ and everything in it?")
}
