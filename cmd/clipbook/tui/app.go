package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/clipbook/pkg/clipbook/library"
	"github.com/jamesainslie/clipbook/pkg/clipbook/logging"
	"github.com/jamesainslie/clipbook/pkg/clipbook/move"
)

// AppState is what the keyboard currently drives.
type AppState int

const (
	StateBrowse AppState = iota
	StateRename
	StateConfirmDelete
	StateConfirmQuit
)

// Model is the Bubble Tea model for the library browser.
type Model struct {
	ctx    context.Context
	lib    *library.Library
	tv     *TreeView
	input  textinput.Model
	state  AppState
	logger *logging.Logger

	status    string
	statusErr bool
	dirty     bool

	width  int
	height int
}

// NewModel creates a browser for lib. The library must already be loaded.
func NewModel(ctx context.Context, lib *library.Library) Model {
	ti := textinput.New()
	ti.Prompt = "Rename: "
	ti.CharLimit = 256

	return Model{
		ctx:    ctx,
		lib:    lib,
		tv:     NewTreeView(lib),
		input:  ti,
		logger: logging.Get("tui"),
		width:  80,
		height: 24,
	}
}

// Run starts the browser on the alternate screen and blocks until it exits.
func Run(ctx context.Context, lib *library.Library) error {
	p := tea.NewProgram(NewModel(ctx, lib), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// savedMsg reports the outcome of a save; an empty message means success.
type savedMsg string

func (m Model) save() tea.Cmd {
	return func() tea.Msg {
		return savedMsg(m.lib.Save(m.ctx, nil, nil))
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-12, 10)
		return m, nil

	case savedMsg:
		if msg != "" {
			m.setError(string(msg))
			return m, nil
		}
		m.dirty = false
		m.setStatus("Saved to " + m.lib.Store().Location())
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateRename:
			return m.handleRenameKey(msg)
		case StateConfirmDelete:
			return m.handleDeleteKey(msg)
		case StateConfirmQuit:
			return m.handleQuitKey(msg)
		default:
			return m.handleBrowseKey(msg)
		}
	}
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.dirty {
			m.state = StateConfirmQuit
			return m, nil
		}
		return m, tea.Quit
	case "up", "k":
		m.tv.MoveUp()
	case "down", "j":
		m.tv.MoveDown()
	case "home", "g":
		m.tv.Top()
	case "end", "G":
		m.tv.Bottom()
	case "enter":
		m.tv.Toggle()
	case "right", "l":
		m.tv.Expand()
	case "left", "h":
		m.tv.Collapse()
	case " ":
		m.tv.ToggleMark()
		m.tv.MoveDown()
	case "esc":
		m.tv.ClearMarks()
	case "p":
		m.drop()
	case "r":
		if r, ok := m.tv.Current(); ok {
			m.input.SetValue(r.entry.Name)
			m.input.CursorEnd()
			m.state = StateRename
			cmd := m.input.Focus()
			return m, cmd
		}
	case "d":
		if _, ok := m.tv.Current(); ok {
			m.state = StateConfirmDelete
		}
	case "s":
		return m, m.save()
	}
	return m, nil
}

// drop moves the marked entries onto the cursor: into a group, or next to a
// clip.
func (m *Model) drop() {
	marked := m.tv.Marked()
	if len(marked) == 0 {
		m.setError("Nothing marked; mark entries with space first")
		return
	}
	target, ok := m.tv.Current()
	if !ok {
		return
	}

	moved, err := m.lib.Move(move.Payload{Items: marked}, target.handle, -1)
	switch {
	case err != nil:
		m.setError(err.Error())
	case !moved:
		m.setError("Cannot move a group into itself or together with its contents")
	default:
		m.dirty = true
		m.tv.ClearMarks()
		m.setStatus(fmt.Sprintf("Moved %d into %s", len(marked), dropLabel(target.entry.FullName, target.entry.IsGroup)))
	}
	m.tv.Refresh()
}

func dropLabel(fullName string, isGroup bool) string {
	if isGroup {
		return fullName
	}
	if i := strings.LastIndex(fullName, "/"); i >= 0 {
		return fullName[:i+1]
	}
	return "/"
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.state = StateBrowse
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.state = StateBrowse
		m.input.Blur()
		r, ok := m.tv.Current()
		if !ok {
			return m, nil
		}
		changed, err := m.lib.EditName(r.handle, m.input.Value())
		switch {
		case err != nil:
			m.setError(err.Error())
		case !changed:
			m.setError("Name left unchanged")
		default:
			m.dirty = true
			m.tv.Refresh()
			if cur, ok := m.tv.Current(); ok {
				m.setStatus("Renamed to " + cur.entry.FullName)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.state = StateBrowse
	if msg.String() != "y" && msg.String() != "Y" {
		m.setStatus("Delete cancelled")
		return m, nil
	}
	r, ok := m.tv.Current()
	if !ok {
		return m, nil
	}
	if err := m.lib.Remove(r.handle); err != nil {
		m.setError(err.Error())
		return m, nil
	}
	m.dirty = true
	m.tv.Refresh()
	m.setStatus("Removed " + r.entry.FullName)
	return m, nil
}

func (m Model) handleQuitKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "q":
		return m, tea.Quit
	case "s":
		m.state = StateBrowse
		return m, tea.Sequence(m.save(), tea.Quit)
	default:
		m.state = StateBrowse
		return m, nil
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.logger.Debug("tui error", "message", s)
	m.status = s
	m.statusErr = true
}

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder

	title := titleStyle.Render("clipbook")
	loc := mutedTextStyle.Render(m.lib.Store().Location())
	if m.dirty {
		loc += warningTextStyle.Render("  [modified]")
	}
	b.WriteString(title + "  " + loc + "\n")
	b.WriteString(renderDivider(m.width) + "\n")

	treeHeight := max(m.height-5, 1)
	b.WriteString(m.tv.View(m.width, treeHeight))

	b.WriteString(renderDivider(m.width) + "\n")
	b.WriteString(m.statusLine() + "\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) statusLine() string {
	switch m.state {
	case StateRename:
		return m.input.View()
	case StateConfirmDelete:
		r, _ := m.tv.Current()
		return warningTextStyle.Render(fmt.Sprintf("Delete %s and everything in it? (y/n)", r.entry.FullName))
	case StateConfirmQuit:
		return warningTextStyle.Render("Unsaved changes. Quit anyway? (y)es / (s)ave and quit / any other key cancels")
	}

	if m.status == "" {
		if n := len(m.tv.marked); n > 0 {
			return mutedTextStyle.Render(fmt.Sprintf("%d marked; move the cursor to a group and press p", n))
		}
		return ""
	}
	if m.statusErr {
		return errorTextStyle.Render(m.status)
	}
	return successTextStyle.Render(m.status)
}

func (m Model) footer() string {
	keys := []struct{ key, desc string }{
		{"↑↓", "move"},
		{"enter", "expand"},
		{"space", "mark"},
		{"p", "drop"},
		{"r", "rename"},
		{"d", "delete"},
		{"s", "save"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, keyStyle.Render(k.key)+" "+keyDescStyle.Render(k.desc))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, "  "))
}
