package output

import "github.com/charmbracelet/lipgloss"

// Colors from the ANSI 256-color palette.
const (
	ColorPrimary = lipgloss.Color("39")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorMuted   = lipgloss.Color("245")
)

var (
	// HeaderBox frames the library location.
	HeaderBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	// FooterBox frames the summary line.
	FooterBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1).
			MarginTop(1)
)

var (
	LabelStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	GroupStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	ClipStyle    = lipgloss.NewStyle().Foreground(ColorSuccess)
	PreviewStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	BranchStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)
