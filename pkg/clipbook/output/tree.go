package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// previewWidth is how much of a payload the tree view shows.
const previewWidth = 48

// TreeFormatter prints entries indented by depth with lipgloss styling.
type TreeFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TreeFormatter) Format(w *bytes.Buffer, r *Result) error {
	header := LabelStyle.Render("Library:") + " " + ValueStyle.Render(r.Source)
	w.WriteString(HeaderBox.Render(header))
	w.WriteString("\n")

	if len(r.Entries) == 0 {
		w.WriteString(LabelStyle.Render("  (no entries)"))
		w.WriteString("\n")
	}

	for _, e := range r.Entries {
		indent := strings.Repeat("  ", e.Depth())
		if e.IsGroup {
			fmt.Fprintf(w, "%s%s %s\n", indent, BranchStyle.Render("▸"), GroupStyle.Render(e.Name+"/"))
			continue
		}
		line := fmt.Sprintf("%s%s %s", indent, BranchStyle.Render("•"), ClipStyle.Render(e.Name))
		if p := Preview(e.Text, previewWidth); p != "" {
			line += "  " + PreviewStyle.Render(p)
		}
		w.WriteString(line)
		w.WriteString("\n")
	}

	leaves, groups := r.Counts()
	summary := fmt.Sprintf("%s clips in %s groups, %s of text",
		humanize.Comma(int64(leaves)), humanize.Comma(int64(groups)), humanize.IBytes(uint64(r.TextSize())))
	if r.Total > len(r.Entries) {
		summary += fmt.Sprintf(" (showing %d of %d)", len(r.Entries), r.Total)
	}
	w.WriteString(FooterBox.Render(summary))
	w.WriteString("\n")

	for _, warning := range r.Warnings {
		w.WriteString(WarningStyle.Render("warning: " + warning))
		w.WriteString("\n")
	}
	return nil
}

func init() {
	Register("tree", func() Formatter {
		return &TreeFormatter{}
	})
}

var _ Formatter = (*TreeFormatter)(nil)
