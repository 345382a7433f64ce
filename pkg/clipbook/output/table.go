package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
)

// TSVFormatter formats output as tab-separated values. Tabs and newlines in
// payloads are escaped.
type TSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString("KIND\tNAME\tTEXT\n")
	for _, e := range r.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", kind(e), e.FullName, escapeText(e.Text))
	}
	return nil
}

// CSVFormatter formats output as RFC 4180 comma-separated values.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"KIND", "NAME", "TEXT"}); err != nil {
		return err
	}
	for _, e := range r.Entries {
		if err := writer.Write([]string{kind(e), e.FullName, e.Text}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// MarkdownFormatter formats output as a GitHub-flavored Markdown table.
type MarkdownFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *MarkdownFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString("| KIND | NAME | TEXT |\n")
	w.WriteString("|------|------|------|\n")
	for _, e := range r.Entries {
		fmt.Fprintf(w, "| %s | %s | %s |\n",
			kind(e), escapeMarkdown(e.FullName), escapeMarkdown(escapeText(e.Text)))
	}
	return nil
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// TableFormatter prints a wrapped, aligned table.
type TableFormatter struct {
	// MaxColWidth wraps columns wider than this many cells.
	MaxColWidth uint
}

// Format writes the formatted output to the buffer.
func (f *TableFormatter) Format(w *bytes.Buffer, r *Result) error {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = f.MaxColWidth
	tbl.Wrap = true

	tbl.AddRow("KIND", "NAME", "TEXT")
	for _, e := range r.Entries {
		tbl.AddRow(kind(e), e.FullName, Preview(e.Text, 0))
	}

	w.WriteString(tbl.String())
	w.WriteString("\n")
	return nil
}

func init() {
	Register("tsv", func() Formatter { return &TSVFormatter{} })
	Register("csv", func() Formatter { return &CSVFormatter{} })
	Register("markdown", func() Formatter { return &MarkdownFormatter{} })
	Register("table", func() Formatter { return &TableFormatter{MaxColWidth: 60} })
}

var (
	_ Formatter = (*TSVFormatter)(nil)
	_ Formatter = (*CSVFormatter)(nil)
	_ Formatter = (*MarkdownFormatter)(nil)
	_ Formatter = (*TableFormatter)(nil)
)
