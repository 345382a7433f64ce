package output

import (
	"bytes"
	"text/tabwriter"
)

// PlainFormatter prints an aligned two-column table without styling, for
// scripting and piping.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("NAME\tTEXT\n")); err != nil {
		return err
	}
	for _, e := range r.Entries {
		if _, err := tw.Write([]byte(e.FullName + "\t" + escapeText(e.Text) + "\n")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

var _ Formatter = (*PlainFormatter)(nil)
