package output

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"github.com/dustin/go-humanize"
)

// TemplateFormatter formats output with a text/template.
type TemplateFormatter struct {
	templateStr string
	template    *template.Template
	mu          sync.Mutex
}

// templateData wraps Result to add computed fields.
type templateData struct {
	*Result
	Clips    int
	Groups   int
	TextSize int64
}

// NewTemplateFormatter creates a template formatter with the given template.
func NewTemplateFormatter(templateStr string) *TemplateFormatter {
	return &TemplateFormatter{templateStr: templateStr}
}

// SetTemplate sets or updates the template string.
func (f *TemplateFormatter) SetTemplate(templateStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templateStr = templateStr
	f.template = nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// {{bytes .TextSize}}
		"bytes": func(n int64) string { return humanize.IBytes(uint64(n)) },
		// {{comma .Clips}}
		"comma": func(n int) string { return humanize.Comma(int64(n)) },
		// {{preview .Text 20}}
		"preview": Preview,
		// {{indent .Depth}}
		"indent": func(depth int) string { return strings.Repeat("  ", depth) },
		// {{escape .Text}}
		"escape": escapeText,
	}
}

// Format writes the formatted output to the buffer.
func (f *TemplateFormatter) Format(w *bytes.Buffer, r *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.template == nil {
		tmpl, err := template.New("output").Funcs(templateFuncs()).Parse(f.templateStr)
		if err != nil {
			return err
		}
		f.template = tmpl
	}

	leaves, groups := r.Counts()
	return f.template.Execute(w, templateData{
		Result:   r,
		Clips:    leaves,
		Groups:   groups,
		TextSize: r.TextSize(),
	})
}

// defaultTemplate prints one full name per line.
const defaultTemplate = `{{range .Entries}}{{.FullName}}
{{end}}`

func init() {
	Register("template", func() Formatter {
		return NewTemplateFormatter(defaultTemplate)
	})
}

var _ Formatter = (*TemplateFormatter)(nil)
