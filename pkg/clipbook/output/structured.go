package output

import (
	"bytes"
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// document is the shape shared by the structured formatters.
type document struct {
	Entries []docEntry `json:"entries" yaml:"entries" toml:"entries"`
	Meta    docMeta    `json:"meta" yaml:"meta" toml:"meta"`
}

type docEntry struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	FullName string `json:"fullname" yaml:"fullname" toml:"fullname"`
	Kind     string `json:"kind" yaml:"kind" toml:"kind"`
	Depth    int    `json:"depth" yaml:"depth" toml:"depth"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`
}

type docMeta struct {
	Source   string   `json:"source" yaml:"source" toml:"source"`
	Shown    int      `json:"shown" yaml:"shown" toml:"shown"`
	Total    int      `json:"total" yaml:"total" toml:"total"`
	Clips    int      `json:"clips" yaml:"clips" toml:"clips"`
	Groups   int      `json:"groups" yaml:"groups" toml:"groups"`
	TextSize int64    `json:"text_size" yaml:"text_size" toml:"text_size"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty" toml:"warnings,omitempty"`
}

func buildDocument(r *Result) document {
	entries := make([]docEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, docEntry{
			Name:     e.Name,
			FullName: e.FullName,
			Kind:     kind(e),
			Depth:    e.Depth(),
			Text:     e.Text,
		})
	}
	leaves, groups := r.Counts()
	return document{
		Entries: entries,
		Meta: docMeta{
			Source:   r.Source,
			Shown:    len(r.Entries),
			Total:    r.Total,
			Clips:    leaves,
			Groups:   groups,
			TextSize: r.TextSize(),
			Warnings: r.Warnings,
		},
	}
}

// JSONFormatter formats output as a single indented JSON document.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildDocument(r))
}

// YAMLFormatter formats output as a YAML document.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(buildDocument(r)); err != nil {
		return err
	}
	return encoder.Close()
}

// TOMLFormatter formats output as a TOML document.
type TOMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TOMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := toml.NewEncoder(w)
	encoder.SetIndentTables(true)
	return encoder.Encode(buildDocument(r))
}

func init() {
	Register("json", func() Formatter { return &JSONFormatter{} })
	Register("yaml", func() Formatter { return &YAMLFormatter{} })
	Register("toml", func() Formatter { return &TOMLFormatter{} })
}

var (
	_ Formatter = (*JSONFormatter)(nil)
	_ Formatter = (*YAMLFormatter)(nil)
	_ Formatter = (*TOMLFormatter)(nil)
)
