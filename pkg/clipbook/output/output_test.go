package output_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/clipbook/pkg/clipbook/output"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

func sampleResult() *output.Result {
	return &output.Result{
		Source: "/home/user/clips.yaml",
		Entries: []types.Entry{
			{Name: "HTML", FullName: "HTML/", IsGroup: true},
			{Name: "Bold", FullName: "HTML/Bold", Text: "<b>\\1</b>"},
			{Name: "List", FullName: "HTML/List", Text: "<ul>\n\t<li>|</li>\n</ul>"},
			{Name: "Scratch", FullName: "Scratch/", IsGroup: true},
		},
		Total:    6,
		Warnings: []string{"something odd"},
	}
}

func format(t *testing.T, name string, r *output.Result) string {
	t.Helper()
	f, err := output.Get(name)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, r))
	return buf.String()
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "markdown", "plain", "table", "template", "toml", "tree", "tsv", "yaml"}, output.Available())

	_, err := output.Get("xml")
	assert.Error(t, err)

	r := output.NewRegistry()
	r.Register("x", func() output.Formatter { return &output.PlainFormatter{} })
	assert.Equal(t, []string{"x"}, r.Available())
}

func TestResultCounts(t *testing.T) {
	r := sampleResult()
	leaves, groups := r.Counts()
	assert.Equal(t, 2, leaves)
	assert.Equal(t, 2, groups)
	assert.Equal(t, int64(len("<b>\\1</b>")+len("<ul>\n\t<li>|</li>\n</ul>")), r.TextSize())
}

func TestPreview(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want string
	}{
		{text: "short", n: 10, want: "short"},
		{text: "exactly", n: 7, want: "exactly"},
		{text: "truncated text", n: 5, want: "trunc…"},
		{text: "first\nsecond", n: 0, want: "first…"},
		{text: "trailing newline\n", n: 0, want: "trailing newline"},
		{text: "ünïcödé", n: 3, want: "ünï…"},
		{text: "", n: 5, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, output.Preview(tt.text, tt.n))
		})
	}
}

func TestTreeFormatter(t *testing.T) {
	out := format(t, "tree", sampleResult())

	assert.Contains(t, out, "/home/user/clips.yaml")
	assert.Contains(t, out, "HTML/")
	assert.Contains(t, out, "  • Bold")
	assert.Contains(t, out, "<ul>…")
	assert.NotContains(t, out, "<li>")
	assert.Contains(t, out, "2 clips in 2 groups")
	assert.Contains(t, out, "showing 4 of 6")
	assert.Contains(t, out, "warning: something odd")

	empty := format(t, "tree", &output.Result{Source: "x"})
	assert.Contains(t, empty, "(no entries)")
}

func TestPlainFormatter(t *testing.T) {
	out := format(t, "plain", sampleResult())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[3], `<ul>\n\t<li>|</li>\n</ul>`)
}

func TestDelimitedFormatters(t *testing.T) {
	t.Run("tsv", func(t *testing.T) {
		out := format(t, "tsv", sampleResult())
		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "KIND\tNAME\tTEXT", lines[0])
		assert.Equal(t, "group\tHTML/\t", lines[1])
		assert.Equal(t, "clip\tHTML/Bold\t<b>\\\\1</b>", lines[2])
	})

	t.Run("csv keeps payloads intact", func(t *testing.T) {
		out := format(t, "csv", sampleResult())
		rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, []string{"clip", "HTML/List", "<ul>\n\t<li>|</li>\n</ul>"}, rows[3])
	})

	t.Run("markdown escapes pipes", func(t *testing.T) {
		out := format(t, "markdown", sampleResult())
		assert.Contains(t, out, "| KIND | NAME | TEXT |")
		assert.Contains(t, out, `<li>\|</li>`)
	})

	t.Run("table", func(t *testing.T) {
		out := format(t, "table", sampleResult())
		assert.Contains(t, out, "KIND")
		assert.Contains(t, out, "HTML/Bold")
		assert.Contains(t, out, "<ul>…")
	})
}

func TestStructuredFormatters(t *testing.T) {
	type entry struct {
		FullName string `json:"fullname" yaml:"fullname" toml:"fullname"`
		Kind     string `json:"kind" yaml:"kind" toml:"kind"`
		Depth    int    `json:"depth" yaml:"depth" toml:"depth"`
		Text     string `json:"text" yaml:"text" toml:"text"`
	}
	type doc struct {
		Entries []entry `json:"entries" yaml:"entries" toml:"entries"`
		Meta    struct {
			Source string `json:"source" yaml:"source" toml:"source"`
			Total  int    `json:"total" yaml:"total" toml:"total"`
			Clips  int    `json:"clips" yaml:"clips" toml:"clips"`
		} `json:"meta" yaml:"meta" toml:"meta"`
	}

	decoders := map[string]func([]byte, any) error{
		"json": json.Unmarshal,
		"yaml": yaml.Unmarshal,
		"toml": toml.Unmarshal,
	}
	for name, decode := range decoders {
		t.Run(name, func(t *testing.T) {
			var got doc
			require.NoError(t, decode([]byte(format(t, name, sampleResult())), &got))

			require.Len(t, got.Entries, 4)
			assert.Equal(t, entry{FullName: "HTML/", Kind: "group"}, got.Entries[0])
			assert.Equal(t, entry{FullName: "HTML/List", Kind: "clip", Depth: 1, Text: "<ul>\n\t<li>|</li>\n</ul>"}, got.Entries[2])
			assert.Equal(t, "/home/user/clips.yaml", got.Meta.Source)
			assert.Equal(t, 6, got.Meta.Total)
			assert.Equal(t, 2, got.Meta.Clips)
		})
	}
}

func TestTemplateFormatter(t *testing.T) {
	assert.Equal(t, "HTML/\nHTML/Bold\nHTML/List\nScratch/\n", format(t, "template", sampleResult()))

	f := output.NewTemplateFormatter(`{{range .Entries}}{{if not .IsGroup}}{{indent .Entry.Depth}}{{end}}{{end}}`)
	var buf bytes.Buffer
	assert.Error(t, f.Format(&buf, sampleResult()))

	f.SetTemplate(`{{comma .Clips}} clips, {{bytes .TextSize}}{{range .Entries}}|{{preview .Text 4}}{{end}}`)
	buf.Reset()
	require.NoError(t, f.Format(&buf, sampleResult()))
	assert.Equal(t, "2 clips, 31 B||<b>\\…|<ul>…|", buf.String())

	f.SetTemplate(`{{range .Entries}}{{indent .Depth}}{{.Name}};{{end}}{{escape "a\nb"}}`)
	buf.Reset()
	require.NoError(t, f.Format(&buf, sampleResult()))
	assert.Equal(t, `HTML;  Bold;  List;Scratch;a\nb`, buf.String())
}
