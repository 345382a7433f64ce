// Package output provides formatters for listing clip entries in various
// formats (tree, plain, json, yaml, toml, csv, table, etc.).
//
// Formatters are registered by name and selected at runtime:
//
//	formatter, err := output.Get("tree")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    return err
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// Result is the data handed to a formatter.
type Result struct {
	// Source is the location of the library the entries came from.
	Source string `json:"source" yaml:"source"`

	// Entries are the entries to print, in the order they are printed.
	Entries []types.Entry `json:"entries" yaml:"entries"`

	// Total is the number of nodes in the library before filtering.
	Total int `json:"total" yaml:"total"`

	// Warnings contains messages to show after the listing.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Counts returns the number of leaves and groups in the result.
func (r *Result) Counts() (leaves, groups int) {
	for _, e := range r.Entries {
		if e.IsGroup {
			groups++
		} else {
			leaves++
		}
	}
	return leaves, groups
}

// TextSize returns the combined payload length of the result in bytes.
func (r *Result) TextSize() int64 {
	var total int64
	for _, e := range r.Entries {
		total += int64(len(e.Text))
	}
	return total
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry, replacing any existing
// formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}

// kind returns "group" or "clip".
func kind(e types.Entry) string {
	if e.IsGroup {
		return "group"
	}
	return "clip"
}

// Preview returns the first line of text, cut to at most n runes. A cut or
// dropped line is marked with an ellipsis.
func Preview(text string, n int) string {
	line, rest, multi := strings.Cut(text, "\n")
	cut := multi && strings.TrimSpace(rest) != ""
	if n > 0 && utf8.RuneCountInString(line) > n {
		line = string([]rune(line)[:n])
		cut = true
	}
	if cut {
		line += "…"
	}
	return line
}

// escapeText makes a payload fit on one line.
func escapeText(s string) string {
	return strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\t", `\t`, "\r", `\r`).Replace(s)
}
