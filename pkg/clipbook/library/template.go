package library

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/jamesainslie/clipbook/pkg/clipbook/settings"
)

//go:embed clip_examples.yaml
var exampleTemplate []byte

// DefaultTemplate returns the bundled example entries as a read-only store.
func DefaultTemplate() (settings.Store, error) {
	return TemplateFromBytes("builtin:clip_examples.yaml", settings.FormatYAML, exampleTemplate)
}

// TemplateFromBytes decodes a record file into a read-only store.
func TemplateFromBytes(location string, format settings.Format, data []byte) (settings.Store, error) {
	groups, err := settings.DecodeGroups(format, data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", location, err)
	}
	return settings.NewReadOnlyMemory(location, groups), nil
}

// TemplateFromFile loads a record file from disk as a template store.
func TemplateFromFile(path string) (settings.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return TemplateFromBytes(path, settings.FormatFor(path), data)
}
