// Package types provides the core value types of the clip library: entries,
// persisted records, and helpers for normalising hierarchical names.
package types

import "strings"

// Separator delimits the segments of a hierarchical clip name.
// A trailing separator marks a group.
const Separator = "/"

// Entry is the value view of a single node in the clip tree.
type Entry struct {
	// Name is the display name, a single path segment.
	Name string `json:"name" yaml:"name" toml:"name"`

	// FullName is the path from the root to this node.
	// Groups carry a trailing separator, leaves do not.
	FullName string `json:"fullname" yaml:"fullname" toml:"fullname"`

	// Text is the opaque payload. Always empty for groups.
	Text string `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`

	// IsGroup reports whether the node is a container.
	IsGroup bool `json:"is_group" yaml:"is_group" toml:"is_group"`
}

// Record returns the persisted form of the entry.
// Groups keep their trailing separator and drop any text.
func (e Entry) Record() Record {
	if e.IsGroup {
		return Record{Name: e.FullName}
	}
	return Record{Name: e.FullName, Text: e.Text}
}

// Depth returns the number of ancestors between the entry and the root.
// Top-level entries have depth 0.
func (e Entry) Depth() int {
	return strings.Count(strings.TrimSuffix(e.FullName, Separator), Separator)
}

// ParentPath returns the full name of the entry's parent group,
// or an empty string for top-level entries.
func (e Entry) ParentPath() string {
	trimmed := strings.TrimSuffix(e.FullName, Separator)
	idx := strings.LastIndex(trimmed, Separator)
	if idx < 0 {
		return ""
	}
	return trimmed[:idx+1]
}

// Record is one element of the flat, ordered record array a clip library
// is persisted as. Its index is implicit in its position.
type Record struct {
	// Name is the full hierarchical path. A trailing separator marks a group.
	Name string `json:"Name" yaml:"Name" toml:"Name"`

	// Text is the payload. Ignored for groups.
	Text string `json:"Text,omitempty" yaml:"Text,omitempty" toml:"Text,omitempty"`
}

// IsGroup reports whether the record describes a group.
func (r Record) IsGroup() bool {
	return strings.HasSuffix(r.Name, Separator)
}
