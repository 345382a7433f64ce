// Package filter selects, sorts, and limits clip entries for listing and
// export. Patterns are globs over full names with '/' as the separator.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// Kind restricts which kinds of node pass the filter.
type Kind int

const (
	// KindAll keeps groups and leaves.
	KindAll Kind = iota
	// KindLeaves keeps leaves only.
	KindLeaves
	// KindGroups keeps groups only.
	KindGroups
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindLeaves:
		return "leaves"
	case KindGroups:
		return "groups"
	default:
		return "all"
	}
}

// ErrInvalidKind indicates that the kind string could not be parsed.
var ErrInvalidKind = errors.New("invalid kind")

// ParseKind parses "all", "leaves" or "groups" (case-insensitive). The
// singular forms are accepted too.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return KindAll, nil
	case "leaves", "leaf", "clips", "clip":
		return KindLeaves, nil
	case "groups", "group":
		return KindGroups, nil
	default:
		return KindAll, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// SortField specifies the field to sort entries by.
type SortField int

const (
	// SortTree keeps depth-first tree order.
	SortTree SortField = iota
	// SortName sorts by full name.
	SortName
	// SortSize sorts by payload length.
	SortSize
)

// String returns the string representation of the sort field.
func (s SortField) String() string {
	switch s {
	case SortName:
		return "name"
	case SortSize:
		return "size"
	default:
		return "tree"
	}
}

// ErrInvalidSortField indicates that the sort field string could not be parsed.
var ErrInvalidSortField = errors.New("invalid sort field")

// ParseSortField parses "tree", "name" or "size" (case-insensitive).
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tree":
		return SortTree, nil
	case "name":
		return SortName, nil
	case "size":
		return SortSize, nil
	default:
		return SortTree, fmt.Errorf("%w: %q", ErrInvalidSortField, s)
	}
}

// ErrInvalidPattern indicates that a glob pattern could not be compiled.
var ErrInvalidPattern = errors.New("invalid pattern")
