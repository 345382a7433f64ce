package filter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// Filter defines criteria for selecting entries.
type Filter struct {
	// Include contains glob patterns. If non-empty, entries must match at least one.
	Include []string

	// Exclude contains glob patterns. Matching entries are excluded.
	Exclude []string

	// Contains is a case-insensitive substring the name or text must contain.
	Contains string

	// Kind restricts the result to leaves or groups.
	Kind Kind

	// MaxDepth limits the depth of returned entries; top-level entries have
	// depth 1. 0 means unlimited.
	MaxDepth int

	// SortBy specifies the field to sort results by.
	SortBy SortField

	// SortDescending reverses the sort order.
	SortDescending bool

	// Limit is the maximum number of entries to return. 0 means unlimited.
	Limit int
}

// Option is a functional option for configuring a Filter.
type Option func(*Filter)

// New creates a Filter that passes everything in tree order.
func New(opts ...Option) *Filter {
	f := &Filter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithInclude sets the include glob patterns.
func WithInclude(patterns ...string) Option {
	return func(f *Filter) { f.Include = patterns }
}

// WithExclude sets the exclude glob patterns.
func WithExclude(patterns ...string) Option {
	return func(f *Filter) { f.Exclude = patterns }
}

// WithContains sets the substring filter.
func WithContains(s string) Option {
	return func(f *Filter) { f.Contains = s }
}

// WithKind sets the node kind filter.
func WithKind(k Kind) Option {
	return func(f *Filter) { f.Kind = k }
}

// WithMaxDepth sets the maximum depth. Negative values are set to 0.
func WithMaxDepth(depth int) Option {
	return func(f *Filter) { f.MaxDepth = max(depth, 0) }
}

// WithSortBy sets the field to sort results by.
func WithSortBy(field SortField) Option {
	return func(f *Filter) { f.SortBy = field }
}

// WithSortDescending sets whether to sort in descending order.
func WithSortDescending(desc bool) Option {
	return func(f *Filter) { f.SortDescending = desc }
}

// WithLimit sets the maximum number of entries to return. Negative values
// are set to 0 (unlimited).
func WithLimit(limit int) Option {
	return func(f *Filter) { f.Limit = max(limit, 0) }
}

// matcher is a Filter with its patterns compiled.
type matcher struct {
	*Filter
	include []glob.Glob
	exclude []glob.Glob
	needle  string
}

func compile(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(strings.TrimSuffix(p, types.Separator), '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func (f *Filter) compile() (*matcher, error) {
	include, err := compile(f.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compile(f.Exclude)
	if err != nil {
		return nil, err
	}
	return &matcher{
		Filter:  f,
		include: include,
		exclude: exclude,
		needle:  strings.ToLower(f.Contains),
	}, nil
}

// Match reports whether e passes every criterion.
func (f *Filter) Match(e types.Entry) (bool, error) {
	m, err := f.compile()
	if err != nil {
		return false, err
	}
	return m.match(e), nil
}

func (m *matcher) match(e types.Entry) bool {
	switch m.Kind {
	case KindLeaves:
		if e.IsGroup {
			return false
		}
	case KindGroups:
		if !e.IsGroup {
			return false
		}
	}

	if m.MaxDepth > 0 && e.Depth()+1 > m.MaxDepth {
		return false
	}

	if m.needle != "" &&
		!strings.Contains(strings.ToLower(e.FullName), m.needle) &&
		!strings.Contains(strings.ToLower(e.Text), m.needle) {
		return false
	}

	// Groups match their patterns without the trailing separator.
	name := strings.TrimSuffix(e.FullName, types.Separator)
	if anyMatch(m.exclude, name) {
		return false
	}
	return len(m.include) == 0 || anyMatch(m.include, name)
}

func anyMatch(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Sort returns a sorted copy of entries. SortTree keeps the given order, and
// ties keep their relative order.
func (f *Filter) Sort(entries []types.Entry) []types.Entry {
	sorted := slices.Clone(entries)
	if f.SortBy == SortTree {
		if f.SortDescending {
			slices.Reverse(sorted)
		}
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b types.Entry) int {
		var result int
		switch f.SortBy {
		case SortSize:
			result = cmp.Compare(len(a.Text), len(b.Text))
		default:
			result = cmp.Compare(a.FullName, b.FullName)
		}
		if f.SortDescending {
			return -result
		}
		return result
	})
	return sorted
}

// Apply runs Match, Sort and Limit over entries and returns a new slice.
func (f *Filter) Apply(entries []types.Entry) ([]types.Entry, error) {
	m, err := f.compile()
	if err != nil {
		return nil, err
	}

	matched := make([]types.Entry, 0, len(entries))
	for _, e := range entries {
		if m.match(e) {
			matched = append(matched, e)
		}
	}

	sorted := f.Sort(matched)
	if f.Limit > 0 && len(sorted) > f.Limit {
		return sorted[:f.Limit], nil
	}
	return sorted, nil
}
