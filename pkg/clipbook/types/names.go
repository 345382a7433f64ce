package types

import (
	"regexp"
	"strings"
)

// separatorRun matches a run of separators together with surrounding whitespace.
var separatorRun = regexp.MustCompile(`\s*/+\s*`)

// NormalizeFullName cleans a persisted hierarchical name: runs of separators and
// the whitespace around them collapse into one separator, surrounding
// whitespace is trimmed and a single leading separator is removed. A trailing
// separator is kept, since it marks a group.
func NormalizeFullName(name string) string {
	name = separatorRun.ReplaceAllString(strings.TrimSpace(name), Separator)
	return strings.TrimPrefix(name, Separator)
}

// SplitHierarchicalName splits name on the separator, dropping empty segments.
// For groups every segment is a group segment and leaf is empty. Otherwise the
// last segment is returned as leaf and excluded from groups. A name made only of
// separators yields no segments at all.
func SplitHierarchicalName(name string, isGroup bool) (groups []string, leaf string) {
	for _, seg := range strings.Split(name, Separator) {
		if seg != "" {
			groups = append(groups, seg)
		}
	}
	if len(groups) == 0 || isGroup {
		return groups, ""
	}
	last := len(groups) - 1
	return groups[:last], groups[last]
}

// JoinFullName builds the full name of a child of the group whose full name is
// parent. The root has an empty full name.
func JoinFullName(parent, name string, isGroup bool) string {
	full := parent + name
	if isGroup {
		full += Separator
	}
	return full
}

// CorrectName applies the edit policy for display names. A single trailing
// separator is stripped, and if a separator remains only the final segment is
// kept. It returns false when nothing usable is left, in which case the caller
// keeps the previous name. Surrounding whitespace is trimmed, as a load would.
func CorrectName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if strings.Contains(name, Separator) {
		name = strings.TrimSuffix(name, Separator)
		if idx := strings.LastIndex(name, Separator); idx >= 0 {
			name = name[idx+1:]
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	return name, true
}
