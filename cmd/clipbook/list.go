package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipbook/pkg/clipbook/filter"
	"github.com/jamesainslie/clipbook/pkg/clipbook/output"
	"github.com/jamesainslie/clipbook/pkg/clipbook/tree"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

var listCmd = &cobra.Command{
	Use:     "list [group]",
	Aliases: []string{"ls"},
	Short:   "List clips and groups",
	Long: `List the library, or the part of it under a group.

Patterns are globs over full names: "*" stays inside one group and "**"
crosses groups. Groups match without their trailing "/".

Examples:
  clipbook list                          # Everything, as a tree
  clipbook list HTML/                    # Only what is inside HTML
  clipbook list --include 'HTML/**' -f json
  clipbook list --kind leaves --contains nbsp
  clipbook list -f template --template '{{range .Entries}}{{.FullName}}{{"\n"}}{{end}}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

// List flag variables.
var (
	listInclude  []string
	listExclude  []string
	listContains string
	listKind     string
	listDepth    int
	listSort     string
	listReverse  bool
	listLimit    int
	listTemplate string
)

func init() {
	f := listCmd.Flags()
	f.StringSliceVarP(&listInclude, "include", "i", nil, "only names matching these globs")
	f.StringSliceVarP(&listExclude, "exclude", "e", nil, "skip names matching these globs")
	f.StringVarP(&listContains, "contains", "c", "", "only entries whose name or text contains this")
	f.StringVarP(&listKind, "kind", "k", "all", "all, leaves or groups")
	f.IntVarP(&listDepth, "depth", "d", 0, "maximum depth below the listed group (0 = unlimited)")
	f.StringVar(&listSort, "sort", "tree", "tree, name or size")
	f.BoolVarP(&listReverse, "reverse", "r", false, "reverse the order")
	f.IntVarP(&listLimit, "limit", "n", 0, "maximum entries to show (0 = unlimited)")
	f.StringVar(&listTemplate, "template", "", "Go template for --format template")

	rootCmd.AddCommand(listCmd)
}

// buildFilter creates a filter from the list flags.
func buildFilter() (*filter.Filter, error) {
	kind, err := filter.ParseKind(listKind)
	if err != nil {
		return nil, err
	}
	sortBy, err := filter.ParseSortField(listSort)
	if err != nil {
		return nil, err
	}
	return filter.New(
		filter.WithInclude(listInclude...),
		filter.WithExclude(listExclude...),
		filter.WithContains(listContains),
		filter.WithKind(kind),
		filter.WithMaxDepth(listDepth),
		filter.WithSortBy(sortBy),
		filter.WithSortDescending(listReverse),
		filter.WithLimit(listLimit),
	), nil
}

// formatter returns the configured formatter.
func formatter() (output.Formatter, error) {
	name := cfg.Output.Format
	if listTemplate != "" && (name == "" || name == "template") {
		return output.NewTemplateFormatter(listTemplate), nil
	}
	f, err := output.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %v)", err, output.Available())
	}
	return f, nil
}

func runList(cmd *cobra.Command, args []string) error {
	flt, err := buildFilter()
	if err != nil {
		return err
	}
	fmtr, err := formatter()
	if err != nil {
		return err
	}

	return withSession(cmd, func(_ context.Context, s *session) error {
		base := s.lib.Root()
		if len(args) == 1 {
			if base, err = s.resolveGroup(args[0]); err != nil {
				return err
			}
		}

		entries, baseDepth := subtree(s, base)
		if flt.MaxDepth > 0 {
			// Depth is relative to the listed group.
			flt.MaxDepth += baseDepth
		}
		shown, err := flt.Apply(entries)
		if err != nil {
			return err
		}

		result := &output.Result{
			Source:  s.store.Location(),
			Entries: shown,
			Total:   len(entries),
		}
		var buf bytes.Buffer
		if err := fmtr.Format(&buf, result); err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	})
}

// subtree returns the entries below base in tree order and the depth of
// base's children.
func subtree(s *session, base tree.Handle) ([]types.Entry, int) {
	var entries []types.Entry
	depth := 0
	s.lib.View(func(t *tree.Tree) {
		if base.IsRoot() {
			entries = t.Flatten()
			return
		}
		_ = t.WalkFrom(base, func(h tree.Handle, e types.Entry) bool {
			if h != base {
				entries = append(entries, e)
			} else {
				depth = e.Depth() + 1
			}
			return true
		})
	})
	return entries, depth
}
