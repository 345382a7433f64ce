package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipbook/pkg/clipbook/move"
	"github.com/jamesainslie/clipbook/pkg/clipbook/tree"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

var addCmd = &cobra.Command{
	Use:   "add <path> [text]",
	Short: "Add a clip",
	Long: `Add a clip at path, creating any missing groups.

The text comes from the second argument or, with --stdin, from standard
input. Adding to an existing clip fails unless --replace is given.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAdd,
}

var mkgroupCmd = &cobra.Command{
	Use:   "mkgroup <path>",
	Short: "Create a group and any missing parents",
	Args:  cobra.ExactArgs(1),
	RunE:  runMkgroup,
}

var renameCmd = &cobra.Command{
	Use:   "rename <path> <name>",
	Short: "Rename a clip or group",
	Long: `Give a clip or group a new name in place. Children of a renamed group
follow it. Only the last segment of name is used, so "a/b" renames to "b".`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

var rmCmd = &cobra.Command{
	Use:     "rm <path>...",
	Aliases: []string{"remove"},
	Short:   "Remove clips or groups with everything inside them",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRm,
}

var mvCmd = &cobra.Command{
	Use:   "mv <path>... --to <group>",
	Short: "Move clips and groups into another group",
	Long: `Move clips and groups under the group named by --to, keeping their
names. Groups carry their contents. A clip given as --to means "next to
that clip". --row places the moved entries at that position among the
target's children.

A selection that names both a group and something inside it, or a target
inside a moved group, is rejected and nothing changes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMv,
}

var (
	addStdin   bool
	addReplace bool
	mvTo       string
	mvRow      int
)

func init() {
	addCmd.Flags().BoolVar(&addStdin, "stdin", false, "read the text from standard input")
	addCmd.Flags().BoolVar(&addReplace, "replace", false, "replace the text of an existing clip")
	mvCmd.Flags().StringVarP(&mvTo, "to", "t", "", "destination group (\"/\" for the top level)")
	mvCmd.Flags().IntVar(&mvRow, "row", -1, "position among the destination's children (-1 appends)")
	_ = mvCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(addCmd, mkgroupCmd, renameCmd, rmCmd, mvCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	text := ""
	switch {
	case addStdin && len(args) == 2:
		return errors.New("give the text as an argument or with --stdin, not both")
	case addStdin:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	case len(args) == 2:
		text = args[1]
	}

	path := strings.TrimSuffix(types.NormalizeFullName(args[0]), types.Separator)
	return withSession(cmd, func(ctx context.Context, s *session) error {
		if h, ok := s.lib.Resolve(path); ok {
			e, _ := s.lib.Entry(h)
			if !e.IsGroup {
				if !addReplace {
					return fmt.Errorf("clip %q already exists (use --replace)", e.FullName)
				}
				if err := s.lib.SetText(h, text); err != nil {
					return err
				}
				printInfo(cmd, "Updated %s", e.FullName)
				return s.save(ctx)
			}
		}

		h, err := s.lib.AddEntry(s.lib.Root(), -1, path, text)
		if err != nil {
			return err
		}
		e, _ := s.lib.Entry(h)
		printInfo(cmd, "Added %s", e.FullName)
		return s.save(ctx)
	})
}

func runMkgroup(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		h, err := s.lib.AddGroup(s.lib.Root(), -1, args[0])
		if err != nil {
			return err
		}
		e, _ := s.lib.Entry(h)
		printInfo(cmd, "Group %s", e.FullName)
		return s.save(ctx)
	})
}

func runRename(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		h, err := s.lib.MustResolve(args[0])
		if err != nil {
			return err
		}
		before, _ := s.lib.Entry(h)
		ok, err := s.lib.EditName(h, args[1])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%q is not a usable name", args[1])
		}
		after, _ := s.lib.Entry(h)
		printInfo(cmd, "Renamed %s to %s", before.FullName, after.FullName)
		return s.save(ctx)
	})
}

func runRm(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		// Resolve everything first so a typo removes nothing.
		handles := make([]tree.Handle, 0, len(args))
		for _, path := range args {
			h, err := s.lib.MustResolve(path)
			if err != nil {
				return err
			}
			handles = append(handles, h)
		}

		for _, h := range handles {
			e, err := s.lib.Entry(h)
			if errors.Is(err, tree.ErrStaleHandle) {
				continue // inside a group removed earlier
			}
			if err != nil {
				return err
			}
			if err := s.lib.Remove(h); err != nil {
				return err
			}
			printInfo(cmd, "Removed %s", e.FullName)
		}
		return s.save(ctx)
	})
}

func runMv(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		target, err := s.resolve(mvTo)
		if err != nil {
			return err
		}

		var p move.Payload
		for _, path := range args {
			h, err := s.lib.MustResolve(path)
			if err != nil {
				return err
			}
			p.Items = append(p.Items, h)
		}

		ok, err := s.lib.Move(p, target, mvRow)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("nothing moved: the selection overlaps itself or the target is inside a moved group")
		}

		dest := mvTo
		if strings.Trim(dest, "/ ") == "" {
			dest = "/"
		}
		printInfo(cmd, "Moved %d into %s", len(p.Items), dest)
		return s.save(ctx)
	})
}
