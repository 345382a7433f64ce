package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jamesainslie/clipbook/pkg/clipbook/logging"
	"github.com/jamesainslie/clipbook/pkg/clipbook/tree"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print a clip's text or a group's contents",
	Long: `Print the text of a clip exactly as stored. For a group, print the names
of its direct children, groups first marked with a trailing "/".

With --render the text is rendered as Markdown for the terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var copyCmd = &cobra.Command{
	Use:     "copy <path>",
	Aliases: []string{"cp"},
	Short:   "Copy a clip's text to the clipboard",
	Long: `Copy a clip's text to the system clipboard. When no clipboard tool is
available the text is sent to the terminal as an OSC 52 sequence, which
most terminals also accept over SSH.`,
	Args: cobra.ExactArgs(1),
	RunE: runCopy,
}

var (
	showRender bool
	showWidth  int
)

// Replaced in tests.
var (
	clipboardWriteAll = clipboard.WriteAll
	osc52Output       io.Writer = os.Stderr
)

func init() {
	showCmd.Flags().BoolVar(&showRender, "render", false, "render the text as Markdown")
	showCmd.Flags().IntVar(&showWidth, "width", 0, "wrap width for --render (default: terminal width)")

	rootCmd.AddCommand(showCmd, copyCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(_ context.Context, s *session) error {
		h, err := s.resolve(args[0])
		if err != nil {
			return err
		}
		e, err := s.lib.Entry(h)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if h.IsRoot() || e.IsGroup {
			var children []types.Entry
			s.lib.View(func(t *tree.Tree) {
				handles, cerr := t.Children(h)
				if cerr != nil {
					err = cerr
					return
				}
				for _, c := range handles {
					if ce, err := t.Entry(c); err == nil {
						children = append(children, ce)
					}
				}
			})
			if err != nil {
				return err
			}
			for _, c := range children {
				name := c.Name
				if c.IsGroup {
					name += types.Separator
				}
				fmt.Fprintln(out, name)
			}
			return nil
		}

		if !showRender {
			_, err := io.WriteString(out, e.Text)
			if err == nil && e.Text != "" && !strings.HasSuffix(e.Text, "\n") {
				_, err = io.WriteString(out, "\n")
			}
			return err
		}

		rendered, err := renderMarkdown(e.Text, renderWidth())
		if err != nil {
			return fmt.Errorf("rendering %s: %w", e.FullName, err)
		}
		_, err = io.WriteString(out, rendered)
		return err
	})
}

// renderWidth returns --width, the terminal width, or 80.
func renderWidth() int {
	if showWidth > 0 {
		return showWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func renderMarkdown(text string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}

func runCopy(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(_ context.Context, s *session) error {
		h, err := s.lib.MustResolve(args[0])
		if err != nil {
			return err
		}
		e, err := s.lib.Entry(h)
		if err != nil {
			return err
		}
		if e.IsGroup {
			return fmt.Errorf("%s is a group; only clips can be copied", e.FullName)
		}

		if err := copyText(e.Text); err != nil {
			return err
		}
		printInfo(cmd, "Copied %s (%d bytes)", e.FullName, len(e.Text))
		return nil
	})
}

// copyText writes text to the system clipboard, falling back to OSC 52.
func copyText(text string) error {
	err := clipboardWriteAll(text)
	if err == nil {
		return nil
	}
	logging.Get("cli").Debug("system clipboard unavailable, using OSC 52", "error", err)

	if osc52Output == nil {
		return errors.New("no clipboard available")
	}
	if _, werr := osc52.New(text).WriteTo(osc52Output); werr != nil {
		return fmt.Errorf("copying to clipboard: %w", errors.Join(err, werr))
	}
	return nil
}
