package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipbook/cmd/clipbook/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse and rearrange the library interactively",
	Long: `Open the library in a full-screen browser.

Keys:
  ↑/↓ j/k     move            enter     expand or collapse a group
  →/l  ←/h    open / close    space     mark an entry
  p           move marked entries onto the cursor
  r           rename          d         delete
  s           save            q         quit
  esc         clear marks`,
	Annotations: map[string]string{ownsTerminal: "true"},
	RunE:        runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		return tui.Run(ctx, s.lib)
	})
}
