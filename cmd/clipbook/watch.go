package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipbook/pkg/clipbook/library"
	"github.com/jamesainslie/clipbook/pkg/clipbook/logging"
	"github.com/jamesainslie/clipbook/pkg/clipbook/notify"
	"github.com/jamesainslie/clipbook/pkg/clipbook/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [prefix]",
	Short: "Reload the library whenever it changes on disk",
	Long: `Watch the library location and reload it after every change, printing
the resulting events. With a prefix only events for entries under that
path are printed. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before reloading")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := notify.New()
	defer n.Close()
	sub := n.Subscribe(prefix)

	s, err := openSession(ctx, library.WithNotifier(n))
	if err != nil {
		return err
	}
	defer s.close()

	w, err := watcher.New(watcher.WithDebounce(watchDebounce), watcher.WithLogger(logging.Get("watcher")))
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Watch(s.store.Location()); err != nil {
		return fmt.Errorf("watching %s: %w", s.store.Location(), err)
	}

	go w.Run(ctx, func(string) {
		if err := s.lib.Load(ctx); err != nil {
			printError(cmd.ErrOrStderr(), "reload failed: %v", err)
		}
	})

	printInfo(cmd, "Watching %s (Ctrl-C to stop)", s.store.Location())
	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Events:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "%s  %s\n", time.Now().Format("15:04:05"), describe(ev))
		}
	}
}
