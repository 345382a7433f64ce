package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipbook/pkg/clipbook/backup"
	"github.com/jamesainslie/clipbook/pkg/clipbook/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List library snapshots",
	Long: `List the snapshots taken before each save, newest first.

A snapshot holds the records the library had before it was overwritten,
so any earlier state can be inspected with "history show" and brought
back with "history restore".`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the clips in a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRestoreCmd = &cobra.Command{
	Use:   "restore [id]",
	Short: "Restore the library from a snapshot (default: the latest)",
	Long: `Replace the library with the records of a snapshot. The current state is
snapshotted first, so a restore can itself be undone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistoryRestore,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove snapshots older than the retention period",
	RunE:  runHistoryClean,
}

var (
	historyLimit int
	historyDays  int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of snapshots to list (0 for all)")
	historyCleanCmd.Flags().IntVar(&historyDays, "days", 0, "retention in days (default: backup.retention_days)")

	historyCmd.AddCommand(historyShowCmd, historyRestoreCmd, historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// historyManager returns the snapshot manager or explains why there is none.
func historyManager() (*backup.Manager, error) {
	m, err := backupManager()
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("backups are disabled (set backup.enabled to true)")
	}
	return m, nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	m, err := historyManager()
	if err != nil {
		return err
	}
	snaps, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}

	if len(snaps) == 0 {
		printInfo(cmd, "No snapshots yet. One is taken every time the library is saved.")
		return nil
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("ID", "TAKEN", "CLIPS", "LIBRARY")
	for _, snap := range snaps {
		table.AddRow(snap.ID, humanize.Time(snap.Timestamp), humanize.Comma(int64(snap.Count)), snap.Location)
	}
	fmt.Fprintln(cmd.OutOrStdout(), table)
	printInfo(cmd, "\nUse 'clipbook history show <id>' to see a snapshot's clips.")
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	m, err := historyManager()
	if err != nil {
		return err
	}
	snap, err := m.Get(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:       %s\n", snap.ID)
	fmt.Fprintf(out, "Taken:    %s (%s)\n", snap.Timestamp.Format("2006-01-02 15:04:05 MST"), humanize.Time(snap.Timestamp))
	fmt.Fprintf(out, "Library:  %s\n", snap.Location)
	fmt.Fprintf(out, "Records:  %d\n", snap.Count)
	if len(snap.Records) == 0 {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, r := range snap.Records {
		if r.Text == "" {
			fmt.Fprintln(out, r.Name)
			continue
		}
		fmt.Fprintf(out, "%s  %s\n", r.Name, output.Preview(r.Text, 40))
	}
	return nil
}

func runHistoryRestore(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		b := s.lib.Backups()
		if b == nil {
			return errors.New("backups are disabled (set backup.enabled to true)")
		}

		var id string
		if len(args) == 1 {
			id = args[0]
		} else {
			latest, err := b.Latest()
			if err != nil {
				return err
			}
			id = latest.ID
		}

		if err := s.lib.Restore(ctx, id); err != nil {
			return err
		}
		printInfo(cmd, "Restored %s from %s", s.store.Location(), id)
		return nil
	})
}

func runHistoryClean(cmd *cobra.Command, _ []string) error {
	m, err := historyManager()
	if err != nil {
		return err
	}
	days := historyDays
	if days <= 0 {
		days = cfg.Backup.RetentionDays
	}
	n, err := m.Cleanup(days)
	if err != nil {
		return fmt.Errorf("cleaning snapshots: %w", err)
	}
	printInfo(cmd, "Removed %d snapshots older than %d days", n, days)
	return nil
}
