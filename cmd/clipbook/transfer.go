package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipbook/pkg/clipbook/importer"
	"github.com/jamesainslie/clipbook/pkg/clipbook/settings"
	"github.com/jamesainslie/clipbook/pkg/clipbook/tree"
)

var importCmd = &cobra.Command{
	Use:   "import <file|dir>",
	Short: "Merge clips from another library or a directory of text files",
	Long: `Merge clips into the library without replacing what is already there.

A file or store is read as a clip library (its backend is detected from the
location). A directory of plain files is imported with one clip per file,
named by its path relative to the directory.

Examples:
  clipbook import team-clips.yaml --into Team/
  clipbook import ~/snippets --ext .html --ext .txt --exclude 'drafts/**'`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <file> [path...]",
	Short: "Write clips to another library file",
	Long: `Write the named clips and groups to a new library at file, replacing its
contents. Groups are written with everything inside them. Without paths the
whole library is exported. The file extension picks the format unless
--backend names another store.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

var (
	importInto      string
	importExt       []string
	importExclude   []string
	importKeepExt   bool
	importHidden    bool
	importAsLibrary bool
	exportBackend   string
)

func init() {
	importCmd.Flags().StringVar(&importInto, "into", "/", "group to merge into")
	importCmd.Flags().StringSliceVar(&importExt, "ext", nil, "only import files with these extensions (directories only)")
	importCmd.Flags().StringSliceVar(&importExclude, "exclude", nil, "glob patterns to skip (directories only)")
	importCmd.Flags().BoolVar(&importKeepExt, "keep-ext", false, "keep file extensions in clip names (directories only)")
	importCmd.Flags().BoolVar(&importHidden, "hidden", false, "include dot files (directories only)")
	importCmd.Flags().BoolVar(&importAsLibrary, "library", false, "read a directory as a badger or diskv library instead of text files")

	exportCmd.Flags().StringVar(&exportBackend, "to-backend", "", "backend for the export (default: detected from file)")

	rootCmd.AddCommand(importCmd, exportCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	src := args[0]
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		parent, err := s.resolve(importInto)
		if err != nil {
			return err
		}

		var n int
		if info.IsDir() && !importAsLibrary {
			n, err = importDirectory(ctx, cmd, s, src, parent)
		} else {
			n, err = importStore(ctx, s, src, parent)
		}
		if err != nil {
			return err
		}

		printInfo(cmd, "Imported %d entries from %s", n, src)
		if n == 0 {
			return nil
		}
		return s.save(ctx)
	})
}

func importDirectory(ctx context.Context, cmd *cobra.Command, s *session, dir string, parent tree.Handle) (int, error) {
	res, err := importer.Directory(ctx, dir, importer.Options{
		Extensions:    importExt,
		Exclude:       importExclude,
		KeepExtension: importKeepExt,
		IncludeHidden: importHidden,
	})
	if err != nil {
		return 0, err
	}
	for _, sk := range res.Skipped {
		printVerbose(cmd, "skipped %s: %s", sk.Path, sk.Reason)
	}
	if len(res.Skipped) > 0 {
		printInfo(cmd, "Skipped %d files (use --verbose for details)", len(res.Skipped))
	}
	return s.lib.MergeRecords(res.Records, parent)
}

func importStore(ctx context.Context, s *session, location string, parent tree.Handle) (int, error) {
	src, err := settings.Open(settings.Detect(location), location)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return s.lib.Merge(ctx, src, parent)
}

func runExport(cmd *cobra.Command, args []string) error {
	dest := args[0]
	backend := exportBackend
	if backend == "" {
		backend = settings.Detect(dest)
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		handles := make([]tree.Handle, 0, len(args)-1)
		for _, path := range args[1:] {
			h, err := s.resolve(path)
			if err != nil {
				return err
			}
			handles = append(handles, h)
		}

		if dest == s.store.Location() {
			return errors.New("refusing to export a library onto itself")
		}

		store, err := settings.Open(backend, dest)
		if err != nil {
			return fmt.Errorf("opening %s: %w", dest, err)
		}
		defer store.Close()

		if msg := s.lib.Export(ctx, handles, store); msg != "" {
			return errors.New(msg)
		}
		printInfo(cmd, "Exported to %s", dest)
		return nil
	})
}
