package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipbook/pkg/clipbook/backup"
	"github.com/jamesainslie/clipbook/pkg/clipbook/library"
	"github.com/jamesainslie/clipbook/pkg/clipbook/logging"
	"github.com/jamesainslie/clipbook/pkg/clipbook/notify"
	"github.com/jamesainslie/clipbook/pkg/clipbook/settings"
	"github.com/jamesainslie/clipbook/pkg/clipbook/tree"
)

// session is an open library and the resources behind it.
type session struct {
	lib   *library.Library
	store settings.Store
}

// detectBackend guesses the backend for a location that may not exist yet.
func detectBackend(location string) string {
	return settings.Detect(location)
}

// backupManager returns the snapshot manager, or nil when backups are off.
func backupManager() (*backup.Manager, error) {
	if !cfg.Backup.Enabled {
		return nil, nil
	}
	m, err := backup.New(cfg.Backup.Path)
	if err != nil {
		return nil, fmt.Errorf("opening backups: %w", err)
	}
	return m, nil
}

// openSession opens and loads the configured library.
func openSession(ctx context.Context, opts ...library.Option) (*session, error) {
	store, err := settings.Open(cfg.Library.Backend, cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("opening library %s: %w", cfg.Library.Path, err)
	}

	if cfg.Library.Examples != "" {
		tmpl, err := library.TemplateFromFile(cfg.Library.Examples)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		opts = append(opts, library.WithTemplate(tmpl))
	}

	backups, err := backupManager()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if backups != nil {
		opts = append(opts, library.WithBackups(backups))
	}

	lib := library.New(store, opts...)
	if err := lib.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return &session{lib: lib, store: store}, nil
}

// save writes the library back to its store and prunes old snapshots.
func (s *session) save(ctx context.Context) error {
	if msg := s.lib.Save(ctx, nil, nil); msg != "" {
		return errors.New(msg)
	}
	if b := s.lib.Backups(); b != nil && cfg.Backup.RetentionDays > 0 {
		if n, err := b.Cleanup(cfg.Backup.RetentionDays); err != nil {
			logging.Get("cli").Warn("backup cleanup failed", "error", err)
		} else if n > 0 {
			logging.Get("cli").Debug("old backups removed", "count", n)
		}
	}
	return nil
}

func (s *session) close() {
	if err := s.store.Close(); err != nil {
		logging.Get("cli").Warn("closing library", "error", err)
	}
}

// resolve finds the node for a path argument. "/" and "" name the root.
func (s *session) resolve(path string) (tree.Handle, error) {
	if strings.Trim(path, "/ ") == "" {
		return s.lib.Root(), nil
	}
	return s.lib.MustResolve(path)
}

// resolveGroup resolves path and requires a group.
func (s *session) resolveGroup(path string) (tree.Handle, error) {
	h, err := s.resolve(path)
	if err != nil {
		return tree.Handle{}, err
	}
	e, err := s.lib.Entry(h)
	if err != nil {
		return tree.Handle{}, err
	}
	if !h.IsRoot() && !e.IsGroup {
		return tree.Handle{}, fmt.Errorf("%q is a clip, not a group", path)
	}
	return h, nil
}

// withSession opens the library, runs fn and closes the library.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error, opts ...library.Option) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, opts...)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}

// describe returns a one-line summary of an event for the user.
func describe(ev notify.Event) string {
	switch ev.Type {
	case notify.EventRenamed:
		return fmt.Sprintf("renamed %s -> %s", ev.OldFullName, ev.FullName)
	case notify.EventMoved:
		dest := ev.FullName
		if dest == "" {
			dest = "/"
		}
		return fmt.Sprintf("moved %d into %s", ev.Count, dest)
	case notify.EventReloaded, notify.EventSaved:
		return fmt.Sprintf("%s (%d entries)", ev.Type, ev.Count)
	default:
		return fmt.Sprintf("%s %s", ev.Type, ev.FullName)
	}
}
