// Package library ties the clip tree to a settings store: it loads and saves
// record arrays, bootstraps empty libraries from a template, and exposes the
// editing operations used by the CLI and TUI.
package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jamesainslie/clipbook/pkg/clipbook/backup"
	"github.com/jamesainslie/clipbook/pkg/clipbook/logging"
	"github.com/jamesainslie/clipbook/pkg/clipbook/move"
	"github.com/jamesainslie/clipbook/pkg/clipbook/notify"
	"github.com/jamesainslie/clipbook/pkg/clipbook/settings"
	"github.com/jamesainslie/clipbook/pkg/clipbook/tree"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// Default names for entries added without one.
const (
	DefaultEntryName = "Text"
	DefaultGroupName = "Group"
)

// Library is one open clip library. All methods are safe for concurrent use;
// a single mutex serialises every operation on the tree.
type Library struct {
	mu sync.Mutex

	id       string
	group    string
	store    settings.Store
	template settings.Store
	tree     *tree.Tree
	engine   *move.Engine
	logger   *logging.Logger
	notifier *notify.Notifier
	backups  *backup.Manager
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

// WithNotifier sets the notifier change events are published to.
func WithNotifier(n *notify.Notifier) Option {
	return func(l *Library) { l.notifier = n }
}

// WithBackups snapshots the store's previous records before each save to it.
func WithBackups(m *backup.Manager) Option {
	return func(l *Library) { l.backups = m }
}

// WithTemplate sets the store the library is bootstrapped from when it loads
// empty. A nil store disables bootstrapping.
func WithTemplate(s settings.Store) Option {
	return func(l *Library) { l.template = s }
}

// WithGroup overrides the settings group records are stored under.
func WithGroup(group string) Option {
	return func(l *Library) { l.group = group }
}

// New creates a library persisted to store. The tree starts empty; call Load.
func New(store settings.Store, opts ...Option) *Library {
	l := &Library{
		id:     uuid.NewString(),
		group:  settings.ClipEntriesGroup,
		store:  store,
		tree:   tree.New(),
		logger: logging.Get("library"),
	}

	if tmpl, err := DefaultTemplate(); err == nil {
		l.template = tmpl
	} else {
		l.logger.Warn("bundled template unusable", "error", err)
	}

	for _, opt := range opts {
		opt(l)
	}

	l.logger = l.logger.With("session", l.id[:8])
	l.engine = move.NewEngine(l.tree, logging.Get("move"))
	return l
}

// ID returns the session identifier of this library.
func (l *Library) ID() string { return l.id }

// Store returns the library's own store.
func (l *Library) Store() settings.Store { return l.store }

// Notifier returns the notifier, or nil if none was configured.
func (l *Library) Notifier() *notify.Notifier { return l.notifier }

// Backups returns the backup manager, or nil if none was configured.
func (l *Library) Backups() *backup.Manager { return l.backups }

// Load replaces the tree with the store's records. When nothing was loaded the
// template entries are loaded instead. A read error leaves the tree empty.
func (l *Library) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tree.Clear()

	records, err := l.store.ReadArray(ctx, l.group)
	if err != nil {
		return fmt.Errorf("loading %s: %w", l.store.Location(), err)
	}
	l.insertRecords(records, l.tree.Root())

	if l.tree.ChildCount(l.tree.Root()) == 0 {
		l.bootstrap(ctx)
	}

	l.logger.Info("library loaded", "location", l.store.Location(), "records", len(records), "nodes", l.tree.Len())
	l.notifier.Notify(notify.Event{Type: notify.EventReloaded, Count: l.tree.Len()})
	return nil
}

func (l *Library) bootstrap(ctx context.Context) {
	if l.template == nil {
		return
	}
	records, err := l.template.ReadArray(ctx, settings.ClipEntriesGroup)
	if err != nil {
		l.logger.Warn("example template unreadable", "template", l.template.Location(), "error", err)
		return
	}
	n := l.insertRecords(records, l.tree.Root())
	l.logger.Info("library bootstrapped from examples", "template", l.template.Location(), "entries", n)
}

// insertRecords inserts records under parent in order and returns how many
// were inserted. Names are normalised first; a trailing separator marks a group.
func (l *Library) insertRecords(records []types.Record, parent tree.Handle) int {
	inserted := 0
	for _, r := range records {
		name := types.NormalizeFullName(r.Name)
		isGroup := strings.HasSuffix(name, types.Separator)

		_, err := l.tree.InsertPath(name, r.Text, isGroup, parent, -1)
		switch {
		case errors.Is(err, tree.ErrEmptyName):
			l.logger.Debug("skipping record without a name", "raw", r.Name)
		case err != nil:
			l.logger.Warn("skipping record", "name", r.Name, "error", err)
		default:
			inserted++
		}
	}
	return inserted
}

// Merge inserts the records of src under parent without clearing the tree and
// without bootstrapping. A leaf parent merges into the leaf's group.
func (l *Library) Merge(ctx context.Context, src settings.Store, parent tree.Handle) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := src.ReadArray(ctx, l.group)
	if err != nil {
		return 0, fmt.Errorf("importing %s: %w", src.Location(), err)
	}
	return l.mergeRecords(records, parent, src.Location())
}

// MergeRecords inserts records under parent, as Merge does for a store.
func (l *Library) MergeRecords(records []types.Record, parent tree.Handle) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mergeRecords(records, parent, "records")
}

func (l *Library) mergeRecords(records []types.Record, parent tree.Handle, source string) (int, error) {
	if !l.tree.IsGroup(parent) {
		p, err := l.tree.Parent(parent)
		if err != nil {
			return 0, fmt.Errorf("import target: %w", err)
		}
		parent = p
	}

	n := l.insertRecords(records, parent)
	target, _ := l.tree.Entry(parent)
	l.logger.Info("records imported", "source", source, "into", target.FullName, "entries", n)
	l.notifier.Notify(notify.Event{Type: notify.EventAdded, FullName: target.FullName, Count: n})
	return n, nil
}

// Save writes entries to dest, or to the library's own store when dest is nil.
// With no handles every childless node is saved, so empty groups survive a
// reload. It returns an empty string on success and a message otherwise; the
// tree is never modified.
func (l *Library) Save(ctx context.Context, handles []tree.Handle, dest settings.Store) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(handles) == 0 {
		handles, _ = l.tree.Childless(l.tree.Root())
	}
	return l.write(ctx, l.records(handles), dest)
}

// Export writes the selected nodes to dest, expanding groups into their
// childless descendants. With no handles the whole library is exported.
func (l *Library) Export(ctx context.Context, handles []tree.Handle, dest settings.Store) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(handles) == 0 {
		handles = []tree.Handle{l.tree.Root()}
	}

	seen := make(map[tree.Handle]struct{})
	var expanded []tree.Handle
	for _, h := range handles {
		childless, err := l.tree.Childless(h)
		if err != nil {
			l.logger.Warn("skipping stale export selection", "error", err)
			continue
		}
		for _, c := range childless {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			expanded = append(expanded, c)
		}
	}
	return l.write(ctx, l.records(expanded), dest)
}

func (l *Library) records(handles []tree.Handle) []types.Record {
	records := make([]types.Record, 0, len(handles))
	for _, h := range handles {
		e, err := l.tree.Entry(h)
		if err != nil {
			l.logger.Warn("skipping stale entry on save", "error", err)
			continue
		}
		records = append(records, e.Record())
	}
	return records
}

func (l *Library) write(ctx context.Context, records []types.Record, dest settings.Store) string {
	own := dest == nil
	if own {
		dest = l.store
	}

	if !dest.Writable() {
		l.logger.Error("destination not writable", "location", dest.Location())
		return fmt.Sprintf("Unable to create file %s", dest.Location())
	}

	if own && l.backups != nil {
		l.snapshot(ctx)
	}

	if err := dest.WriteArray(ctx, l.group, records); err != nil {
		l.logger.Error("save failed", "location", dest.Location(), "error", err)
		return fmt.Sprintf("Unable to create file %s", dest.Location())
	}

	l.logger.Info("library saved", "location", dest.Location(), "records", len(records))
	l.notifier.Notify(notify.Event{Type: notify.EventSaved, Count: len(records)})
	return ""
}

// snapshot backs up the records currently in the library's store.
func (l *Library) snapshot(ctx context.Context) {
	previous, err := l.store.ReadArray(ctx, l.group)
	if err != nil {
		l.logger.Warn("reading records for backup failed", "error", err)
		return
	}
	snap, err := l.backups.Save(l.store.Location(), previous)
	if err != nil {
		l.logger.Warn("backup failed", "error", err)
		return
	}
	if snap != nil {
		l.logger.Debug("backup written", "id", snap.ID, "records", snap.Count)
	}
}

// Restore writes a snapshot's records back to the library's store and reloads.
func (l *Library) Restore(ctx context.Context, id string) error {
	if l.backups == nil {
		return errors.New("backups are not enabled")
	}
	snap, err := l.backups.Get(id)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.snapshot(ctx)
	err = l.store.WriteArray(ctx, l.group, snap.Records)
	l.mu.Unlock()
	if err != nil {
		return fmt.Errorf("restoring %s: %w", id, err)
	}

	l.logger.Info("snapshot restored", "id", id, "records", snap.Count)
	return l.Load(ctx)
}
