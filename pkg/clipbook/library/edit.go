package library

import (
	"fmt"
	"strings"

	"github.com/jamesainslie/clipbook/pkg/clipbook/move"
	"github.com/jamesainslie/clipbook/pkg/clipbook/notify"
	"github.com/jamesainslie/clipbook/pkg/clipbook/tree"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// AddEntry inserts a leaf under parent at row. The name may be hierarchical, in
// which case missing groups are created. An empty name becomes "Text".
func (l *Library) AddEntry(parent tree.Handle, row int, name, text string) (tree.Handle, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultEntryName
	}
	name = strings.TrimSuffix(types.NormalizeFullName(name), types.Separator)
	return l.add(parent, row, name, text, false)
}

// AddGroup inserts a group under parent at row, returning the deepest group of
// a hierarchical name. An empty name becomes "Group".
func (l *Library) AddGroup(parent tree.Handle, row int, name string) (tree.Handle, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultGroupName
	}
	name = types.NormalizeFullName(name)
	return l.add(parent, row, name, "", true)
}

func (l *Library) add(parent tree.Handle, row int, name, text string, isGroup bool) (tree.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, err := l.tree.InsertPath(name, text, isGroup, parent, row)
	if err != nil {
		return tree.Handle{}, err
	}

	e, _ := l.tree.Entry(h)
	l.logger.Debug("entry added", "name", e.FullName, "group", e.IsGroup)
	l.notifier.Notify(notify.Event{Type: notify.EventAdded, FullName: e.FullName, Count: 1})
	return h, nil
}

// EditName applies an external edit of a node's display name. The name is
// auto-corrected; edits that leave nothing usable are ignored and return
// false. A successful rename emits one event after every descendant's full
// name was updated.
func (l *Library) EditName(h tree.Handle, raw string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	before, err := l.tree.Entry(h)
	if err != nil {
		return false, err
	}

	ok, err := l.tree.Rename(h, raw)
	if err != nil || !ok {
		return false, err
	}

	after, _ := l.tree.Entry(h)
	if after.FullName != before.FullName {
		l.notifier.Notify(notify.Event{
			Type:        notify.EventRenamed,
			FullName:    after.FullName,
			OldFullName: before.FullName,
			Count:       1,
		})
	}
	return true, nil
}

// SetText replaces the payload of a leaf.
func (l *Library) SetText(h tree.Handle, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.tree.SetText(h, text); err != nil {
		return err
	}
	e, _ := l.tree.Entry(h)
	l.notifier.Notify(notify.Event{Type: notify.EventTextChanged, FullName: e.FullName, Count: 1})
	return nil
}

// Remove deletes a node and its subtree.
func (l *Library) Remove(h tree.Handle) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.tree.Entry(h)
	if err != nil {
		return err
	}
	if err := l.tree.Remove(h); err != nil {
		return err
	}
	l.logger.Debug("entry removed", "name", e.FullName)
	l.notifier.Notify(notify.Event{Type: notify.EventRemoved, FullName: e.FullName, Count: 1})
	return nil
}

// Move drops the payload's nodes under target at row. It returns false when
// the selection overlaps itself or the target lies inside a moved group.
func (l *Library) Move(p move.Payload, target tree.Handle, row int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, ok, err := l.engine.DropWithResult(p, target, row)
	if err != nil || !ok {
		return ok, err
	}
	if res.Failed > 0 {
		l.logger.Warn("move finished with skipped entries", "failed", res.Failed)
	}

	dest := ""
	if len(res.Inserted) > 0 {
		if parent, err := l.tree.Parent(res.Inserted[0]); err == nil {
			pe, _ := l.tree.Entry(parent)
			dest = pe.FullName
		}
	}
	l.notifier.Notify(notify.Event{Type: notify.EventMoved, FullName: dest, Count: len(p.Items)})
	return true, nil
}

// MovePairs is Move for a selection addressed as (parent, row) pairs, resolved
// against the tree as it is at drop time.
func (l *Library) MovePairs(pairs []move.Pair, target tree.Handle, row int) (bool, error) {
	l.mu.Lock()
	p, err := move.ResolvePairs(l.tree, pairs)
	l.mu.Unlock()
	if err != nil {
		return false, err
	}
	return l.Move(p, target, row)
}

// Root returns the root handle.
func (l *Library) Root() tree.Handle { return tree.Handle{} }

// Entry returns the entry for h.
func (l *Library) Entry(h tree.Handle) (types.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tree.Entry(h)
}

// Resolve finds a node by full name.
func (l *Library) Resolve(fullName string) (tree.Handle, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tree.Resolve(fullName)
}

// MustResolve is Resolve returning an error naming the missing path.
func (l *Library) MustResolve(fullName string) (tree.Handle, error) {
	h, ok := l.Resolve(fullName)
	if !ok {
		return tree.Handle{}, fmt.Errorf("no clip named %q", fullName)
	}
	return h, nil
}

// Entries returns every entry in depth-first order.
func (l *Library) Entries() []types.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tree.Flatten()
}

// Len returns the number of nodes.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tree.Len()
}

// View runs fn with read access to the tree while holding the library lock.
// fn must not modify the tree or call back into the library.
func (l *Library) View(fn func(t *tree.Tree)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.tree)
}
