// Package move implements drag-and-drop style reparenting of selected clip
// tree nodes.
package move

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jamesainslie/clipbook/pkg/clipbook/logging"
	"github.com/jamesainslie/clipbook/pkg/clipbook/tree"
	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// Engine moves nodes within a single tree. It holds no state between drops;
// callers serialise access to the tree.
type Engine struct {
	tree   *tree.Tree
	logger *logging.Logger
}

// NewEngine returns an engine operating on t. A nil logger discards output.
func NewEngine(t *tree.Tree, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Engine{tree: t, logger: logger}
}

// Result summarises an executed drop.
type Result struct {
	// Inserted are the handles created at the destination, top-level sources first.
	Inserted []tree.Handle

	// Failed counts insertions that were skipped.
	Failed int
}

// Drop moves the payload's nodes under target at row.
//
// It returns false with a nil error when the selection is rejected without
// any change: an item selected together with one of its ancestors, or a
// target inside a selected group. Stale or root handles return an error.
// Once validation passes every insertion is attempted independently and
// failures are logged, not rolled back.
func (e *Engine) Drop(p Payload, target tree.Handle, row int) (bool, error) {
	_, ok, err := e.DropWithResult(p, target, row)
	return ok, err
}

// DropWithResult is Drop, also reporting what was inserted.
func (e *Engine) DropWithResult(p Payload, target tree.Handle, row int) (Result, bool, error) {
	if len(p.Items) == 0 {
		return Result{}, false, nil
	}

	dest, row, err := e.normalizeTarget(target, row)
	if err != nil {
		return Result{}, false, err
	}

	ok, err := e.validate(p.Items, dest)
	if err != nil || !ok {
		return Result{}, false, err
	}

	var res Result
	for _, src := range p.Items {
		row = e.moveOne(src, dest, row, &res)
	}

	for _, src := range p.Items {
		if err := e.tree.Remove(src); err != nil && !errors.Is(err, tree.ErrStaleHandle) {
			e.logger.Warn("removing moved source failed", "error", err)
		}
	}

	e.logger.Debug("drop complete", "sources", len(p.Items), "inserted", len(res.Inserted), "failed", res.Failed)
	return res, true, nil
}

// normalizeTarget turns a leaf target into its parent group, placing the
// drop just after the leaf.
func (e *Engine) normalizeTarget(target tree.Handle, row int) (tree.Handle, int, error) {
	entry, err := e.tree.Entry(target)
	if err != nil {
		return tree.Handle{}, 0, fmt.Errorf("drop target: %w", err)
	}
	if entry.IsGroup {
		return target, row, nil
	}

	parent, err := e.tree.Parent(target)
	if err != nil {
		return tree.Handle{}, 0, err
	}
	leafRow, err := e.tree.Row(target)
	if err != nil {
		return tree.Handle{}, 0, err
	}
	return parent, leafRow + 1, nil
}

// validate checks the selection as a whole before anything is changed.
func (e *Engine) validate(sources []tree.Handle, dest tree.Handle) (bool, error) {
	seen := make(map[tree.Handle]struct{})
	for _, src := range sources {
		if src.IsRoot() {
			return false, fmt.Errorf("drop source: %w", tree.ErrRootImmutable)
		}
		childless, err := e.tree.Childless(src)
		if err != nil {
			return false, fmt.Errorf("drop source: %w", err)
		}
		for _, h := range childless {
			if _, dup := seen[h]; dup {
				e.logger.Info("drop rejected: overlapping selection")
				return false, nil
			}
			seen[h] = struct{}{}
		}

		if e.tree.IsGroup(src) && e.tree.Contains(src, dest) {
			e.logger.Info("drop rejected: target inside moved group")
			return false, nil
		}
	}
	return true, nil
}

// moveOne copies src and its childless descendants under dest and returns the
// advanced row cursor.
func (e *Engine) moveOne(src, dest tree.Handle, row int, res *Result) int {
	entry, err := e.tree.Entry(src)
	if err != nil {
		res.Failed++
		e.logger.Warn("skipping source", "error", err)
		return row
	}

	parent := dest
	prefix := entry.ParentPath()

	if entry.IsGroup {
		group, err := e.tree.Insert(types.Entry{Name: entry.Name, IsGroup: true}, dest, row)
		if err != nil {
			res.Failed++
			e.logger.Warn("creating group at destination failed", "group", entry.FullName, "error", err)
			return row
		}
		res.Inserted = append(res.Inserted, group)
		if row >= 0 {
			row++
		}
		parent = group
		prefix = entry.FullName
	}

	childless, err := e.tree.Childless(src)
	if err != nil {
		res.Failed++
		e.logger.Warn("collecting descendants failed", "source", entry.FullName, "error", err)
		return row
	}

	for _, h := range childless {
		if h == src && entry.IsGroup {
			// Empty group source: the new group is all there is.
			continue
		}
		item, err := e.tree.Entry(h)
		if err != nil {
			res.Failed++
			continue
		}

		name := strings.TrimPrefix(item.FullName, prefix)
		insertRow := -1
		if !entry.IsGroup {
			insertRow = row
		}

		moved, err := e.tree.InsertPath(name, item.Text, item.IsGroup, parent, insertRow)
		if err != nil {
			res.Failed++
			e.logger.Warn("re-inserting moved entry failed", "entry", item.FullName, "error", err)
			continue
		}
		if !entry.IsGroup {
			res.Inserted = append(res.Inserted, moved)
			if row >= 0 {
				row++
			}
		}
	}
	return row
}
