package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// File is a Store backed by a single YAML, TOML or JSON file holding every
// group. Reads and writes take an advisory lock on a sibling .lock file, and
// writes go through a temporary file renamed into place.
type File struct {
	path   string
	format Format
}

var _ Store = (*File)(nil)

// OpenFile returns a store for path. The file does not need to exist yet.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	return &File{path: abs, format: FormatFor(abs)}, nil
}

// ReadArray implements Store.
func (f *File) ReadArray(ctx context.Context, group string) ([]types.Record, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	var groups Groups
	err := f.withLock(false, func() error {
		var err error
		groups, err = f.readAll()
		return err
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(groups[group]), nil
}

// WriteArray implements Store. Other groups in the file are preserved.
func (f *File) WriteArray(ctx context.Context, group string, records []types.Record) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := ensureParent(f.path); err != nil {
		return err
	}

	return f.withLock(true, func() error {
		groups, err := f.readAll()
		if err != nil {
			return err
		}
		if records == nil {
			records = []types.Record{}
		}
		groups[group] = records

		data, err := EncodeGroups(f.format, groups)
		if err != nil {
			return err
		}
		return writeAtomic(f.path, data)
	})
}

// Writable implements Store.
func (f *File) Writable() bool {
	if info, err := os.Stat(f.path); err == nil {
		return !info.IsDir() && accessWritable(f.path)
	}
	return dirWritable(filepath.Dir(f.path))
}

// Location implements Store.
func (f *File) Location() string { return f.path }

// Close implements Store.
func (f *File) Close() error { return nil }

func (f *File) readAll() (Groups, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Groups{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	groups, err := DecodeGroups(f.format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return groups, nil
}

// withLock runs fn holding the advisory lock. Readers that cannot create the
// lock file, such as in a read-only directory, read unlocked.
func (f *File) withLock(exclusive bool, fn func() error) error {
	lockPath := f.path + ".lock"
	if !exclusive {
		if _, err := os.Stat(filepath.Dir(f.path)); err != nil {
			return fn()
		}
	}

	unlock, err := lockFile(lockPath, exclusive)
	if err != nil {
		if !exclusive {
			return fn()
		}
		return fmt.Errorf("locking %s: %w", f.path, err)
	}
	defer unlock()
	return fn()
}

// writeAtomic writes data to a temporary file in the same directory and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// dirWritable reports whether dir, or its nearest existing ancestor, accepts writes.
func dirWritable(dir string) bool {
	for {
		info, err := os.Stat(dir)
		if err == nil {
			return info.IsDir() && accessWritable(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}
