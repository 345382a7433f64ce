// Package settings persists clip libraries as ordered record arrays stored
// under named groups. Several backends implement the same Store contract:
// plain files (YAML, TOML or JSON), Badger, diskv and SQLite.
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// ClipEntriesGroup is the group a clip library is stored under.
const ClipEntriesGroup = "clip_entries"

var (
	// ErrUnknownBackend is returned by Open for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown settings backend")

	// ErrReadOnly is returned when writing to a read-only store.
	ErrReadOnly = errors.New("settings store is read-only")
)

// Store reads and writes ordered record arrays.
//
// ReadArray returns the records of group in stored order; a group that was
// never written reads as an empty slice. WriteArray replaces everything
// previously stored under group.
type Store interface {
	ReadArray(ctx context.Context, group string) ([]types.Record, error)
	WriteArray(ctx context.Context, group string, records []types.Record) error

	// Writable reports whether WriteArray can be expected to succeed.
	Writable() bool

	// Location describes where the records live, for messages.
	Location() string

	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendDiskv  = "diskv"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists the names accepted by Open.
func Backends() []string {
	return []string{BackendFile, BackendBadger, BackendDiskv, BackendSQLite, BackendMemory}
}

// Open opens the store for backend at location.
func Open(backend, location string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendFile, "":
		return OpenFile(location)
	case BackendBadger:
		return OpenBadger(location)
	case BackendDiskv:
		return OpenDiskv(location)
	case BackendSQLite:
		return OpenSQLite(location)
	case BackendMemory:
		return NewMemory(location), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Detect guesses the backend for an existing location: directories holding a
// Badger manifest are badger, other directories diskv, .db/.sqlite files
// sqlite and everything else a plain file.
func Detect(location string) string {
	info, err := os.Stat(location)
	if err == nil && info.IsDir() {
		if _, err := os.Stat(filepath.Join(location, "MANIFEST")); err == nil {
			return BackendBadger
		}
		return BackendDiskv
	}

	switch strings.ToLower(filepath.Ext(location)) {
	case ".db", ".sqlite", ".sqlite3":
		return BackendSQLite
	default:
		return BackendFile
	}
}

// ensureParent creates the directory that will hold path.
func ensureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	return nil
}

// checkContext returns ctx.Err() without blocking.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
