// Package backup keeps snapshots of a library's records taken before each save,
// so an earlier state can be listed and restored.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// ErrNotFound is returned by Get for an unknown snapshot ID.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the saved state of one record array.
type Snapshot struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Location  string         `json:"location"`
	Count     int            `json:"count"`
	Records   []types.Record `json:"records"`
}

// Manager stores snapshots as JSON files in a directory.
type Manager struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New returns a manager for dir. The directory is created on first save.
func New(dir string, opts ...Option) (*Manager, error) {
	if dir == "" {
		return nil, errors.New("backup directory cannot be empty")
	}
	m := &Manager{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Dir returns the snapshot directory.
func (m *Manager) Dir() string { return m.dir }

// Save stores records taken from location. Empty record sets are not worth
// keeping and return a nil snapshot.
func (m *Manager) Save(location string, records []types.Record) (*Snapshot, error) {
	if len(records) == 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	snap := &Snapshot{
		ID:        generateID(now),
		Timestamp: now,
		Location:  location,
		Count:     len(records),
		Records:   records,
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}
	if err := m.write(snap); err != nil {
		return nil, fmt.Errorf("writing snapshot: %w", err)
	}
	return snap, nil
}

func (m *Manager) write(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(m.dir, snap.ID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// List returns snapshots newest first. A non-positive limit returns all.
func (m *Manager) List(limit int) ([]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snaps, err := m.readAll()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

// Get returns the snapshot with id.
func (m *Manager) Get(id string) (*Snapshot, error) {
	if id == "" {
		return nil, errors.New("snapshot ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.readFile(id + ".json")
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snap, err
}

// Latest returns the newest snapshot, or ErrNotFound when there is none.
func (m *Manager) Latest() (*Snapshot, error) {
	snaps, err := m.List(1)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, ErrNotFound
	}
	return &snaps[0], nil
}

// Cleanup removes snapshots older than retentionDays and returns how many
// were removed. A non-positive retention keeps everything.
func (m *Manager) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snaps, err := m.readAll()
	if err != nil {
		return 0, err
	}

	cutoff := m.now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, snap := range snaps {
		if !snap.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, snap.ID+".json")); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (m *Manager) readAll() ([]Snapshot, error) {
	files, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	snaps := []Snapshot{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		snap, err := m.readFile(f.Name())
		if err != nil {
			continue
		}
		snaps = append(snaps, *snap)
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
	return snaps, nil
}

func (m *Manager) readFile(name string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return &snap, nil
}

// generateID returns an ID like "snap-20260102T150405-1a2b3c4d".
func generateID(ts time.Time) string {
	return fmt.Sprintf("snap-%s-%s", ts.Format("20060102T150405"), uuid.NewString()[:8])
}
