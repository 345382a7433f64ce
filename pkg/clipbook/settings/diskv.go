package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// Diskv is a Store keeping one JSON file per group in a diskv directory.
type Diskv struct {
	d    *diskv.Diskv
	path string
}

var _ Store = (*Diskv)(nil)

// OpenDiskv returns a store rooted at dir.
func OpenDiskv(dir string) (*Diskv, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating diskv store %s: %w", dir, err)
	}
	return &Diskv{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 1024 * 1024,
			FilePerm:     0o644,
			PathPerm:     0o755,
		}),
		path: dir,
	}, nil
}

// ReadArray implements Store.
func (s *Diskv) ReadArray(ctx context.Context, group string) ([]types.Record, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if !s.d.Has(group) {
		return []types.Record{}, nil
	}

	data, err := s.d.Read(group)
	if err != nil {
		return nil, fmt.Errorf("reading group %s: %w", group, err)
	}
	var records []types.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding group %s: %w", group, err)
	}
	if records == nil {
		records = []types.Record{}
	}
	return records, nil
}

// WriteArray implements Store.
func (s *Diskv) WriteArray(ctx context.Context, group string, records []types.Record) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if records == nil {
		records = []types.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := s.d.Write(group, data); err != nil {
		return fmt.Errorf("writing group %s: %w", group, err)
	}
	return nil
}

// Writable implements Store.
func (s *Diskv) Writable() bool { return dirWritable(s.path) }

// Location implements Store.
func (s *Diskv) Location() string { return s.path }

// Close implements Store.
func (s *Diskv) Close() error { return nil }
