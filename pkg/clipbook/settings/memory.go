package settings

import (
	"context"
	"slices"
	"sync"

	"github.com/jamesainslie/clipbook/pkg/clipbook/types"
)

// Memory is a Store that keeps records in memory.
type Memory struct {
	mu       sync.RWMutex
	location string
	groups   map[string][]types.Record
	readOnly bool
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty writable in-memory store.
func NewMemory(location string) *Memory {
	if location == "" {
		location = "memory"
	}
	return &Memory{location: location, groups: make(map[string][]types.Record)}
}

// NewReadOnlyMemory returns an in-memory store holding groups that rejects writes.
func NewReadOnlyMemory(location string, groups map[string][]types.Record) *Memory {
	m := NewMemory(location)
	for group, records := range groups {
		m.groups[group] = slices.Clone(records)
	}
	m.readOnly = true
	return m
}

// ReadArray implements Store.
func (m *Memory) ReadArray(ctx context.Context, group string) ([]types.Record, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.groups[group]), nil
}

// WriteArray implements Store.
func (m *Memory) WriteArray(ctx context.Context, group string, records []types.Record) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if m.readOnly {
		return ErrReadOnly
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[group] = slices.Clone(records)
	return nil
}

// Writable implements Store.
func (m *Memory) Writable() bool { return !m.readOnly }

// Location implements Store.
func (m *Memory) Location() string { return m.location }

// Close implements Store.
func (m *Memory) Close() error { return nil }
