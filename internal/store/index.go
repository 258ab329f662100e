package store

import (
	"context"
	"sync"
)

// Index is the set of keys already persisted.
type Index interface {
	// Contains reports whether key has already been written.
	Contains(ctx context.Context, key string) (bool, error)

	// Add records keys as written.
	Add(ctx context.Context, keys ...string) error

	// Claim atomically adds keys and returns the ones that were not present
	// before, in input order. A key is returned to at most one caller across
	// everything sharing the index.
	Claim(ctx context.Context, keys ...string) ([]string, error)

	// Release drops keys claimed for a write that did not happen.
	Release(ctx context.Context, keys ...string) error

	// Len returns the number of known keys, or -1 if unknown.
	Len(ctx context.Context) int

	Close() error
}

// MemoryIndex keeps keys in a map for the life of the process
type MemoryIndex struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewMemoryIndex creates an empty index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{keys: make(map[string]struct{})}
}

// Contains reports whether key is in the map.
func (m *MemoryIndex) Contains(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	_, ok := m.keys[key]
	m.mu.RUnlock()
	return ok, nil
}

// Add inserts keys.
func (m *MemoryIndex) Add(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		m.keys[k] = struct{}{}
	}
	m.mu.Unlock()
	return nil
}

// Claim inserts the keys that are missing and returns them.
func (m *MemoryIndex) Claim(_ context.Context, keys ...string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var claimed []string
	for _, k := range keys {
		if _, ok := m.keys[k]; ok {
			continue
		}
		m.keys[k] = struct{}{}
		claimed = append(claimed, k)
	}
	return claimed, nil
}

// Release removes keys.
func (m *MemoryIndex) Release(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.keys, k)
	}
	m.mu.Unlock()
	return nil
}

// Len returns the number of keys.
func (m *MemoryIndex) Len(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// Close is a no-op.
func (m *MemoryIndex) Close() error { return nil }
