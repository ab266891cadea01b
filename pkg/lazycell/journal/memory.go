package journal

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory journal.
// Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry // cell -> entries
	closed  bool
}

// NewMemoryStore creates a new in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]Entry),
	}
}

// Record implements Store.
func (m *MemoryStore) Record(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	// Copy arg to avoid retaining caller's slice
	if entry.Arg != nil {
		arg := make([]byte, len(entry.Arg))
		copy(arg, entry.Arg)
		entry.Arg = arg
	}

	m.entries[entry.Cell] = append(m.entries[entry.Cell], entry)
	return nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, cell string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	stored := m.entries[cell]
	result := make([]Entry, len(stored))
	copy(result, stored)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Attempt < result[j].Attempt
	})
	return result, nil
}

// Winner implements Store.
func (m *MemoryStore) Winner(_ context.Context, cell string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Entry{}, ErrStoreClosed
	}

	for _, e := range m.entries[cell] {
		if e.Outcome == OutcomeConstructed {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = nil
	return nil
}

// Len returns the total number of entries across all cells.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, cell := range m.entries {
		count += len(cell)
	}
	return count
}
