package sheet

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemStore is an in-memory Store. It backs previews, dry runs without
// credentials, and tests.
type MemStore struct {
	mu     sync.Mutex
	tables map[string]map[string]Row
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{tables: make(map[string]map[string]Row)}
}

// ReadTable implements Store.
func (m *MemStore) ReadTable(_ context.Context, t Table) (map[string]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Row, len(m.tables[t.Name]))
	for k, r := range m.tables[t.Name] {
		out[k] = r.Clone()
	}
	return out, nil
}

// Insert implements Store.
func (m *MemStore) Insert(_ context.Context, t Table, rows []Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tbl := m.tables[t.Name]
	if tbl == nil {
		tbl = make(map[string]Row)
		m.tables[t.Name] = tbl
	}
	for _, r := range rows {
		k := t.KeyOf(r)
		if _, exists := tbl[k]; exists {
			return fmt.Errorf("table %s: duplicate key %q", t.Name, k)
		}
		tbl[k] = r.Clone()
	}
	return nil
}

// Update implements Store.
func (m *MemStore) Update(_ context.Context, t Table, rows []Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tbl := m.tables[t.Name]
	for _, r := range rows {
		k := t.KeyOf(r)
		if _, exists := tbl[k]; !exists {
			return fmt.Errorf("table %s: update of missing key %q", t.Name, k)
		}
		tbl[k] = r.Clone()
	}
	return nil
}

// Close implements Store.
func (m *MemStore) Close() error { return nil }

// Rows returns the table contents sorted by key, for assertions and preview
// rendering.
func (m *MemStore) Rows(t Table) []Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.tables[t.Name]))
	for k := range m.tables[t.Name] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Row, 0, len(keys))
	for _, k := range keys {
		out = append(out, m.tables[t.Name][k].Clone())
	}
	return out
}
