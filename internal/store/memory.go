package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory ReferenceStore used in tests and as a building
// block for database-less development.
type MemoryStore struct {
	mu   sync.RWMutex
	refs map[int64]Reference

	// Error injection for tests.
	UpsertError error
	DeleteError error
	AllError    error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{refs: make(map[int64]Reference)}
}

// Upsert stores the reference, replacing any prior value.
func (m *MemoryStore) Upsert(_ context.Context, ref Reference) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[ref.StudentID] = ref
	return nil
}

// Delete removes the reference for the student.
func (m *MemoryStore) Delete(_ context.Context, studentID int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.refs, studentID)
	return nil
}

// All returns every stored reference.
func (m *MemoryStore) All(_ context.Context) ([]Reference, error) {
	if m.AllError != nil {
		return nil, m.AllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	refs := make([]Reference, 0, len(m.refs))
	for _, ref := range m.refs {
		refs = append(refs, ref)
	}
	return refs, nil
}

// Len returns the number of stored references.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.refs)
}
