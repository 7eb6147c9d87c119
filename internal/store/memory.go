package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory RecordStore for tests and local development.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]string)}
}

// UpdateContent stores content under id.
func (s *MemoryStore) UpdateContent(_ context.Context, id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = content
	return nil
}

// Get returns stored content and whether the id exists.
func (s *MemoryStore) Get(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.records[id]
	return content, ok
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
