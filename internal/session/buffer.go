package session

import "sync"

// PersistenceBuffer accumulates ids of successfully transformed items so the
// consumer can be told to reload once per session instead of once per item.
// The Record Store write itself happens as results arrive; only the reload
// notification is deferred.
type PersistenceBuffer struct {
	mu      sync.Mutex
	pending []string
	seen    map[string]bool
}

// NewPersistenceBuffer creates an empty buffer.
func NewPersistenceBuffer() *PersistenceBuffer {
	return &PersistenceBuffer{seen: make(map[string]bool)}
}

// RecordSuccess appends id to the pending set. Duplicate ids are ignored.
func (b *PersistenceBuffer) RecordSuccess(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.seen[id] {
		return
	}
	b.seen[id] = true
	b.pending = append(b.pending, id)
}

// Flush returns and clears the pending set. A second flush with no new
// successes returns an empty slice, so a racing close cannot double-notify.
func (b *PersistenceBuffer) Flush() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.pending
	b.pending = nil
	b.seen = make(map[string]bool)
	return out
}

// Len returns the number of pending ids.
func (b *PersistenceBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
