package memory

import (
	"context"
	"sync"
	"time"

	"engage-api/internal/repo"
)

type AuditStore struct {
	mu      sync.Mutex
	entries []repo.AuditEntry
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) LogAction(_ context.Context, entry repo.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of the log in insertion order.
func (s *AuditStore) Entries() []repo.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]repo.AuditEntry(nil), s.entries...)
}
