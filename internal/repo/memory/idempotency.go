package memory

import (
	"context"
	"sync"
	"time"

	"engage-api/internal/repo"
)

type idempotencyEntry struct {
	response  repo.CachedResponse
	expiresAt time.Time
}

// IdempotencyStore keeps responses keyed by company and key hash.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]idempotencyEntry
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = repo.DefaultIdempotencyTTL
	}
	return &IdempotencyStore{ttl: ttl, now: time.Now, entries: map[string]idempotencyEntry{}}
}

func idempotencyKey(companyID, keyHash string) string {
	return companyID + "\x00" + keyHash
}

func (s *IdempotencyStore) CheckKey(_ context.Context, companyID, keyHash string) (*repo.CachedResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[idempotencyKey(companyID, keyHash)]
	if !ok || !e.expiresAt.After(s.now()) {
		return nil, nil
	}
	resp := e.response
	return &resp, nil
}

func (s *IdempotencyStore) StoreResult(_ context.Context, req repo.StoredRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := idempotencyKey(req.CompanyID, req.KeyHash)
	if e, ok := s.entries[key]; ok && e.expiresAt.After(s.now()) {
		return nil
	}
	s.entries[key] = idempotencyEntry{response: req.Response, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *IdempotencyStore) CleanupExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	now := s.now()
	for k, e := range s.entries {
		if !e.expiresAt.After(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed, nil
}
