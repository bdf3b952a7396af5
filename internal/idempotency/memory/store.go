package memory

import (
	"context"
	"sync"
	"time"

	"github.com/medicare/storefront/internal/orders/ports"
)

type entry struct {
	response ports.StoredResponse
	savedAt  time.Time
}

// Store keeps checkout responses in process memory. Entries older than the
// TTL are treated as absent and dropped on the next Save.
type Store struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]entry
}

// NewStore creates a store whose entries expire after ttl. A zero ttl keeps
// entries forever.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]entry),
	}
}

// Get returns the stored response for key, or nil when there is none.
func (s *Store) Get(_ context.Context, key string) (*ports.StoredResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[key]
	if !ok || s.expired(e) {
		return nil, nil
	}
	resp := e.response
	return &resp, nil
}

// Save stores the response for key. The first live response wins.
func (s *Store) Save(_ context.Context, key string, response ports.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, e := range s.items {
		if s.expired(e) {
			delete(s.items, k)
		}
	}
	if _, ok := s.items[key]; ok {
		return nil
	}
	s.items[key] = entry{response: response, savedAt: s.now()}
	return nil
}

func (s *Store) expired(e entry) bool {
	return s.ttl > 0 && s.now().Sub(e.savedAt) > s.ttl
}
