package memory

import (
	"context"
	"sync"
)

// Storage is an in-memory key-value store useful for local development and tests.
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStorage constructs an empty Storage.
func NewStorage() *Storage {
	return &Storage{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *Storage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set stores or overwrites the value for key.
func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Remove deletes key. Missing keys are ignored.
func (s *Storage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
