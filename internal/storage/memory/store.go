package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/foxcodenine/iot-parking-console/internal/storage"
)

// Store is an in-memory storage.Tier.
type Store struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", storage.ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return "", storage.ErrKeyNotFound
	}
	return v, nil
}

// Set stores a key-value pair.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	s.data[key] = value
	return nil
}

// Delete removes a key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	delete(s.data, key)
	return nil
}

// Keys lists every key starting with prefix, sorted.
func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close drops every value.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.data = nil
	return nil
}
