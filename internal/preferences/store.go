// Package preferences persists small string values across sessions.
package preferences

import (
	"context"
	"errors"
	"sync"
)

// DefaultKey is the key the last search term is stored under.
const DefaultKey = "search"

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("preferences: store closed")

// Store is a durable key/value store for user preferences. Load returns ""
// for a key that was never saved. Writes are last-write-wins.
type Store interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Close() error
}

// MemoryStore is an in-memory Store
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *MemoryStore) Save(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.writes++
	return nil
}

// Writes reports how many times Save has been called
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemoryStore) Close() error { return nil }
