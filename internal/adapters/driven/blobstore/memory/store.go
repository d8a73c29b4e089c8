// Package memory provides an in-memory blob store for tests and
// single-process use.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/extracta/internal/core/domain"
	"github.com/custodia-labs/extracta/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.BlobStore = (*Store)(nil)

// Store is a mutex-guarded map of blob name to bytes.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewStore creates an empty in-memory blob store.
func NewStore() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Get returns the blob stored under name, or domain.ErrNotFound.
func (s *Store) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put stores data under name, creating or overwriting.
func (s *Store) Put(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[name] = stored
	return nil
}

// Delete removes the blob stored under name, if present. Tests use it to
// simulate a momentarily absent contents document.
func (s *Store) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, name)
}

// Len returns the number of stored blobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Close releases resources. The memory store holds none.
func (s *Store) Close() error {
	return nil
}
