package memory

import (
	"context"
	"sync"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// CursorStore implements storage.CursorStore in memory.
type CursorStore struct {
	mu      sync.RWMutex
	cursors map[string]*domain.IndexerCursor
}

// NewCursorStore creates a new in-memory CursorStore.
func NewCursorStore() *CursorStore {
	return &CursorStore{cursors: make(map[string]*domain.IndexerCursor)}
}

// Compile-time interface check.
var _ storage.CursorStore = (*CursorStore)(nil)

// Get returns the persisted cursor.
func (s *CursorStore) Get(_ context.Context, contractAddress string) (*domain.IndexerCursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cursors[contractAddress]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// Set upserts the cursor row.
func (s *CursorStore) Set(_ context.Context, c *domain.IndexerCursor) error {
	if c == nil || c.ContractAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	s.cursors[c.ContractAddress] = &cp
	return nil
}
