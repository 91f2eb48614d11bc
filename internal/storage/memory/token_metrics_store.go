package memory

import (
	"context"
	"sync"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// TokenMetricsStore implements storage.TokenMetricsStore in memory.
type TokenMetricsStore struct {
	mu      sync.RWMutex
	metrics map[string]*domain.TokenMetrics
}

// NewTokenMetricsStore creates a new in-memory TokenMetricsStore.
func NewTokenMetricsStore() *TokenMetricsStore {
	return &TokenMetricsStore{metrics: make(map[string]*domain.TokenMetrics)}
}

// Compile-time interface check.
var _ storage.TokenMetricsStore = (*TokenMetricsStore)(nil)

// Upsert replaces the metrics row for a token.
func (s *TokenMetricsStore) Upsert(_ context.Context, m *domain.TokenMetrics) error {
	if m == nil || m.TokenRowID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := *m
	s.metrics[m.TokenRowID] = &c
	return nil
}

// GetByTokenRowID retrieves metrics.
func (s *TokenMetricsStore) GetByTokenRowID(_ context.Context, tokenRowID string) (*domain.TokenMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.metrics[tokenRowID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *m
	return &c, nil
}
