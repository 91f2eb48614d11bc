package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// PricePointStore implements storage.PricePointStore in memory.
type PricePointStore struct {
	mu     sync.RWMutex
	points []*domain.PricePoint
}

// NewPricePointStore creates a new in-memory PricePointStore.
func NewPricePointStore() *PricePointStore {
	return &PricePointStore{}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// Insert appends one price sample.
func (s *PricePointStore) Insert(_ context.Context, p *domain.PricePoint) error {
	if p == nil || p.TokenRowID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := *p
	s.points = append(s.points, &c)
	return nil
}

// GetByTokenRange retrieves samples within [start, end], ordered by
// timestamp ASC. end <= 0 means no upper bound.
func (s *PricePointStore) GetByTokenRange(_ context.Context, tokenRowID string, start, end int64) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.PricePoint
	for _, p := range s.points {
		if p.TokenRowID != tokenRowID || p.Timestamp < start {
			continue
		}
		if end > 0 && p.Timestamp > end {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}
