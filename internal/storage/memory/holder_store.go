package memory

import (
	"context"
	"sync"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

type holderKey struct {
	tokenRowID string
	address    string
}

// HolderStore implements storage.HolderStore in memory.
type HolderStore struct {
	mu      sync.RWMutex
	holders map[holderKey]*domain.Holder
}

// NewHolderStore creates a new in-memory HolderStore.
func NewHolderStore() *HolderStore {
	return &HolderStore{holders: make(map[holderKey]*domain.Holder)}
}

// Compile-time interface check.
var _ storage.HolderStore = (*HolderStore)(nil)

// ApplyPurchase upserts the (token, holder) position.
func (s *HolderStore) ApplyPurchase(_ context.Context, tokenRowID, holderAddress string, amount, now int64) error {
	if amount <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := holderKey{tokenRowID, holderAddress}
	h, ok := s.holders[key]
	if !ok {
		s.holders[key] = &domain.Holder{
			TokenRowID:      tokenRowID,
			HolderAddress:   holderAddress,
			Balance:         amount,
			FirstPurchaseAt: now,
			LastPurchaseAt:  now,
			TotalPurchased:  amount,
		}
		return nil
	}

	h.Balance += amount
	h.TotalPurchased += amount
	h.LastPurchaseAt = now
	return nil
}

// Get retrieves one position.
func (s *HolderStore) Get(_ context.Context, tokenRowID, holderAddress string) (*domain.Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.holders[holderKey{tokenRowID, holderAddress}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *h
	return &c, nil
}

// CountActive counts holders of a token with balance > 0.
func (s *HolderStore) CountActive(_ context.Context, tokenRowID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for key, h := range s.holders {
		if key.tokenRowID == tokenRowID && h.Balance > 0 {
			count++
		}
	}
	return count, nil
}
