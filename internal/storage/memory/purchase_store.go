package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// PurchaseStore implements storage.PurchaseStore in memory.
type PurchaseStore struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Purchase
	byTxSet map[string]struct{} // transaction_hash uniqueness
}

// NewPurchaseStore creates a new in-memory PurchaseStore.
func NewPurchaseStore() *PurchaseStore {
	return &PurchaseStore{
		byID:    make(map[string]*domain.Purchase),
		byTxSet: make(map[string]struct{}),
	}
}

// Compile-time interface check.
var _ storage.PurchaseStore = (*PurchaseStore)(nil)

// Insert adds a new purchase. Returns ErrDuplicateKey if the transaction
// hash already exists.
func (s *PurchaseStore) Insert(_ context.Context, p *domain.Purchase) error {
	if p == nil || p.ID == "" || p.TransactionHash == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byTxSet[p.TransactionHash]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byID[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	c := *p
	s.byID[p.ID] = &c
	s.byTxSet[p.TransactionHash] = struct{}{}
	return nil
}

// GetByTokenSince retrieves purchases for a token with created_at >= since,
// ordered by created_at ASC.
func (s *PurchaseStore) GetByTokenSince(_ context.Context, tokenRowID string, since int64) ([]*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Purchase
	for _, p := range s.byID {
		if p.TokenRowID == tokenRowID && p.CreatedAt >= since {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// VolumeSince sums xlm_amount for a token with created_at >= since.
func (s *PurchaseStore) VolumeSince(_ context.Context, tokenRowID string, since int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, p := range s.byID {
		if p.TokenRowID == tokenRowID && p.CreatedAt >= since {
			total += p.XLMAmount
		}
	}
	return total, nil
}

// CountSince counts purchases for a token with created_at >= since.
func (s *PurchaseStore) CountSince(_ context.Context, tokenRowID string, since int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, p := range s.byID {
		if p.TokenRowID == tokenRowID && p.CreatedAt >= since {
			count++
		}
	}
	return count, nil
}

// TotalsForToken sums xlm_amount and tokens_received over a token's full
// sale history.
func (s *PurchaseStore) TotalsForToken(_ context.Context, tokenRowID string) (int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var xlm, tokens int64
	for _, p := range s.byID {
		if p.TokenRowID == tokenRowID {
			xlm += p.XLMAmount
			tokens += p.TokensReceived
		}
	}
	return xlm, tokens, nil
}
