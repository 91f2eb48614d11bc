// Package memory provides in-memory store implementations for development
// runs and unit tests. All stores are safe for concurrent use and return
// deep copies so callers cannot mutate shared state.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// TokenStore implements storage.TokenStore in memory.
type TokenStore struct {
	mu        sync.RWMutex
	byID      map[string]*domain.Token
	byTokenID map[string]string // token_id -> internal id

	// metrics backs the List join; nil until SetMetricsStore is called.
	metrics *TokenMetricsStore
}

// NewTokenStore creates a new in-memory TokenStore.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byID:      make(map[string]*domain.Token),
		byTokenID: make(map[string]string),
	}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// SetMetricsStore attaches the metrics store so List can pair rows the way
// the SQL backend joins token_metrics.
func (s *TokenStore) SetMetricsStore(m *TokenMetricsStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

// Insert adds a new token. Returns ErrDuplicateKey if token_id exists.
func (s *TokenStore) Insert(_ context.Context, t *domain.Token) error {
	if t == nil || t.ID == "" || t.TokenID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byTokenID[t.TokenID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.byID[t.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.byID[t.ID] = copyToken(t)
	s.byTokenID[t.TokenID] = t.ID
	return nil
}

// GetByID retrieves a token by internal ID.
func (s *TokenStore) GetByID(_ context.Context, id string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyToken(t), nil
}

// GetByTokenID retrieves a token by ledger-side identity.
func (s *TokenStore) GetByTokenID(_ context.Context, tokenID string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byTokenID[tokenID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyToken(s.byID[id]), nil
}

// UpdateState overwrites the mutable counters of one token.
func (s *TokenStore) UpdateState(_ context.Context, upd storage.TokenStateUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[upd.ID]
	if !ok {
		return storage.ErrNotFound
	}

	t.TokensSold = upd.TokensSold
	t.XLMRaised = upd.XLMRaised
	t.CurrentPrice = upd.CurrentPrice
	t.IsLaunched = upd.IsLaunched
	t.LaunchedAt = copyInt64Ptr(upd.LaunchedAt)
	t.UpdatedAt = upd.UpdatedAt
	return nil
}

// List retrieves tokens with their metrics, paged and sorted.
func (s *TokenStore) List(ctx context.Context, opts storage.TokenListOptions) ([]*storage.TokenListing, error) {
	s.mu.RLock()
	listings := make([]*storage.TokenListing, 0, len(s.byID))
	for _, t := range s.byID {
		listings = append(listings, &storage.TokenListing{Token: copyToken(t)})
	}
	metrics := s.metrics
	s.mu.RUnlock()

	if metrics != nil {
		for _, l := range listings {
			m, err := metrics.GetByTokenRowID(ctx, l.Token.ID)
			if err == nil {
				l.Metrics = m
			}
		}
	}

	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		switch opts.Sort {
		case storage.SortOldest:
			return a.Token.CreatedAt < b.Token.CreatedAt
		case storage.SortVolume:
			return metricVolume(a) > metricVolume(b)
		case storage.SortMarketCap:
			return metricMarketCap(a) > metricMarketCap(b)
		default:
			return a.Token.CreatedAt > b.Token.CreatedAt
		}
	})

	start := opts.Offset
	if start < 0 {
		start = 0
	}
	if start >= len(listings) {
		return nil, nil
	}
	end := len(listings)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return listings[start:end], nil
}

func metricVolume(l *storage.TokenListing) int64 {
	if l.Metrics == nil {
		return 0
	}
	return l.Metrics.Volume24h
}

func metricMarketCap(l *storage.TokenListing) int64 {
	if l.Metrics == nil {
		return 0
	}
	return l.Metrics.MarketCap
}

func copyToken(t *domain.Token) *domain.Token {
	if t == nil {
		return nil
	}
	c := *t
	c.ImageURL = copyStringPtr(t.ImageURL)
	c.Description = copyStringPtr(t.Description)
	c.LaunchedAt = copyInt64Ptr(t.LaunchedAt)
	return &c
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyInt64Ptr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
