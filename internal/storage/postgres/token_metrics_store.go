package postgres

import (
	"context"
	"fmt"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// TokenMetricsStore implements storage.TokenMetricsStore using PostgreSQL.
type TokenMetricsStore struct {
	pool *Pool
}

// NewTokenMetricsStore creates a new TokenMetricsStore.
func NewTokenMetricsStore(pool *Pool) *TokenMetricsStore {
	return &TokenMetricsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenMetricsStore = (*TokenMetricsStore)(nil)

// Upsert replaces the metrics row for a token.
func (s *TokenMetricsStore) Upsert(ctx context.Context, m *domain.TokenMetrics) error {
	query := `
		INSERT INTO token_metrics (
			token_row_id, holder_count, volume_24h, volume_7d, volume_total,
			purchases_24h, price_change_24h, market_cap, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (token_row_id) DO UPDATE SET
			holder_count = EXCLUDED.holder_count,
			volume_24h = EXCLUDED.volume_24h,
			volume_7d = EXCLUDED.volume_7d,
			volume_total = EXCLUDED.volume_total,
			purchases_24h = EXCLUDED.purchases_24h,
			price_change_24h = EXCLUDED.price_change_24h,
			market_cap = EXCLUDED.market_cap,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		m.TokenRowID, m.HolderCount, m.Volume24h, m.Volume7d, m.VolumeTotal,
		m.Purchases24h, m.PriceChange24h, m.MarketCap, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert token metrics: %w", err)
	}
	return nil
}

// GetByTokenRowID retrieves metrics. Returns ErrNotFound if absent.
func (s *TokenMetricsStore) GetByTokenRowID(ctx context.Context, tokenRowID string) (*domain.TokenMetrics, error) {
	query := `
		SELECT token_row_id, holder_count, volume_24h, volume_7d, volume_total,
			purchases_24h, price_change_24h, market_cap, updated_at
		FROM token_metrics
		WHERE token_row_id = $1
	`

	var m domain.TokenMetrics
	err := s.pool.QueryRow(ctx, query, tokenRowID).Scan(
		&m.TokenRowID, &m.HolderCount, &m.Volume24h, &m.Volume7d, &m.VolumeTotal,
		&m.Purchases24h, &m.PriceChange24h, &m.MarketCap, &m.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token metrics: %w", err)
	}
	return &m, nil
}
