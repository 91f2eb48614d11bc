package postgres

import (
	"context"
	"fmt"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// PurchaseStore implements storage.PurchaseStore using PostgreSQL.
type PurchaseStore struct {
	pool *Pool
}

// NewPurchaseStore creates a new PurchaseStore.
func NewPurchaseStore(pool *Pool) *PurchaseStore {
	return &PurchaseStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PurchaseStore = (*PurchaseStore)(nil)

// Insert adds a new purchase. Returns ErrDuplicateKey if the transaction
// hash already exists.
func (s *PurchaseStore) Insert(ctx context.Context, p *domain.Purchase) error {
	query := `
		INSERT INTO purchases (
			id, token_row_id, buyer_address, xlm_amount, tokens_received,
			price_per_token, transaction_hash, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		p.ID, p.TokenRowID, p.BuyerAddress, p.XLMAmount, p.TokensReceived,
		p.PricePerToken, p.TransactionHash, p.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// GetByTokenSince retrieves purchases for a token with created_at >= since,
// ordered by created_at ASC. since <= 0 means all history.
func (s *PurchaseStore) GetByTokenSince(ctx context.Context, tokenRowID string, since int64) ([]*domain.Purchase, error) {
	query := `
		SELECT id, token_row_id, buyer_address, xlm_amount, tokens_received,
			price_per_token, transaction_hash, created_at
		FROM purchases
		WHERE token_row_id = $1 AND created_at >= $2
		ORDER BY created_at ASC
	`

	if since < 0 {
		since = 0
	}

	rows, err := s.pool.Query(ctx, query, tokenRowID, since)
	if err != nil {
		return nil, fmt.Errorf("get purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		err := rows.Scan(
			&p.ID, &p.TokenRowID, &p.BuyerAddress, &p.XLMAmount, &p.TokensReceived,
			&p.PricePerToken, &p.TransactionHash, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}
		purchases = append(purchases, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase rows: %w", err)
	}

	return purchases, nil
}

// VolumeSince sums xlm_amount for a token with created_at >= since.
func (s *PurchaseStore) VolumeSince(ctx context.Context, tokenRowID string, since int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(xlm_amount), 0)
		FROM purchases
		WHERE token_row_id = $1 AND created_at >= $2
	`

	if since < 0 {
		since = 0
	}

	var total int64
	if err := s.pool.QueryRow(ctx, query, tokenRowID, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum purchase volume: %w", err)
	}
	return total, nil
}

// CountSince counts purchases for a token with created_at >= since.
func (s *PurchaseStore) CountSince(ctx context.Context, tokenRowID string, since int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM purchases
		WHERE token_row_id = $1 AND created_at >= $2
	`

	if since < 0 {
		since = 0
	}

	var count int64
	if err := s.pool.QueryRow(ctx, query, tokenRowID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count purchases: %w", err)
	}
	return count, nil
}

// TotalsForToken sums xlm_amount and tokens_received over a token's full
// sale history.
func (s *PurchaseStore) TotalsForToken(ctx context.Context, tokenRowID string) (int64, int64, error) {
	query := `
		SELECT COALESCE(SUM(xlm_amount), 0), COALESCE(SUM(tokens_received), 0)
		FROM purchases
		WHERE token_row_id = $1
	`

	var xlm, tokens int64
	if err := s.pool.QueryRow(ctx, query, tokenRowID).Scan(&xlm, &tokens); err != nil {
		return 0, 0, fmt.Errorf("sum purchase totals: %w", err)
	}
	return xlm, tokens, nil
}
