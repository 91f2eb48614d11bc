package postgres

import (
	"context"
	"fmt"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// HolderStore implements storage.HolderStore using PostgreSQL.
type HolderStore struct {
	pool *Pool
}

// NewHolderStore creates a new HolderStore.
func NewHolderStore(pool *Pool) *HolderStore {
	return &HolderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.HolderStore = (*HolderStore)(nil)

// ApplyPurchase upserts the (token, holder) position in a single statement
// so concurrent or replayed applies accumulate correctly.
func (s *HolderStore) ApplyPurchase(ctx context.Context, tokenRowID, holderAddress string, amount, now int64) error {
	if amount <= 0 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO holders (
			token_row_id, holder_address, balance, first_purchase_at,
			last_purchase_at, total_purchased
		)
		VALUES ($1, $2, $3, $4, $4, $3)
		ON CONFLICT (token_row_id, holder_address) DO UPDATE SET
			balance = holders.balance + EXCLUDED.balance,
			total_purchased = holders.total_purchased + EXCLUDED.total_purchased,
			last_purchase_at = EXCLUDED.last_purchase_at
	`

	if _, err := s.pool.Exec(ctx, query, tokenRowID, holderAddress, amount, now); err != nil {
		return fmt.Errorf("apply holder purchase: %w", err)
	}
	return nil
}

// Get retrieves one position. Returns ErrNotFound if absent.
func (s *HolderStore) Get(ctx context.Context, tokenRowID, holderAddress string) (*domain.Holder, error) {
	query := `
		SELECT token_row_id, holder_address, balance, first_purchase_at,
			last_purchase_at, total_purchased
		FROM holders
		WHERE token_row_id = $1 AND holder_address = $2
	`

	var h domain.Holder
	err := s.pool.QueryRow(ctx, query, tokenRowID, holderAddress).Scan(
		&h.TokenRowID, &h.HolderAddress, &h.Balance, &h.FirstPurchaseAt,
		&h.LastPurchaseAt, &h.TotalPurchased,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get holder: %w", err)
	}
	return &h, nil
}

// CountActive counts holders of a token with balance > 0.
func (s *HolderStore) CountActive(ctx context.Context, tokenRowID string) (int64, error) {
	query := `SELECT COUNT(*) FROM holders WHERE token_row_id = $1 AND balance > 0`

	var count int64
	if err := s.pool.QueryRow(ctx, query, tokenRowID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count holders: %w", err)
	}
	return count, nil
}
