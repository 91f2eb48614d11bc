package postgres

import (
	"context"
	"fmt"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// CursorStore implements storage.CursorStore using PostgreSQL.
type CursorStore struct {
	pool *Pool
}

// NewCursorStore creates a new CursorStore.
func NewCursorStore(pool *Pool) *CursorStore {
	return &CursorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CursorStore = (*CursorStore)(nil)

// Get returns the persisted cursor. Returns ErrNotFound before the
// first checkpoint.
func (s *CursorStore) Get(ctx context.Context, contractAddress string) (*domain.IndexerCursor, error) {
	query := `
		SELECT contract_address, cursor_value, updated_at
		FROM indexer_cursors
		WHERE contract_address = $1
	`

	var c domain.IndexerCursor
	err := s.pool.QueryRow(ctx, query, contractAddress).Scan(
		&c.ContractAddress, &c.Cursor, &c.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get indexer cursor: %w", err)
	}
	return &c, nil
}

// Set upserts the cursor row.
func (s *CursorStore) Set(ctx context.Context, c *domain.IndexerCursor) error {
	query := `
		INSERT INTO indexer_cursors (contract_address, cursor_value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (contract_address) DO UPDATE SET
			cursor_value = EXCLUDED.cursor_value,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, c.ContractAddress, c.Cursor, c.UpdatedAt); err != nil {
		return fmt.Errorf("set indexer cursor: %w", err)
	}
	return nil
}
