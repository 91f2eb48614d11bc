package clickhouse

import (
	"context"
	"fmt"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// PricePointStore implements storage.PricePointStore using ClickHouse.
// MergeTree does not enforce uniqueness; the applier only writes one point
// per purchase transaction, so duplicates cannot arise upstream.
type PricePointStore struct {
	conn *Conn
}

// NewPricePointStore creates a new PricePointStore.
func NewPricePointStore(conn *Conn) *PricePointStore {
	return &PricePointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// Insert appends one price sample.
func (s *PricePointStore) Insert(ctx context.Context, p *domain.PricePoint) error {
	query := `
		INSERT INTO price_points (token_row_id, timestamp_ms, price, volume)
		VALUES (?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query, p.TokenRowID, uint64(p.Timestamp), p.Price, p.Volume)
	if err != nil {
		return fmt.Errorf("insert price point: %w", err)
	}
	return nil
}

// GetByTokenRange retrieves samples within [start, end], ordered by
// timestamp ASC. end <= 0 means no upper bound.
func (s *PricePointStore) GetByTokenRange(ctx context.Context, tokenRowID string, start, end int64) ([]*domain.PricePoint, error) {
	if start < 0 {
		start = 0
	}

	query := `
		SELECT token_row_id, timestamp_ms, price, volume
		FROM price_points
		WHERE token_row_id = ? AND timestamp_ms >= ?
	`
	args := []any{tokenRowID, uint64(start)}
	if end > 0 {
		query += ` AND timestamp_ms <= ?`
		args = append(args, uint64(end))
	}
	query += ` ORDER BY timestamp_ms ASC`

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query price points: %w", err)
	}
	defer rows.Close()

	var points []*domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		var timestampMs uint64

		if err := rows.Scan(&p.TokenRowID, &timestampMs, &p.Price, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan price point row: %w", err)
		}

		p.Timestamp = int64(timestampMs)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price point rows: %w", err)
	}

	return points, nil
}
