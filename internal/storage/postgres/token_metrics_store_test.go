package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

func TestTokenMetricsStore_UpsertReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	createTestToken(t, ctx, pool, "row-1", "MEME", 100)

	store := NewTokenMetricsStore(pool)
	require.NoError(t, store.Upsert(ctx, &domain.TokenMetrics{
		TokenRowID:  "row-1",
		HolderCount: 1,
		VolumeTotal: 1000,
		UpdatedAt:   100,
	}))
	require.NoError(t, store.Upsert(ctx, &domain.TokenMetrics{
		TokenRowID:     "row-1",
		HolderCount:    3,
		Volume24h:      500,
		VolumeTotal:    2000,
		Purchases24h:   2,
		PriceChange24h: 12.5,
		MarketCap:      9000,
		UpdatedAt:      200,
	}))

	got, err := store.GetByTokenRowID(ctx, "row-1")
	require.NoError(t, err)
	require.Equal(t, int32(3), got.HolderCount)
	require.Equal(t, int64(2000), got.VolumeTotal)
	require.InDelta(t, 12.5, got.PriceChange24h, 1e-9)
	require.Equal(t, int64(200), got.UpdatedAt)

	_, err = store.GetByTokenRowID(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
