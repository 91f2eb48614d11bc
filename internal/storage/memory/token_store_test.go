package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

func testToken(id, tokenID string, createdAt int64) *domain.Token {
	return &domain.Token{
		ID:              id,
		TokenID:         tokenID,
		ContractAddress: "CCONTRACT",
		Name:            "Meme",
		Symbol:          "MEME",
		TotalSupply:     1_000_000,
		CurrentPrice:    1000,
		CurveType:       domain.CurveTypeLinear,
		BasePrice:       1000,
		PriceMultiplier: 9000,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func TestTokenStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore()

	tok := testToken("row-1", "MEME", 100)
	require.NoError(t, s.Insert(ctx, tok))

	got, err := s.GetByID(ctx, "row-1")
	require.NoError(t, err)
	require.Equal(t, "MEME", got.TokenID)

	got, err = s.GetByTokenID(ctx, "MEME")
	require.NoError(t, err)
	require.Equal(t, "row-1", got.ID)

	_, err = s.GetByID(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_DuplicateTokenID(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore()

	require.NoError(t, s.Insert(ctx, testToken("row-1", "MEME", 100)))
	err := s.Insert(ctx, testToken("row-2", "MEME", 200))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTokenStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore()
	require.NoError(t, s.Insert(ctx, testToken("row-1", "MEME", 100)))

	got, err := s.GetByID(ctx, "row-1")
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := s.GetByID(ctx, "row-1")
	require.NoError(t, err)
	require.Equal(t, "Meme", again.Name)
}

func TestTokenStore_UpdateState(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore()
	require.NoError(t, s.Insert(ctx, testToken("row-1", "MEME", 100)))

	launchedAt := int64(500)
	err := s.UpdateState(ctx, storage.TokenStateUpdate{
		ID:           "row-1",
		TokensSold:   10,
		XLMRaised:    10_000,
		CurrentPrice: 1001,
		IsLaunched:   true,
		LaunchedAt:   &launchedAt,
		UpdatedAt:    500,
	})
	require.NoError(t, err)

	got, err := s.GetByID(ctx, "row-1")
	require.NoError(t, err)
	require.Equal(t, int64(10), got.TokensSold)
	require.True(t, got.IsLaunched)
	require.NotNil(t, got.LaunchedAt)
	require.Equal(t, int64(500), *got.LaunchedAt)

	err = s.UpdateState(ctx, storage.TokenStateUpdate{ID: "missing"})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_ListSortAndPage(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore()
	metrics := NewTokenMetricsStore()
	s.SetMetricsStore(metrics)

	require.NoError(t, s.Insert(ctx, testToken("row-1", "AAA", 100)))
	require.NoError(t, s.Insert(ctx, testToken("row-2", "BBB", 200)))
	require.NoError(t, s.Insert(ctx, testToken("row-3", "CCC", 300)))

	require.NoError(t, metrics.Upsert(ctx, &domain.TokenMetrics{TokenRowID: "row-1", Volume24h: 50, MarketCap: 900}))
	require.NoError(t, metrics.Upsert(ctx, &domain.TokenMetrics{TokenRowID: "row-3", Volume24h: 10, MarketCap: 5000}))

	newest, err := s.List(ctx, storage.TokenListOptions{Limit: 10, Sort: storage.SortNewest})
	require.NoError(t, err)
	require.Len(t, newest, 3)
	require.Equal(t, "row-3", newest[0].Token.ID)

	oldest, err := s.List(ctx, storage.TokenListOptions{Limit: 10, Sort: storage.SortOldest})
	require.NoError(t, err)
	require.Equal(t, "row-1", oldest[0].Token.ID)

	byVolume, err := s.List(ctx, storage.TokenListOptions{Limit: 10, Sort: storage.SortVolume})
	require.NoError(t, err)
	require.Equal(t, "row-1", byVolume[0].Token.ID)
	require.NotNil(t, byVolume[0].Metrics)

	byCap, err := s.List(ctx, storage.TokenListOptions{Limit: 10, Sort: storage.SortMarketCap})
	require.NoError(t, err)
	require.Equal(t, "row-3", byCap[0].Token.ID)

	page, err := s.List(ctx, storage.TokenListOptions{Limit: 1, Offset: 1, Sort: storage.SortNewest})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "row-2", page[0].Token.ID)

	empty, err := s.List(ctx, storage.TokenListOptions{Limit: 10, Offset: 99})
	require.NoError(t, err)
	require.Empty(t, empty)
}
