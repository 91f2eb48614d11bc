package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
	"github.com/debojyoti10CC/pmpfun/internal/storage/memory"
)

const testNow = int64(1_700_000_000_000)

type fixture struct {
	recomputer *Recomputer
	tokens     *memory.TokenStore
	purchases  *memory.PurchaseStore
	holders    *memory.HolderStore
	metrics    *memory.TokenMetricsStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		tokens:    memory.NewTokenStore(),
		purchases: memory.NewPurchaseStore(),
		holders:   memory.NewHolderStore(),
		metrics:   memory.NewTokenMetricsStore(),
	}
	f.recomputer = NewRecomputer(RecomputerOptions{
		TokenStore:        f.tokens,
		PurchaseStore:     f.purchases,
		HolderStore:       f.holders,
		TokenMetricsStore: f.metrics,
		Now:               func() int64 { return testNow },
	})

	require.NoError(t, f.tokens.Insert(context.Background(), &domain.Token{
		ID:              "row-1",
		TokenID:         "MEME",
		TotalSupply:     1_000_000,
		TokensSold:      1000,
		CurrentPrice:    2000,
		CurveType:       domain.CurveTypeLinear,
		BasePrice:       1000,
		PriceMultiplier: 9000,
		CreatedAt:       testNow - 100_000,
		UpdatedAt:       testNow,
	}))
	return f
}

func (f *fixture) addPurchase(t *testing.T, id string, age time.Duration, xlm, price int64) {
	t.Helper()

	var received int64
	if price > 0 {
		received = xlm / price
	}
	require.NoError(t, f.purchases.Insert(context.Background(), &domain.Purchase{
		ID:              id,
		TokenRowID:      "row-1",
		BuyerAddress:    "GBUYER" + id,
		XLMAmount:       xlm,
		TokensReceived:  received,
		PricePerToken:   price,
		TransactionHash: "tx-" + id,
		CreatedAt:       testNow - age.Milliseconds(),
	}))
}

func TestRecompute_Windows(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.addPurchase(t, "a", 1*time.Hour, 1000, 100)
	f.addPurchase(t, "b", 30*time.Hour, 2000, 100)
	f.addPurchase(t, "c", 8*24*time.Hour, 4000, 100)

	require.NoError(t, f.holders.ApplyPurchase(ctx, "row-1", "GBUYER1", 10, testNow))
	require.NoError(t, f.holders.ApplyPurchase(ctx, "row-1", "GBUYER2", 20, testNow))

	require.NoError(t, f.recomputer.Recompute(ctx, "row-1"))

	m, err := f.metrics.GetByTokenRowID(ctx, "row-1")
	require.NoError(t, err)
	require.Equal(t, int32(2), m.HolderCount)
	require.Equal(t, int64(1000), m.Volume24h)
	require.Equal(t, int64(3000), m.Volume7d)
	require.Equal(t, int64(7000), m.VolumeTotal)
	require.Equal(t, int32(1), m.Purchases24h)
	require.Equal(t, int64(1000*2000), m.MarketCap)
	require.Equal(t, testNow, m.UpdatedAt)
}

func TestRecompute_PriceChange24h(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Three sales within 24h at prices 100, 150, 200.
	f.addPurchase(t, "a", 3*time.Hour, 1000, 100)
	f.addPurchase(t, "b", 2*time.Hour, 1500, 150)
	f.addPurchase(t, "c", 1*time.Hour, 2000, 200)

	require.NoError(t, f.recomputer.Recompute(ctx, "row-1"))

	m, err := f.metrics.GetByTokenRowID(ctx, "row-1")
	require.NoError(t, err)
	require.InDelta(t, 100.0, m.PriceChange24h, 1e-9)
}

func TestRecompute_PriceChangeNeedsTwoSamples(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.addPurchase(t, "a", 1*time.Hour, 1000, 100)
	require.NoError(t, f.recomputer.Recompute(ctx, "row-1"))

	m, err := f.metrics.GetByTokenRowID(ctx, "row-1")
	require.NoError(t, err)
	require.Zero(t, m.PriceChange24h)
}

func TestRecompute_ZeroFirstPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.addPurchase(t, "a", 3*time.Hour, 1000, 0)
	f.addPurchase(t, "b", 1*time.Hour, 2000, 200)
	require.NoError(t, f.recomputer.Recompute(ctx, "row-1"))

	m, err := f.metrics.GetByTokenRowID(ctx, "row-1")
	require.NoError(t, err)
	require.Zero(t, m.PriceChange24h)
}

func TestRecompute_UnknownToken(t *testing.T) {
	f := newFixture(t)

	err := f.recomputer.Recompute(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
