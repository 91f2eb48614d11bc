// Package metrics derives the per-token rolling aggregates served by the
// query surface. Every recompute is from scratch against the sale history,
// so the aggregates can never drift from the source rows and can be rebuilt
// after any manual repair.
package metrics

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/observability"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

var (
	window24h = (24 * time.Hour).Milliseconds()
	window7d  = (7 * 24 * time.Hour).Milliseconds()
)

// Recomputer rebuilds DerivedMetrics rows.
type Recomputer struct {
	tokens    storage.TokenStore
	purchases storage.PurchaseStore
	holders   storage.HolderStore
	metrics   storage.TokenMetricsStore
	logger    *log.Logger
	now       func() int64
	observed  *observability.Metrics
}

// RecomputerOptions contains configuration for creating a Recomputer.
type RecomputerOptions struct {
	TokenStore        storage.TokenStore
	PurchaseStore     storage.PurchaseStore
	HolderStore       storage.HolderStore
	TokenMetricsStore storage.TokenMetricsStore
	Logger            *log.Logger
	Now               func() int64           // optional, for tests
	Metrics           *observability.Metrics // optional
}

// NewRecomputer creates a new Recomputer.
func NewRecomputer(opts RecomputerOptions) *Recomputer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}

	return &Recomputer{
		tokens:    opts.TokenStore,
		purchases: opts.PurchaseStore,
		holders:   opts.HolderStore,
		metrics:   opts.TokenMetricsStore,
		logger:    logger,
		now:       now,
		observed:  opts.Metrics,
	}
}

// Recompute rebuilds the metrics row for one token from its sale history.
func (r *Recomputer) Recompute(ctx context.Context, tokenRowID string) error {
	if r.observed != nil {
		timer := time.Now()
		defer func() {
			r.observed.RecomputeLatency.Observe(time.Since(timer).Seconds())
		}()
	}

	tok, err := r.tokens.GetByID(ctx, tokenRowID)
	if err != nil {
		return fmt.Errorf("load token %s: %w", tokenRowID, err)
	}

	now := r.now()
	since24h := now - window24h
	since7d := now - window7d

	holderCount, err := r.holders.CountActive(ctx, tokenRowID)
	if err != nil {
		return fmt.Errorf("count holders: %w", err)
	}

	volume24h, err := r.purchases.VolumeSince(ctx, tokenRowID, since24h)
	if err != nil {
		return fmt.Errorf("volume 24h: %w", err)
	}
	volume7d, err := r.purchases.VolumeSince(ctx, tokenRowID, since7d)
	if err != nil {
		return fmt.Errorf("volume 7d: %w", err)
	}
	volumeTotal, err := r.purchases.VolumeSince(ctx, tokenRowID, 0)
	if err != nil {
		return fmt.Errorf("volume total: %w", err)
	}

	purchases24h, err := r.purchases.CountSince(ctx, tokenRowID, since24h)
	if err != nil {
		return fmt.Errorf("count purchases 24h: %w", err)
	}

	priceChange, err := r.priceChange24h(ctx, tokenRowID, since24h)
	if err != nil {
		return err
	}

	m := &domain.TokenMetrics{
		TokenRowID:     tokenRowID,
		HolderCount:    int32(holderCount),
		Volume24h:      volume24h,
		Volume7d:       volume7d,
		VolumeTotal:    volumeTotal,
		Purchases24h:   int32(purchases24h),
		PriceChange24h: priceChange,
		MarketCap:      tok.TokensSold * tok.CurrentPrice,
		UpdatedAt:      now,
	}

	if err := r.metrics.Upsert(ctx, m); err != nil {
		return fmt.Errorf("upsert metrics for %s: %w", tokenRowID, err)
	}
	return nil
}

// priceChange24h compares the first and last sale price inside the trailing
// window. Fewer than two sales, or a zero first price, yields 0.
func (r *Recomputer) priceChange24h(ctx context.Context, tokenRowID string, since int64) (float64, error) {
	sales, err := r.purchases.GetByTokenSince(ctx, tokenRowID, since)
	if err != nil {
		return 0, fmt.Errorf("load 24h sales: %w", err)
	}
	if len(sales) < 2 {
		return 0, nil
	}

	first := sales[0].PricePerToken
	last := sales[len(sales)-1].PricePerToken
	if first == 0 {
		return 0, nil
	}
	return float64(last-first) / float64(first) * 100, nil
}
