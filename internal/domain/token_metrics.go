package domain

// TokenMetrics holds per-token rolling aggregates.
// Fully derivable from purchases + the token row; safe to drop and rebuild.
type TokenMetrics struct {
	TokenRowID     string // one row per token
	HolderCount    int32  // holders with balance > 0
	Volume24h      int64
	Volume7d       int64
	VolumeTotal    int64
	Purchases24h   int32
	PriceChange24h float64 // percent, 0.0 with fewer than two samples
	MarketCap      int64   // tokens_sold * current_price
	UpdatedAt      int64   // Unix ms
}

// PricePoint is one sample of the per-purchase price series.
// Corresponds to the price_points table in ClickHouse.
type PricePoint struct {
	TokenRowID string
	Timestamp  int64 // Unix ms
	Price      int64 // stroops per token
	Volume     int64 // stroops traded at this point
}
