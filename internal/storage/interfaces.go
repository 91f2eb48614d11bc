package storage

import (
	"context"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
)

// TokenSort orders token listings for the query surface.
type TokenSort string

// Supported listing orders.
const (
	SortNewest    TokenSort = "newest"
	SortOldest    TokenSort = "oldest"
	SortVolume    TokenSort = "volume"
	SortMarketCap TokenSort = "market_cap"
)

// TokenListOptions bound and order a token listing.
type TokenListOptions struct {
	Limit  int
	Offset int
	Sort   TokenSort
}

// TokenListing pairs a token row with its metrics for read queries.
// Metrics is nil when no aggregate has been computed yet.
type TokenListing struct {
	Token   *domain.Token
	Metrics *domain.TokenMetrics
}

// TokenStateUpdate carries the mutable token counters for one update.
type TokenStateUpdate struct {
	ID           string
	TokensSold   int64
	XLMRaised    int64
	CurrentPrice int64
	IsLaunched   bool
	LaunchedAt   *int64
	UpdatedAt    int64
}

// TokenStore provides access to the tokens table.
type TokenStore interface {
	// Insert adds a new token. Returns ErrDuplicateKey if the ledger-side
	// token identity already has a row.
	Insert(ctx context.Context, t *domain.Token) error

	// GetByID retrieves a token by internal ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*domain.Token, error)

	// GetByTokenID retrieves a token by its ledger-side identity.
	// Returns ErrNotFound if absent.
	GetByTokenID(ctx context.Context, tokenID string) (*domain.Token, error)

	// UpdateState overwrites the mutable counters of one token.
	UpdateState(ctx context.Context, upd TokenStateUpdate) error

	// List retrieves tokens with their metrics, paged and sorted.
	List(ctx context.Context, opts TokenListOptions) ([]*TokenListing, error)
}

// PurchaseStore provides access to the purchases table.
type PurchaseStore interface {
	// Insert adds a new purchase. Returns ErrDuplicateKey if the
	// transaction hash already exists.
	Insert(ctx context.Context, p *domain.Purchase) error

	// GetByTokenSince retrieves purchases for a token with created_at >= since,
	// ordered by created_at ASC. since <= 0 means all history.
	GetByTokenSince(ctx context.Context, tokenRowID string, since int64) ([]*domain.Purchase, error)

	// VolumeSince sums xlm_amount for a token with created_at >= since.
	VolumeSince(ctx context.Context, tokenRowID string, since int64) (int64, error)

	// CountSince counts purchases for a token with created_at >= since.
	CountSince(ctx context.Context, tokenRowID string, since int64) (int64, error)

	// TotalsForToken sums xlm_amount and tokens_received over a token's full
	// sale history. The sale rows are the source of truth for the token's
	// sold/raised counters, so these sums let a caller rebuild them.
	TotalsForToken(ctx context.Context, tokenRowID string) (xlmTotal, tokensTotal int64, err error)
}

// HolderStore provides access to the holders table.
type HolderStore interface {
	// ApplyPurchase upserts the (token, holder) position: balance and total
	// purchased accumulate, timestamps touch. Must be atomic so re-application
	// after a crash is non-destructive.
	ApplyPurchase(ctx context.Context, tokenRowID, holderAddress string, amount, now int64) error

	// Get retrieves one position. Returns ErrNotFound if absent.
	Get(ctx context.Context, tokenRowID, holderAddress string) (*domain.Holder, error)

	// CountActive counts holders of a token with balance > 0.
	CountActive(ctx context.Context, tokenRowID string) (int64, error)
}

// TokenMetricsStore provides access to the token_metrics table.
// One row per token, always safe to overwrite.
type TokenMetricsStore interface {
	// Upsert replaces the metrics row for a token.
	Upsert(ctx context.Context, m *domain.TokenMetrics) error

	// GetByTokenRowID retrieves metrics. Returns ErrNotFound if absent.
	GetByTokenRowID(ctx context.Context, tokenRowID string) (*domain.TokenMetrics, error)
}

// CursorStore persists the pipeline position, one row per contract address.
type CursorStore interface {
	// Get returns the persisted cursor. Returns ErrNotFound before the
	// first checkpoint.
	Get(ctx context.Context, contractAddress string) (*domain.IndexerCursor, error)

	// Set upserts the cursor row.
	Set(ctx context.Context, c *domain.IndexerCursor) error
}

// PricePointStore provides access to the per-purchase price series.
type PricePointStore interface {
	// Insert appends one price sample.
	Insert(ctx context.Context, p *domain.PricePoint) error

	// GetByTokenRange retrieves samples within [start, end], ordered by
	// timestamp ASC. end <= 0 means no upper bound.
	GetByTokenRange(ctx context.Context, tokenRowID string, start, end int64) ([]*domain.PricePoint, error)
}
