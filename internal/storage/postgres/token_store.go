package postgres

import (
	"context"
	"fmt"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

const tokenColumns = `
	id, token_id, contract_address, creator_address, issuer_address,
	distribution_address, name, symbol, image_url, description,
	total_supply, tokens_sold, xlm_raised, current_price,
	launch_threshold_xlm, launch_threshold_percent, is_launched, launched_at,
	curve_type, base_price, price_multiplier, created_at, updated_at
`

// Insert adds a new token. Returns ErrDuplicateKey if token_id exists.
func (s *TokenStore) Insert(ctx context.Context, t *domain.Token) error {
	query := `
		INSERT INTO tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.TokenID, t.ContractAddress, t.CreatorAddress, t.IssuerAddress,
		t.DistributionAdr, t.Name, t.Symbol, t.ImageURL, t.Description,
		t.TotalSupply, t.TokensSold, t.XLMRaised, t.CurrentPrice,
		t.LaunchThresholdXLM, t.LaunchThresholdPercent, t.IsLaunched, t.LaunchedAt,
		t.CurveType, t.BasePrice, t.PriceMultiplier, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// GetByID retrieves a token by internal ID. Returns ErrNotFound if absent.
func (s *TokenStore) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	return s.getWhere(ctx, "id = $1", id)
}

// GetByTokenID retrieves a token by ledger-side identity. Returns ErrNotFound if absent.
func (s *TokenStore) GetByTokenID(ctx context.Context, tokenID string) (*domain.Token, error) {
	return s.getWhere(ctx, "token_id = $1", tokenID)
}

func (s *TokenStore) getWhere(ctx context.Context, cond string, arg any) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE ` + cond

	row := s.pool.QueryRow(ctx, query, arg)

	var t domain.Token
	err := row.Scan(
		&t.ID, &t.TokenID, &t.ContractAddress, &t.CreatorAddress, &t.IssuerAddress,
		&t.DistributionAdr, &t.Name, &t.Symbol, &t.ImageURL, &t.Description,
		&t.TotalSupply, &t.TokensSold, &t.XLMRaised, &t.CurrentPrice,
		&t.LaunchThresholdXLM, &t.LaunchThresholdPercent, &t.IsLaunched, &t.LaunchedAt,
		&t.CurveType, &t.BasePrice, &t.PriceMultiplier, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return &t, nil
}

// UpdateState overwrites the mutable counters of one token.
func (s *TokenStore) UpdateState(ctx context.Context, upd storage.TokenStateUpdate) error {
	query := `
		UPDATE tokens
		SET tokens_sold = $2, xlm_raised = $3, current_price = $4,
			is_launched = $5, launched_at = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		upd.ID, upd.TokensSold, upd.XLMRaised, upd.CurrentPrice,
		upd.IsLaunched, upd.LaunchedAt, upd.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update token state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List retrieves tokens with their metrics, paged and sorted.
func (s *TokenStore) List(ctx context.Context, opts storage.TokenListOptions) ([]*storage.TokenListing, error) {
	order := "t.created_at DESC"
	switch opts.Sort {
	case storage.SortOldest:
		order = "t.created_at ASC"
	case storage.SortVolume:
		order = "COALESCE(tm.volume_24h, 0) DESC"
	case storage.SortMarketCap:
		order = "COALESCE(tm.market_cap, 0) DESC"
	case storage.SortNewest, "":
		// default
	}

	query := fmt.Sprintf(`
		SELECT
			t.id, t.token_id, t.contract_address, t.creator_address, t.issuer_address,
			t.distribution_address, t.name, t.symbol, t.image_url, t.description,
			t.total_supply, t.tokens_sold, t.xlm_raised, t.current_price,
			t.launch_threshold_xlm, t.launch_threshold_percent, t.is_launched, t.launched_at,
			t.curve_type, t.base_price, t.price_multiplier, t.created_at, t.updated_at,
			tm.token_row_id, tm.holder_count, tm.volume_24h, tm.volume_7d, tm.volume_total,
			tm.purchases_24h, tm.price_change_24h, tm.market_cap, tm.updated_at
		FROM tokens t
		LEFT JOIN token_metrics tm ON t.id = tm.token_row_id
		ORDER BY %s
		LIMIT $1 OFFSET $2
	`, order)

	rows, err := s.pool.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var listings []*storage.TokenListing
	for rows.Next() {
		var t domain.Token
		var metricsRowID *string
		var holderCount, purchases24h *int32
		var volume24h, volume7d, volumeTotal, marketCap *int64
		var priceChange *float64
		var metricsUpdatedAt *int64

		err := rows.Scan(
			&t.ID, &t.TokenID, &t.ContractAddress, &t.CreatorAddress, &t.IssuerAddress,
			&t.DistributionAdr, &t.Name, &t.Symbol, &t.ImageURL, &t.Description,
			&t.TotalSupply, &t.TokensSold, &t.XLMRaised, &t.CurrentPrice,
			&t.LaunchThresholdXLM, &t.LaunchThresholdPercent, &t.IsLaunched, &t.LaunchedAt,
			&t.CurveType, &t.BasePrice, &t.PriceMultiplier, &t.CreatedAt, &t.UpdatedAt,
			&metricsRowID, &holderCount, &volume24h, &volume7d, &volumeTotal,
			&purchases24h, &priceChange, &marketCap, &metricsUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}

		listing := &storage.TokenListing{Token: &t}
		if metricsRowID != nil {
			listing.Metrics = &domain.TokenMetrics{
				TokenRowID:     *metricsRowID,
				HolderCount:    *holderCount,
				Volume24h:      *volume24h,
				Volume7d:       *volume7d,
				VolumeTotal:    *volumeTotal,
				Purchases24h:   *purchases24h,
				PriceChange24h: *priceChange,
				MarketCap:      *marketCap,
				UpdatedAt:      *metricsUpdatedAt,
			}
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}

	return listings, nil
}
