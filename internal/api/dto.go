package api

import (
	"strconv"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
)

// Integer quantities are serialized as decimal strings: stroop amounts
// overflow the 2^53 window JavaScript clients can represent exactly.

// TokenResponse is the wire shape of one token.
type TokenResponse struct {
	ID              string  `json:"id"`
	TokenID         string  `json:"token_id"`
	ContractAddress string  `json:"contract_address"`
	CreatorAddress  string  `json:"creator_address"`
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	ImageURL        *string `json:"image_url,omitempty"`
	Description     *string `json:"description,omitempty"`

	TotalSupply  string `json:"total_supply"`
	TokensSold   string `json:"tokens_sold"`
	XLMRaised    string `json:"xlm_raised"`
	CurrentPrice string `json:"current_price"`

	LaunchThresholdXLM     string  `json:"launch_threshold_xlm"`
	LaunchThresholdPercent int32   `json:"launch_threshold_percent"`
	LaunchProgress         float64 `json:"launch_progress"`
	IsLaunched             bool    `json:"is_launched"`
	LaunchedAt             *int64  `json:"launched_at,omitempty"`

	CurveType       string `json:"curve_type"`
	BasePrice       string `json:"base_price"`
	PriceMultiplier string `json:"price_multiplier"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`

	Metrics *MetricsResponse `json:"metrics,omitempty"`
}

// MetricsResponse is the wire shape of the derived per-token aggregates.
type MetricsResponse struct {
	HolderCount    int32   `json:"holder_count"`
	Volume24h      string  `json:"volume_24h"`
	Volume7d       string  `json:"volume_7d"`
	VolumeTotal    string  `json:"volume_total"`
	Purchases24h   int32   `json:"purchases_24h"`
	PriceChange24h float64 `json:"price_change_24h"`
	MarketCap      string  `json:"market_cap"`
	UpdatedAt      int64   `json:"updated_at"`
}

// PricePointResponse is one sample of the price history series.
type PricePointResponse struct {
	Timestamp int64  `json:"timestamp"`
	Price     string `json:"price"`
	Volume    string `json:"volume"`
}

// TokenListResponse wraps a page of tokens.
type TokenListResponse struct {
	Tokens []*TokenResponse `json:"tokens"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

func tokenResponse(tok *domain.Token, m *domain.TokenMetrics) *TokenResponse {
	resp := &TokenResponse{
		ID:              tok.ID,
		TokenID:         tok.TokenID,
		ContractAddress: tok.ContractAddress,
		CreatorAddress:  tok.CreatorAddress,
		Name:            tok.Name,
		Symbol:          tok.Symbol,
		ImageURL:        tok.ImageURL,
		Description:     tok.Description,

		TotalSupply:  formatInt(tok.TotalSupply),
		TokensSold:   formatInt(tok.TokensSold),
		XLMRaised:    formatInt(tok.XLMRaised),
		CurrentPrice: formatInt(tok.CurrentPrice),

		LaunchThresholdXLM:     formatInt(tok.LaunchThresholdXLM),
		LaunchThresholdPercent: tok.LaunchThresholdPercent,
		LaunchProgress:         tok.LaunchProgressPercent(),
		IsLaunched:             tok.IsLaunched,
		LaunchedAt:             tok.LaunchedAt,

		CurveType:       string(tok.CurveType),
		BasePrice:       formatInt(tok.BasePrice),
		PriceMultiplier: formatInt(tok.PriceMultiplier),

		CreatedAt: tok.CreatedAt,
		UpdatedAt: tok.UpdatedAt,
	}
	if m != nil {
		resp.Metrics = &MetricsResponse{
			HolderCount:    m.HolderCount,
			Volume24h:      formatInt(m.Volume24h),
			Volume7d:       formatInt(m.Volume7d),
			VolumeTotal:    formatInt(m.VolumeTotal),
			Purchases24h:   m.Purchases24h,
			PriceChange24h: m.PriceChange24h,
			MarketCap:      formatInt(m.MarketCap),
			UpdatedAt:      m.UpdatedAt,
		}
	}
	return resp
}

func pricePointResponse(p *domain.PricePoint) *PricePointResponse {
	return &PricePointResponse{
		Timestamp: p.Timestamp,
		Price:     formatInt(p.Price),
		Volume:    formatInt(p.Volume),
	}
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
