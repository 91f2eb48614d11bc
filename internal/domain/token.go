package domain

// CurveType identifies the bonding curve shape.
type CurveType string

// Supported curve types.
const (
	CurveTypeLinear    CurveType = "linear"
	CurveTypeQuadratic CurveType = "quadratic"
)

// Token represents one bonding-curve-sold asset.
// Corresponds to the tokens table in PostgreSQL.
type Token struct {
	ID              string // internal UUID
	TokenID         string // ledger-side token identity (contract token key)
	ContractAddress string // launchpad contract this token belongs to
	CreatorAddress  string // account that invoked create_token
	IssuerAddress   string // Stellar asset issuer account
	DistributionAdr string // account holding the unsold supply

	// Metadata
	Name        string
	Symbol      string
	ImageURL    *string
	Description *string

	// Supply and economics, smallest payment-currency unit (stroops)
	TotalSupply  int64
	TokensSold   int64
	XLMRaised    int64
	CurrentPrice int64

	// Launch configuration
	LaunchThresholdXLM     int64
	LaunchThresholdPercent int32
	IsLaunched             bool
	LaunchedAt             *int64 // Unix ms, set once on launch

	// Curve parameters
	CurveType       CurveType
	BasePrice       int64
	PriceMultiplier int64

	CreatedAt int64 // Unix ms
	UpdatedAt int64 // Unix ms
}

// LaunchProgressPercent reports progress toward launch as 0..100.
// The XLM threshold takes precedence; percent-of-supply is the fallback.
func (t *Token) LaunchProgressPercent() float64 {
	var progress float64
	if t.LaunchThresholdXLM > 0 {
		progress = float64(t.XLMRaised) / float64(t.LaunchThresholdXLM) * 100.0
	} else if t.TotalSupply > 0 {
		progress = float64(t.TokensSold) / float64(t.TotalSupply) * 100.0
	}
	if progress > 100.0 {
		progress = 100.0
	}
	return progress
}
