// Package indexer drives the ledger ingestion pipeline: polling operations
// from Horizon, classifying the ones addressed to the launchpad contract,
// and projecting them into the materialized view.
package indexer

import (
	"strconv"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/horizon"
	"github.com/debojyoti10CC/pmpfun/internal/stellar"
)

// Contract entry points recognized by the pipeline. Unknown function names
// are ignored so new ledger-side entry points don't break ingestion.
const (
	fnCreateToken      = "create_token"
	fnBuyTokens        = "buy_tokens"
	fnLaunchTransition = "execute_launch_transition"
)

// Classifier maps raw ledger operations to typed launchpad events.
// It is pure: no I/O, no mutable state.
type Classifier struct {
	contractAddress string
}

// NewClassifier creates a classifier bound to one contract address.
func NewClassifier(contractAddress string) *Classifier {
	return &Classifier{contractAddress: contractAddress}
}

// Classify inspects one operation and extracts a typed event if the
// operation is an invocation of a recognized launchpad entry point on the
// configured contract. Returns (nil, false) for everything else.
//
// Fields that cannot be read from the operation view are left as zero or
// unknown-sentinel values; the applier decides whether it can reconstruct
// them or has to skip the event.
func (c *Classifier) Classify(op *horizon.Operation) (domain.Event, bool) {
	if op == nil || op.TypeI != horizon.OpTypeInvokeHostFunction {
		return nil, false
	}
	if op.Contract != c.contractAddress {
		return nil, false
	}

	switch op.Function {
	case fnCreateToken:
		return c.classifyCreated(op), true
	case fnBuyTokens:
		return c.classifyPurchased(op), true
	case fnLaunchTransition:
		return c.classifyLaunched(op), true
	default:
		return nil, false
	}
}

// create_token(creator, name, symbol, total_supply, launch_threshold_xlm,
// launch_threshold_percent, curve_type, base_price, price_multiplier).
// The contract keys storage by symbol, so the symbol doubles as token_id.
func (c *Classifier) classifyCreated(op *horizon.Operation) *domain.CreatedEvent {
	symbol := paramString(op, 2)

	curveType := domain.CurveType(paramString(op, 6))
	if curveType != domain.CurveTypeLinear && curveType != domain.CurveTypeQuadratic {
		curveType = domain.CurveTypeLinear
	}

	return &domain.CreatedEvent{
		TransactionHash:        op.TransactionHash,
		TokenID:                symbol,
		Creator:                paramAddress(op, 0),
		Name:                   paramString(op, 1),
		Symbol:                 symbol,
		TotalSupply:            paramInt(op, 3),
		LaunchThresholdXLM:     paramInt(op, 4),
		LaunchThresholdPercent: int32(paramInt(op, 5)),
		CurveType:              curveType,
		BasePrice:              paramInt(op, 7),
		PriceMultiplier:        paramInt(op, 8),
		Timestamp:              op.CreatedAt.UnixMilli(),
	}
}

// buy_tokens(buyer, token_id, xlm_amount). Tokens received and the
// post-trade price are not visible on the operation view; the applier
// reconstructs them from the bonding curve.
func (c *Classifier) classifyPurchased(op *horizon.Operation) *domain.PurchasedEvent {
	return &domain.PurchasedEvent{
		TransactionHash: op.TransactionHash,
		TokenID:         paramString(op, 1),
		Buyer:           paramAddress(op, 0),
		XLMAmount:       paramInt(op, 2),
		Timestamp:       op.CreatedAt.UnixMilli(),
	}
}

// execute_launch_transition(token_id). Final counters default to the
// projected row when absent.
func (c *Classifier) classifyLaunched(op *horizon.Operation) *domain.LaunchedEvent {
	return &domain.LaunchedEvent{
		TransactionHash: op.TransactionHash,
		TokenID:         paramString(op, 0),
		FinalPrice:      paramInt(op, 1),
		XLMRaised:       paramInt(op, 2),
		TokensSold:      paramInt(op, 3),
		Timestamp:       op.CreatedAt.UnixMilli(),
	}
}

// paramString returns the i-th parameter value, or "" when absent.
func paramString(op *horizon.Operation, i int) string {
	if i < 0 || i >= len(op.Parameters) {
		return ""
	}
	return op.Parameters[i].Value
}

// paramInt parses the i-th parameter as a base-10 integer, 0 when absent
// or malformed.
func paramInt(op *horizon.Operation, i int) int64 {
	v := paramString(op, i)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// paramAddress returns the i-th parameter as a validated account address,
// falling back to the operation's source account. An unknown sentinel is
// returned when neither passes strkey validation.
func paramAddress(op *horizon.Operation, i int) domain.Address {
	if v := paramString(op, i); stellar.IsAccountID(v) {
		return domain.AddressOf(v)
	}
	if stellar.IsAccountID(op.SourceAccount) {
		return domain.AddressOf(op.SourceAccount)
	}
	return domain.UnknownAddress()
}
