package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/debojyoti10CC/pmpfun/internal/curve"
	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// Recomputer refreshes derived aggregates for one token row after the
// applier has mutated its sale history.
type Recomputer interface {
	Recompute(ctx context.Context, tokenRowID string) error
}

// Notifier receives applied purchases for live feeds. Implementations must
// not block the pipeline.
type Notifier interface {
	NotifyPurchase(token *domain.Token, purchase *domain.Purchase)
}

// Applier projects typed events into the materialized view. Each event is
// an idempotent state transition: re-applying a delivered-twice event
// leaves the view unchanged.
//
// Only store failures are returned as errors; every other problem with a
// single event is logged and the event skipped, because a later retry of
// the same ledger range is not guaranteed.
type Applier struct {
	contractAddress string

	tokens     storage.TokenStore
	purchases  storage.PurchaseStore
	holders    storage.HolderStore
	prices     storage.PricePointStore
	recomputer Recomputer
	notifier   Notifier
	logger     *log.Logger
	now        func() int64
	newID      func() string
}

// ApplierOptions contains configuration for creating an Applier.
type ApplierOptions struct {
	ContractAddress string

	TokenStore      storage.TokenStore
	PurchaseStore   storage.PurchaseStore
	HolderStore     storage.HolderStore
	PricePointStore storage.PricePointStore // optional
	Recomputer      Recomputer              // optional
	Notifier        Notifier                // optional
	Logger          *log.Logger
	Now             func() int64  // optional, for tests
	NewID           func() string // optional, for tests
}

// NewApplier creates a new Applier.
func NewApplier(opts ApplierOptions) *Applier {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = nowMillis
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &Applier{
		contractAddress: opts.ContractAddress,

		tokens:     opts.TokenStore,
		purchases:  opts.PurchaseStore,
		holders:    opts.HolderStore,
		prices:     opts.PricePointStore,
		recomputer: opts.Recomputer,
		notifier:   opts.Notifier,
		logger:     logger,
		now:        now,
		newID:      newID,
	}
}

// Apply projects one typed event. A nil return means the pipeline may
// advance past this event; a non-nil return means a store failed and the
// event must be retried before the cursor is persisted.
func (a *Applier) Apply(ctx context.Context, ev domain.Event) error {
	switch e := ev.(type) {
	case *domain.CreatedEvent:
		return a.applyCreated(ctx, e)
	case *domain.PurchasedEvent:
		return a.applyPurchased(ctx, e)
	case *domain.LaunchedEvent:
		return a.applyLaunched(ctx, e)
	default:
		a.logger.Printf("[applier] dropping event of unknown kind %q tx=%s", ev.Kind(), ev.Tx())
		return nil
	}
}

func (a *Applier) applyCreated(ctx context.Context, ev *domain.CreatedEvent) error {
	if ev.TokenID == "" {
		a.logger.Printf("[applier] created event without token identity, skipping tx=%s", ev.TransactionHash)
		return nil
	}

	params := curve.Params{
		Type:            ev.CurveType,
		BasePrice:       ev.BasePrice,
		PriceMultiplier: ev.PriceMultiplier,
	}
	if err := curve.Validate(params, ev.TotalSupply); err != nil {
		a.logger.Printf("[applier] created event with invalid curve, skipping tx=%s: %v", ev.TransactionHash, err)
		return nil
	}

	// A token with no positive threshold could never launch.
	if ev.LaunchThresholdXLM <= 0 && ev.LaunchThresholdPercent <= 0 {
		a.logger.Printf("[applier] created event without launch threshold, skipping tx=%s", ev.TransactionHash)
		return nil
	}

	creator := ""
	if ev.Creator.IsKnown() {
		creator = ev.Creator.String()
	}

	tok := &domain.Token{
		ID:                     a.newID(),
		TokenID:                ev.TokenID,
		ContractAddress:        a.contractAddress,
		CreatorAddress:         creator,
		Name:                   ev.Name,
		Symbol:                 ev.Symbol,
		TotalSupply:            ev.TotalSupply,
		CurrentPrice:           ev.BasePrice,
		LaunchThresholdXLM:     ev.LaunchThresholdXLM,
		LaunchThresholdPercent: ev.LaunchThresholdPercent,
		CurveType:              ev.CurveType,
		BasePrice:              ev.BasePrice,
		PriceMultiplier:        ev.PriceMultiplier,
		CreatedAt:              ev.Timestamp,
		UpdatedAt:              ev.Timestamp,
	}

	err := a.tokens.Insert(ctx, tok)
	if errors.Is(err, storage.ErrDuplicateKey) {
		// Redelivered create, the row already exists.
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply created tx=%s: %w", ev.TransactionHash, err)
	}

	a.logger.Printf("[applier] token created id=%s symbol=%s", tok.TokenID, tok.Symbol)
	return a.recompute(ctx, tok.ID)
}

func (a *Applier) applyPurchased(ctx context.Context, ev *domain.PurchasedEvent) error {
	if ev.TokenID == "" {
		a.logger.Printf("[applier] purchase without token identity, skipping tx=%s", ev.TransactionHash)
		return nil
	}

	tok, err := a.tokens.GetByTokenID(ctx, ev.TokenID)
	if errors.Is(err, storage.ErrNotFound) {
		a.logger.Printf("[applier] ERROR purchase for unknown token %s, skipping tx=%s", ev.TokenID, ev.TransactionHash)
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup token %s: %w", ev.TokenID, err)
	}

	if tok.IsLaunched {
		a.logger.Printf("[applier] purchase after launch for token %s, skipping tx=%s", ev.TokenID, ev.TransactionHash)
		return nil
	}

	received, newPrice := ev.TokensReceived, ev.NewPrice
	if received == 0 || newPrice == 0 {
		received, newPrice, err = a.reconstructPurchase(tok, ev.XLMAmount)
		if err != nil {
			a.logger.Printf("[applier] ERROR pricing failure for token %s tx=%s: %v", ev.TokenID, ev.TransactionHash, err)
			return nil
		}
	}

	buyer := ""
	if ev.Buyer.IsKnown() {
		buyer = ev.Buyer.String()
	}

	purchase := &domain.Purchase{
		ID:              a.newID(),
		TokenRowID:      tok.ID,
		BuyerAddress:    buyer,
		XLMAmount:       ev.XLMAmount,
		TokensReceived:  received,
		PricePerToken:   domain.UnitPrice(ev.XLMAmount, received),
		TransactionHash: ev.TransactionHash,
		CreatedAt:       ev.Timestamp,
	}

	err = a.purchases.Insert(ctx, purchase)
	if errors.Is(err, storage.ErrDuplicateKey) {
		// Redelivered purchase: the unique transaction hash is the
		// idempotency boundary. The sale row and the counter update are two
		// store calls, so a crash between them leaves the token behind its
		// own sale history; rebuilding the counters from the sale rows
		// closes that window and is a no-op when they already agree.
		if err := a.repairTokenCounters(ctx, tok); err != nil {
			return err
		}
		return a.recompute(ctx, tok.ID)
	}
	if err != nil {
		return fmt.Errorf("insert purchase tx=%s: %w", ev.TransactionHash, err)
	}

	// The sale rows are the source of truth for sold/raised; deriving the
	// counters from them keeps this update idempotent under redelivery.
	xlmTotal, soldTotal, err := a.purchases.TotalsForToken(ctx, tok.ID)
	if err != nil {
		return fmt.Errorf("sum sales for %s: %w", ev.TokenID, err)
	}

	upd := storage.TokenStateUpdate{
		ID:           tok.ID,
		TokensSold:   soldTotal,
		XLMRaised:    xlmTotal,
		CurrentPrice: newPrice,
		IsLaunched:   tok.IsLaunched,
		LaunchedAt:   tok.LaunchedAt,
		UpdatedAt:    a.now(),
	}
	if err := a.tokens.UpdateState(ctx, upd); err != nil {
		return fmt.Errorf("update token %s after purchase: %w", ev.TokenID, err)
	}

	if buyer != "" && received > 0 {
		if err := a.holders.ApplyPurchase(ctx, tok.ID, buyer, received, ev.Timestamp); err != nil {
			return fmt.Errorf("upsert holder %s: %w", buyer, err)
		}
	} else {
		a.logger.Printf("[applier] purchase with unknown buyer, holder position not updated tx=%s", ev.TransactionHash)
	}

	if a.prices != nil {
		point := &domain.PricePoint{
			TokenRowID: tok.ID,
			Timestamp:  ev.Timestamp,
			Price:      newPrice,
			Volume:     ev.XLMAmount,
		}
		if err := a.prices.Insert(ctx, point); err != nil {
			return fmt.Errorf("insert price point tx=%s: %w", ev.TransactionHash, err)
		}
	}

	if a.notifier != nil {
		tok.TokensSold = upd.TokensSold
		tok.XLMRaised = upd.XLMRaised
		tok.CurrentPrice = upd.CurrentPrice
		a.notifier.NotifyPurchase(tok, purchase)
	}

	return a.recompute(ctx, tok.ID)
}

// repairTokenCounters rebuilds a token's sold/raised counters and price
// from its sale rows. Redelivery after a crash between the sale insert and
// the counter update lands here; when the counters already match the rows
// this is a read-only no-op.
func (a *Applier) repairTokenCounters(ctx context.Context, tok *domain.Token) error {
	xlmTotal, soldTotal, err := a.purchases.TotalsForToken(ctx, tok.ID)
	if err != nil {
		return fmt.Errorf("sum sales for %s: %w", tok.TokenID, err)
	}
	if soldTotal == tok.TokensSold && xlmTotal == tok.XLMRaised {
		return nil
	}

	params := curve.Params{
		Type:            tok.CurveType,
		BasePrice:       tok.BasePrice,
		PriceMultiplier: tok.PriceMultiplier,
	}
	price, err := curve.PriceAt(params, soldTotal, tok.TotalSupply)
	if err != nil {
		a.logger.Printf("[applier] WARN cannot reprice token %s during counter repair: %v", tok.TokenID, err)
		price = tok.CurrentPrice
	}

	a.logger.Printf("[applier] repairing counters for token %s: sold %d->%d raised %d->%d",
		tok.TokenID, tok.TokensSold, soldTotal, tok.XLMRaised, xlmTotal)

	upd := storage.TokenStateUpdate{
		ID:           tok.ID,
		TokensSold:   soldTotal,
		XLMRaised:    xlmTotal,
		CurrentPrice: price,
		IsLaunched:   tok.IsLaunched,
		LaunchedAt:   tok.LaunchedAt,
		UpdatedAt:    a.now(),
	}
	if err := a.tokens.UpdateState(ctx, upd); err != nil {
		return fmt.Errorf("repair token %s counters: %w", tok.TokenID, err)
	}
	return nil
}

// reconstructPurchase reruns the contract's sale arithmetic to recover the
// invocation result the operation view does not carry.
func (a *Applier) reconstructPurchase(tok *domain.Token, xlmAmount int64) (received, newPrice int64, err error) {
	params := curve.Params{
		Type:            tok.CurveType,
		BasePrice:       tok.BasePrice,
		PriceMultiplier: tok.PriceMultiplier,
	}

	received, err = curve.TokensForPayment(params, xlmAmount, tok.TokensSold, tok.TotalSupply)
	if err != nil {
		return 0, 0, err
	}

	newPrice, err = curve.PriceAt(params, tok.TokensSold+received, tok.TotalSupply)
	if err != nil {
		return 0, 0, err
	}
	return received, newPrice, nil
}

func (a *Applier) applyLaunched(ctx context.Context, ev *domain.LaunchedEvent) error {
	if ev.TokenID == "" {
		a.logger.Printf("[applier] launch without token identity, skipping tx=%s", ev.TransactionHash)
		return nil
	}

	tok, err := a.tokens.GetByTokenID(ctx, ev.TokenID)
	if errors.Is(err, storage.ErrNotFound) {
		a.logger.Printf("[applier] ERROR launch for unknown token %s, skipping tx=%s", ev.TokenID, ev.TransactionHash)
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup token %s: %w", ev.TokenID, err)
	}

	if tok.IsLaunched {
		// Active -> Launched happens once; re-applies are no-ops.
		return nil
	}

	upd := storage.TokenStateUpdate{
		ID:           tok.ID,
		TokensSold:   orDefault(ev.TokensSold, tok.TokensSold),
		XLMRaised:    orDefault(ev.XLMRaised, tok.XLMRaised),
		CurrentPrice: orDefault(ev.FinalPrice, tok.CurrentPrice),
		IsLaunched:   true,
		LaunchedAt:   &ev.Timestamp,
		UpdatedAt:    a.now(),
	}
	if err := a.tokens.UpdateState(ctx, upd); err != nil {
		return fmt.Errorf("update token %s on launch: %w", ev.TokenID, err)
	}

	a.logger.Printf("[applier] token launched id=%s raised=%d sold=%d", ev.TokenID, upd.XLMRaised, upd.TokensSold)
	return a.recompute(ctx, tok.ID)
}

func (a *Applier) recompute(ctx context.Context, tokenRowID string) error {
	if a.recomputer == nil {
		return nil
	}
	if err := a.recomputer.Recompute(ctx, tokenRowID); err != nil {
		return fmt.Errorf("recompute metrics for %s: %w", tokenRowID, err)
	}
	return nil
}

func orDefault(v, def int64) int64 {
	if v > 0 {
		return v
	}
	return def
}
