// Package curve implements the bonding-curve pricing engine.
//
// All arithmetic is integer basis-point fixed point and must reproduce the
// on-ledger contract math exactly: the ingestion pipeline reconstructs state
// with these functions, so any divergence is a correctness bug, not a
// rounding nuance.
package curve

import (
	"errors"
	"math"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
)

// Pricing errors, mirroring the contract's error set.
var (
	ErrInvalidSupply       = errors.New("invalid total supply")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCurveParams  = errors.New("invalid curve parameters")
	ErrCalculationOverflow = errors.New("price calculation overflow")
)

// basisPoints is the fixed-point scale: 10000 == 100% of supply sold.
const basisPoints = 10000

// Params are the immutable curve constants of one token.
type Params struct {
	Type            domain.CurveType
	BasePrice       int64 // stroops
	PriceMultiplier int64 // stroops added across the full supply
}

// Validate checks curve constants and supply the way the contract does
// before accepting a token.
func Validate(p Params, totalSupply int64) error {
	if p.BasePrice <= 0 || p.PriceMultiplier <= 0 {
		return ErrInvalidCurveParams
	}
	if p.Type != domain.CurveTypeLinear && p.Type != domain.CurveTypeQuadratic {
		return ErrInvalidCurveParams
	}
	if totalSupply <= 0 {
		return ErrInvalidSupply
	}
	return nil
}

// PriceAt returns the unit price after `sold` tokens have been sold.
//
// Linear:    base + (progress * multiplier) / 10000
// Quadratic: base + ((progress * progress / 10000) * multiplier) / 10000
// where progress = sold * 10000 / totalSupply, truncating.
func PriceAt(p Params, sold, totalSupply int64) (int64, error) {
	if totalSupply <= 0 {
		return 0, ErrInvalidSupply
	}

	scaled, ok := mul64(sold, basisPoints)
	if !ok {
		return 0, ErrCalculationOverflow
	}
	progress := scaled / totalSupply

	var increase int64
	switch p.Type {
	case domain.CurveTypeLinear:
		raw, ok := mul64(progress, p.PriceMultiplier)
		if !ok {
			return 0, ErrCalculationOverflow
		}
		increase = raw / basisPoints

	case domain.CurveTypeQuadratic:
		sq, ok := mul64(progress, progress)
		if !ok {
			return 0, ErrCalculationOverflow
		}
		raw, ok := mul64(sq/basisPoints, p.PriceMultiplier)
		if !ok {
			return 0, ErrCalculationOverflow
		}
		increase = raw / basisPoints

	default:
		return 0, ErrInvalidCurveParams
	}

	price, ok := add64(p.BasePrice, increase)
	if !ok || price <= 0 {
		return 0, ErrCalculationOverflow
	}
	return price, nil
}

// TokensForPayment converts a payment amount into tokens at the price for
// the current sold count, floor division.
func TokensForPayment(p Params, amount, sold, totalSupply int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	price, err := PriceAt(p, sold, totalSupply)
	if err != nil {
		return 0, err
	}
	return amount / price, nil
}

// PaymentForTokens converts a token amount into the payment it is worth at
// the price for the current sold count.
func PaymentForTokens(p Params, tokens, sold, totalSupply int64) (int64, error) {
	if tokens <= 0 {
		return 0, ErrInvalidAmount
	}
	price, err := PriceAt(p, sold, totalSupply)
	if err != nil {
		return 0, err
	}
	payment, ok := mul64(tokens, price)
	if !ok {
		return 0, ErrCalculationOverflow
	}
	return payment, nil
}

// mul64 multiplies with overflow detection.
func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}

// add64 adds with overflow detection.
func add64(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, false
	}
	return a + b, true
}
