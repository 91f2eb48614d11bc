package indexer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/horizon"
)

const (
	testContract = "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE"
	testAccount  = "GA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJVSGZ"
)

func invokeOp(function string, params ...string) *horizon.Operation {
	op := &horizon.Operation{
		ID:              "op-1",
		PagingToken:     "12884905985",
		TransactionHash: "tx-abc",
		SourceAccount:   testAccount,
		TypeI:           horizon.OpTypeInvokeHostFunction,
		Type:            "invoke_host_function",
		Contract:        testContract,
		Function:        function,
		CreatedAt:       time.Unix(1709294400, 0).UTC(),
	}
	for _, p := range params {
		op.Parameters = append(op.Parameters, horizon.Parameter{Type: "Val", Value: p})
	}
	return op
}

func TestClassify_RejectsIrrelevantOperations(t *testing.T) {
	c := NewClassifier(testContract)

	payment := invokeOp(fnBuyTokens, testAccount, "MEME", "5000")
	payment.TypeI = 1
	_, ok := c.Classify(payment)
	require.False(t, ok)

	otherContract := invokeOp(fnBuyTokens, testAccount, "MEME", "5000")
	otherContract.Contract = "CDIFFERENT"
	_, ok = c.Classify(otherContract)
	require.False(t, ok)

	unknownFn := invokeOp("sell_tokens", testAccount, "MEME", "5000")
	_, ok = c.Classify(unknownFn)
	require.False(t, ok)

	_, ok = c.Classify(nil)
	require.False(t, ok)
}

func TestClassify_Created(t *testing.T) {
	c := NewClassifier(testContract)

	op := invokeOp(fnCreateToken,
		testAccount, "Meme Coin", "MEME", "1000000", "100000000", "80",
		"quadratic", "1000", "9000",
	)

	ev, ok := c.Classify(op)
	require.True(t, ok)

	created, isCreated := ev.(*domain.CreatedEvent)
	require.True(t, isCreated)
	require.Equal(t, "tx-abc", created.Tx())
	require.Equal(t, "MEME", created.TokenID)
	require.Equal(t, "Meme Coin", created.Name)
	require.Equal(t, int64(1_000_000), created.TotalSupply)
	require.Equal(t, int64(100_000_000), created.LaunchThresholdXLM)
	require.Equal(t, int32(80), created.LaunchThresholdPercent)
	require.Equal(t, domain.CurveTypeQuadratic, created.CurveType)
	require.Equal(t, int64(1000), created.BasePrice)
	require.Equal(t, int64(9000), created.PriceMultiplier)
	require.True(t, created.Creator.IsKnown())
	require.Equal(t, testAccount, created.Creator.String())
	require.Equal(t, time.Unix(1709294400, 0).UnixMilli(), created.Time())
}

func TestClassify_CreatedUnknownCurveDefaultsLinear(t *testing.T) {
	c := NewClassifier(testContract)

	op := invokeOp(fnCreateToken,
		testAccount, "Meme Coin", "MEME", "1000000", "100000000", "80",
		"cubic", "1000", "9000",
	)

	ev, ok := c.Classify(op)
	require.True(t, ok)
	require.Equal(t, domain.CurveTypeLinear, ev.(*domain.CreatedEvent).CurveType)
}

func TestClassify_Purchased(t *testing.T) {
	c := NewClassifier(testContract)

	ev, ok := c.Classify(invokeOp(fnBuyTokens, testAccount, "MEME", "10000"))
	require.True(t, ok)

	purchased, isPurchased := ev.(*domain.PurchasedEvent)
	require.True(t, isPurchased)
	require.Equal(t, "MEME", purchased.TokenID)
	require.Equal(t, int64(10000), purchased.XLMAmount)
	require.Equal(t, testAccount, purchased.Buyer.String())
	// Result fields are not on the operation view.
	require.Zero(t, purchased.TokensReceived)
	require.Zero(t, purchased.NewPrice)
}

func TestClassify_PurchasedInvalidBuyerFallsBackToSource(t *testing.T) {
	c := NewClassifier(testContract)

	ev, ok := c.Classify(invokeOp(fnBuyTokens, "not-an-address", "MEME", "10000"))
	require.True(t, ok)
	require.Equal(t, testAccount, ev.(*domain.PurchasedEvent).Buyer.String())
}

func TestClassify_PurchasedUnknownBuyerSentinel(t *testing.T) {
	c := NewClassifier(testContract)

	op := invokeOp(fnBuyTokens, "bad", "MEME", "10000")
	op.SourceAccount = "also-bad"
	ev, ok := c.Classify(op)
	require.True(t, ok)
	require.False(t, ev.(*domain.PurchasedEvent).Buyer.IsKnown())
}

func TestClassify_Launched(t *testing.T) {
	c := NewClassifier(testContract)

	ev, ok := c.Classify(invokeOp(fnLaunchTransition, "MEME"))
	require.True(t, ok)

	launched, isLaunched := ev.(*domain.LaunchedEvent)
	require.True(t, isLaunched)
	require.Equal(t, "MEME", launched.TokenID)
	require.Zero(t, launched.FinalPrice)
	require.Zero(t, launched.XLMRaised)
	require.Zero(t, launched.TokensSold)
}

func TestClassify_MissingParamsYieldSentinels(t *testing.T) {
	c := NewClassifier(testContract)

	ev, ok := c.Classify(invokeOp(fnBuyTokens))
	require.True(t, ok)

	purchased := ev.(*domain.PurchasedEvent)
	require.Empty(t, purchased.TokenID)
	require.Zero(t, purchased.XLMAmount)
	// Source account still passes strkey validation.
	require.True(t, purchased.Buyer.IsKnown())
}
