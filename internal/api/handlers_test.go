package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage/memory"
)

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

type serverFixture struct {
	server      *Server
	tokens      *memory.TokenStore
	metrics     *memory.TokenMetricsStore
	pricePoints *memory.PricePointStore
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	tokens := memory.NewTokenStore()
	metrics := memory.NewTokenMetricsStore()
	pricePoints := memory.NewPricePointStore()
	tokens.SetMetricsStore(metrics)

	server := NewServer(ServerOptions{
		TokenStore:        tokens,
		TokenMetricsStore: metrics,
		PricePointStore:   pricePoints,
		Logger:            log.New(testWriter{t}, "", 0),
	})
	return &serverFixture{
		server:      server,
		tokens:      tokens,
		metrics:     metrics,
		pricePoints: pricePoints,
	}
}

func (f *serverFixture) addToken(t *testing.T, rowID, tokenID string, createdAt int64, launched bool) *domain.Token {
	t.Helper()

	tok := &domain.Token{
		ID:                 rowID,
		TokenID:            tokenID,
		ContractAddress:    "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE",
		CreatorAddress:     "GA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJVSGZ",
		Name:               tokenID + " Coin",
		Symbol:             tokenID,
		TotalSupply:        1_000_000,
		TokensSold:         500_000,
		XLMRaised:          50_000_000,
		CurrentPrice:       5500,
		LaunchThresholdXLM: 100_000_000,
		IsLaunched:         launched,
		CurveType:          domain.CurveTypeLinear,
		BasePrice:          1000,
		PriceMultiplier:    9000,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
	}
	require.NoError(t, f.tokens.Insert(context.Background(), tok))
	return tok
}

func (f *serverFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	f := newServerFixture(t)

	rec := f.get(t, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListTokens_StringEncodedQuantities(t *testing.T) {
	f := newServerFixture(t)
	f.addToken(t, "row-1", "MEME", 100, false)

	rec := f.get(t, "/api/v1/tokens")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[TokenListResponse](t, rec)
	require.Len(t, resp.Tokens, 1)

	tok := resp.Tokens[0]
	require.Equal(t, "MEME", tok.TokenID)
	require.Equal(t, "1000000", tok.TotalSupply)
	require.Equal(t, "500000", tok.TokensSold)
	require.Equal(t, "50000000", tok.XLMRaised)
	require.Equal(t, "5500", tok.CurrentPrice)
	require.InDelta(t, 50.0, tok.LaunchProgress, 1e-9)
	require.Nil(t, tok.Metrics)
}

func TestListTokens_SortAndPaging(t *testing.T) {
	f := newServerFixture(t)
	f.addToken(t, "row-1", "AAA", 100, false)
	f.addToken(t, "row-2", "BBB", 200, false)
	f.addToken(t, "row-3", "CCC", 300, false)

	rec := f.get(t, "/api/v1/tokens?sort=oldest&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[TokenListResponse](t, rec)
	require.Len(t, resp.Tokens, 2)
	require.Equal(t, "AAA", resp.Tokens[0].TokenID)
	require.Equal(t, "BBB", resp.Tokens[1].TokenID)

	rec = f.get(t, "/api/v1/tokens?sort=oldest&limit=2&offset=2")
	resp = decode[TokenListResponse](t, rec)
	require.Len(t, resp.Tokens, 1)
	require.Equal(t, "CCC", resp.Tokens[0].TokenID)
}

func TestListTokens_InvalidSort(t *testing.T) {
	f := newServerFixture(t)

	rec := f.get(t, "/api/v1/tokens?sort=alphabetical")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetToken_ByTokenIDAndRowID(t *testing.T) {
	f := newServerFixture(t)
	f.addToken(t, "row-1", "MEME", 100, false)

	require.NoError(t, f.metrics.Upsert(context.Background(), &domain.TokenMetrics{
		TokenRowID:  "row-1",
		HolderCount: 7,
		Volume24h:   12345,
		MarketCap:   500_000 * 5500,
		UpdatedAt:   200,
	}))

	for _, id := range []string{"MEME", "row-1"} {
		rec := f.get(t, "/api/v1/tokens/"+id)
		require.Equal(t, http.StatusOK, rec.Code)

		tok := decode[TokenResponse](t, rec)
		require.Equal(t, "row-1", tok.ID)
		require.NotNil(t, tok.Metrics)
		require.Equal(t, int32(7), tok.Metrics.HolderCount)
		require.Equal(t, "12345", tok.Metrics.Volume24h)
	}
}

func TestGetToken_NotFound(t *testing.T) {
	f := newServerFixture(t)

	rec := f.get(t, "/api/v1/tokens/NOPE")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetToken_WithoutMetricsYet(t *testing.T) {
	f := newServerFixture(t)
	f.addToken(t, "row-1", "MEME", 100, false)

	rec := f.get(t, "/api/v1/tokens/MEME")
	require.Equal(t, http.StatusOK, rec.Code)

	tok := decode[TokenResponse](t, rec)
	require.Nil(t, tok.Metrics)
}

func TestKingOfTheHill_SkipsLaunched(t *testing.T) {
	f := newServerFixture(t)
	ctx := context.Background()

	f.addToken(t, "row-1", "BIG", 100, true)
	f.addToken(t, "row-2", "MID", 200, false)
	f.addToken(t, "row-3", "SML", 300, false)

	require.NoError(t, f.metrics.Upsert(ctx, &domain.TokenMetrics{TokenRowID: "row-1", MarketCap: 3000}))
	require.NoError(t, f.metrics.Upsert(ctx, &domain.TokenMetrics{TokenRowID: "row-2", MarketCap: 2000}))
	require.NoError(t, f.metrics.Upsert(ctx, &domain.TokenMetrics{TokenRowID: "row-3", MarketCap: 1000}))

	rec := f.get(t, "/api/v1/king-of-the-hill")
	require.Equal(t, http.StatusOK, rec.Code)

	tok := decode[TokenResponse](t, rec)
	require.Equal(t, "MID", tok.TokenID)
}

func TestKingOfTheHill_Empty(t *testing.T) {
	f := newServerFixture(t)

	rec := f.get(t, "/api/v1/king-of-the-hill")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPriceHistory_Range(t *testing.T) {
	f := newServerFixture(t)
	ctx := context.Background()
	f.addToken(t, "row-1", "MEME", 100, false)

	for _, ts := range []int64{1000, 2000, 3000} {
		require.NoError(t, f.pricePoints.Insert(ctx, &domain.PricePoint{
			TokenRowID: "row-1",
			Timestamp:  ts,
			Price:      ts / 10,
			Volume:     ts,
		}))
	}

	rec := f.get(t, "/api/v1/tokens/MEME/price-history?start=1500&end=2500")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TokenID string                `json:"token_id"`
		Points  []*PricePointResponse `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "MEME", resp.TokenID)
	require.Len(t, resp.Points, 1)
	require.Equal(t, int64(2000), resp.Points[0].Timestamp)
	require.Equal(t, "200", resp.Points[0].Price)
}

func TestPriceHistory_Unavailable(t *testing.T) {
	f := newServerFixture(t)
	f.addToken(t, "row-1", "MEME", 100, false)
	f.server.pricePoints = nil

	rec := f.get(t, "/api/v1/tokens/MEME/price-history")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
