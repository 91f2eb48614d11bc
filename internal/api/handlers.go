package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListTokens(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultPageLimit)
	if err != nil || limit <= 0 {
		badRequest(c, "limit must be a positive integer")
		return
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		badRequest(c, "offset must be a non-negative integer")
		return
	}

	sort, ok := parseSort(c.DefaultQuery("sort", "newest"))
	if !ok {
		badRequest(c, "sort must be one of newest, oldest, volume, market_cap")
		return
	}

	listings, err := s.tokens.List(c.Request.Context(), storage.TokenListOptions{
		Limit:  limit,
		Offset: offset,
		Sort:   sort,
	})
	if err != nil {
		s.internalError(c, "list tokens", err)
		return
	}

	resp := &TokenListResponse{
		Tokens: make([]*TokenResponse, 0, len(listings)),
		Limit:  limit,
		Offset: offset,
	}
	for _, l := range listings {
		resp.Tokens = append(resp.Tokens, tokenResponse(l.Token, listingMetrics(l)))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetToken(c *gin.Context) {
	tok, ok := s.resolveToken(c)
	if !ok {
		return
	}

	var metrics *domain.TokenMetrics
	m, err := s.metrics.GetByTokenRowID(c.Request.Context(), tok.ID)
	switch {
	case err == nil:
		metrics = m
	case errors.Is(err, storage.ErrNotFound):
		// Token seen before its first recompute; serve without aggregates.
	default:
		s.internalError(c, "load metrics", err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse(tok, metrics))
}

// handleKingOfTheHill serves the highest-market-cap token still on its
// curve.
func (s *Server) handleKingOfTheHill(c *gin.Context) {
	listings, err := s.tokens.List(c.Request.Context(), storage.TokenListOptions{
		Limit: maxPageLimit,
		Sort:  storage.SortMarketCap,
	})
	if err != nil {
		s.internalError(c, "list tokens", err)
		return
	}

	for _, l := range listings {
		if l.Token.IsLaunched {
			continue
		}
		c.JSON(http.StatusOK, tokenResponse(l.Token, listingMetrics(l)))
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "no active token"})
}

func (s *Server) handlePriceHistory(c *gin.Context) {
	if s.pricePoints == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "price history is not available"})
		return
	}

	tok, ok := s.resolveToken(c)
	if !ok {
		return
	}

	start, err := queryInt64(c, "start", 0)
	if err != nil {
		badRequest(c, "start must be a Unix millisecond timestamp")
		return
	}
	end, err := queryInt64(c, "end", 0)
	if err != nil {
		badRequest(c, "end must be a Unix millisecond timestamp")
		return
	}

	points, err := s.pricePoints.GetByTokenRange(c.Request.Context(), tok.ID, start, end)
	if err != nil {
		s.internalError(c, "load price history", err)
		return
	}

	resp := make([]*PricePointResponse, 0, len(points))
	for _, p := range points {
		resp = append(resp, pricePointResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"token_id": tok.TokenID, "points": resp})
}

// resolveToken looks the :id path segment up as a ledger token identity
// first, then as an internal row id. Writes the error response itself when
// it returns false.
func (s *Server) resolveToken(c *gin.Context) (*domain.Token, bool) {
	id := c.Param("id")
	ctx := c.Request.Context()

	tok, err := s.tokens.GetByTokenID(ctx, id)
	if err == nil {
		return tok, true
	}
	if !errors.Is(err, storage.ErrNotFound) {
		s.internalError(c, "load token", err)
		return nil, false
	}

	tok, err = s.tokens.GetByID(ctx, id)
	if err == nil {
		return tok, true
	}
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
		return nil, false
	}
	s.internalError(c, "load token", err)
	return nil, false
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	s.logger.Printf("[api] ERROR %s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func listingMetrics(l *storage.TokenListing) *domain.TokenMetrics {
	if l.Metrics == nil {
		return nil
	}
	return l.Metrics
}

func parseSort(v string) (storage.TokenSort, bool) {
	switch v {
	case "newest":
		return storage.SortNewest, true
	case "oldest":
		return storage.SortOldest, true
	case "volume":
		return storage.SortVolume, true
	case "market_cap":
		return storage.SortMarketCap, true
	default:
		return "", false
	}
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func queryInt64(c *gin.Context, name string, def int64) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
