// Package api serves the read-side HTTP surface: token listings, detail,
// price history, and the live websocket trade feed. All writes happen in the
// indexer; every handler here is a pure view over the stores.
package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// Server wraps the HTTP query API.
type Server struct {
	tokens      storage.TokenStore
	metrics     storage.TokenMetricsStore
	pricePoints storage.PricePointStore
	hub         *Hub
	logger      *log.Logger
	corsOrigins []string

	httpServer *http.Server
}

// ServerOptions contains configuration for creating a Server.
type ServerOptions struct {
	TokenStore        storage.TokenStore
	TokenMetricsStore storage.TokenMetricsStore
	PricePointStore   storage.PricePointStore // optional, disables price history when nil
	Hub               *Hub                    // optional, disables /ws when nil
	Logger            *log.Logger
	CORSOrigins       []string // empty allows all origins
}

// NewServer creates a new Server.
func NewServer(opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		tokens:      opts.TokenStore,
		metrics:     opts.TokenMetricsStore,
		pricePoints: opts.PricePointStore,
		hub:         opts.Hub,
		logger:      logger,
		corsOrigins: opts.CORSOrigins,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.corsMiddleware())

	router.GET("/health", s.handleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/tokens", s.handleListTokens)
		v1.GET("/tokens/:id", s.handleGetToken)
		v1.GET("/tokens/:id/price-history", s.handlePriceHistory)
		v1.GET("/king-of-the-hill", s.handleKingOfTheHill)
	}

	if s.hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			s.hub.ServeWS(c.Writer, c.Request)
		})
	}

	return router
}

// Start serves the API on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	s.logger.Printf("[api] listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(s.corsOrigins) > 0 {
		cfg.AllowOrigins = s.corsOrigins
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	return cors.New(cfg)
}
