// Package main runs the launchpad backend: the ledger poller projecting
// contract activity into the token view, and the HTTP query API serving it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/debojyoti10CC/pmpfun/internal/api"
	"github.com/debojyoti10CC/pmpfun/internal/config"
	"github.com/debojyoti10CC/pmpfun/internal/horizon"
	"github.com/debojyoti10CC/pmpfun/internal/indexer"
	"github.com/debojyoti10CC/pmpfun/internal/metrics"
	"github.com/debojyoti10CC/pmpfun/internal/observability"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
	chstore "github.com/debojyoti10CC/pmpfun/internal/storage/clickhouse"
	"github.com/debojyoti10CC/pmpfun/internal/storage/memory"
	"github.com/debojyoti10CC/pmpfun/internal/storage/migrations"
	pgstore "github.com/debojyoti10CC/pmpfun/internal/storage/postgres"
)

// allStores holds all storage implementations.
type allStores struct {
	tokens       storage.TokenStore
	purchases    storage.PurchaseStore
	holders      storage.HolderStore
	tokenMetrics storage.TokenMetricsStore
	cursors      storage.CursorStore
	pricePoints  storage.PricePointStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override the environment for local runs.
	flag.StringVar(&cfg.HorizonURL, "horizon-url", cfg.HorizonURL, "Horizon API base URL")
	flag.StringVar(&cfg.ContractAddress, "contract", cfg.ContractAddress, "Launchpad contract address to index")
	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	flag.StringVar(&cfg.ClickhouseDSN, "clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string")
	flag.BoolVar(&cfg.UseMemory, "use-memory", cfg.UseMemory, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	flag.StringVar(&cfg.APIAddr, "api-addr", cfg.APIAddr, "Query API HTTP address")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics HTTP address")
	flag.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Idle wait between polling cycles")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	obs := observability.NewMetrics("")

	hub := api.NewHub(api.HubOptions{
		Logger:  log.New(os.Stdout, "[ws] ", log.LstdFlags),
		Metrics: obs,
	})
	go hub.Run(ctx)

	recomputer := metrics.NewRecomputer(metrics.RecomputerOptions{
		TokenStore:        stores.tokens,
		PurchaseStore:     stores.purchases,
		HolderStore:       stores.holders,
		TokenMetricsStore: stores.tokenMetrics,
		Logger:            log.New(os.Stdout, "[metrics] ", log.LstdFlags),
		Metrics:           obs,
	})

	applier := indexer.NewApplier(indexer.ApplierOptions{
		ContractAddress: cfg.ContractAddress,
		TokenStore:      stores.tokens,
		PurchaseStore:   stores.purchases,
		HolderStore:     stores.holders,
		PricePointStore: stores.pricePoints,
		Recomputer:      recomputer,
		Notifier:        hub,
		Logger:          log.New(os.Stdout, "[applier] ", log.LstdFlags),
	})

	poller := indexer.NewPoller(indexer.PollerOptions{
		Source:          horizon.NewClient(cfg.HorizonURL),
		Classifier:      indexer.NewClassifier(cfg.ContractAddress),
		Applier:         applier,
		CursorStore:     stores.cursors,
		ContractAddress: cfg.ContractAddress,
		PageSize:        cfg.PageSize,
		PollInterval:    cfg.PollInterval,
		PageInterval:    cfg.PageInterval,
		RetryInterval:   cfg.RetryInterval,
		Logger:          log.New(os.Stdout, "[poller] ", log.LstdFlags),
		Metrics:         obs,
	})

	apiServer := api.NewServer(api.ServerOptions{
		TokenStore:        stores.tokens,
		TokenMetricsStore: stores.tokenMetrics,
		PricePointStore:   stores.pricePoints,
		Hub:               hub,
		Logger:            log.New(os.Stdout, "[api] ", log.LstdFlags),
		CORSOrigins:       cfg.CORSOrigins,
	})

	errCh := make(chan error, 3)

	go func() {
		if err := poller.Run(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("poller: %w", err)
		}
	}()

	go func() {
		if err := apiServer.Start(cfg.APIAddr); err != nil {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	metricsServer := startMetricsServer(cfg.MetricsAddr, logger, errCh)

	logger.Printf("Indexing contract %s via %s", cfg.ContractAddress, cfg.HorizonURL)

	// Handle shutdown signals.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-errCh:
		logger.Printf("Fatal component error: %v", err)
	}
	cancel()

	// Second signal forces immediate exit.
	go func() {
		sig := <-sigCh
		logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
		os.Exit(1)
	}()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("API shutdown error: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Metrics server shutdown error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores, running migrations first.
func createStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (*allStores, func(), error) {
	if cfg.UseMemory {
		logger.Println("Using in-memory storage")
		tokens := memory.NewTokenStore()
		tokenMetrics := memory.NewTokenMetricsStore()
		tokens.SetMetricsStore(tokenMetrics)

		stores := &allStores{
			tokens:       tokens,
			purchases:    memory.NewPurchaseStore(),
			holders:      memory.NewHolderStore(),
			tokenMetrics: tokenMetrics,
			cursors:      memory.NewCursorStore(),
			pricePoints:  memory.NewPricePointStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &allStores{
		tokens:       pgstore.NewTokenStore(pool),
		purchases:    pgstore.NewPurchaseStore(pool),
		holders:      pgstore.NewHolderStore(pool),
		tokenMetrics: pgstore.NewTokenMetricsStore(pool),
		cursors:      pgstore.NewCursorStore(pool),
		pricePoints:  chstore.NewPricePointStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// startMetricsServer serves the Prometheus endpoint on its own listener.
func startMetricsServer(addr string, logger *log.Logger, errCh chan<- error) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Printf("Metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()
	return srv
}
