// Package main applies the PostgreSQL and ClickHouse schemas and exits.
// Useful for provisioning a database before the server first starts.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/debojyoti10CC/pmpfun/internal/config"
	"github.com/debojyoti10CC/pmpfun/internal/storage/migrations"
	pgstore "github.com/debojyoti10CC/pmpfun/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	flag.StringVar(&cfg.ClickhouseDSN, "clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall migration timeout")
	flag.Parse()

	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags)

	if cfg.PostgresDSN == "" && cfg.ClickhouseDSN == "" {
		logger.Fatal("Nothing to do: set POSTGRES_DSN and/or CLICKHOUSE_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatalf("Failed to connect to postgres: %v", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			logger.Fatalf("Postgres migrations failed: %v", err)
		}
		pool.Close()
		logger.Println("Postgres schema is up to date")
	}

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			logger.Fatalf("ClickHouse migrations failed: %v", err)
		}
		conn.Close()
		logger.Println("ClickHouse schema is up to date")
	}
}
