package clickhouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
)

// setupTestDB creates a ClickHouse container and returns a connection.
// Returns a cleanup function that must be called when done.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60 * time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_DB":       "test",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	conn, err := NewConn(ctx, fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port()))
	require.NoError(t, err)

	err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS price_points (
			token_row_id String,
			timestamp_ms UInt64,
			price        Int64,
			volume       Int64
		) ENGINE = MergeTree()
		ORDER BY (token_row_id, timestamp_ms)
		SETTINGS index_granularity = 8192
	`)
	require.NoError(t, err)

	cleanup := func() {
		conn.Close()
		_ = container.Terminate(ctx)
	}

	return conn, cleanup
}

func TestPricePointStore_InsertAndRangeQuery(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPricePointStore(conn)

	for _, ts := range []int64{300, 100, 200} {
		err := store.Insert(ctx, &domain.PricePoint{
			TokenRowID: "row-1",
			Timestamp:  ts,
			Price:      1000 + ts,
			Volume:     ts * 10,
		})
		require.NoError(t, err)
	}
	require.NoError(t, store.Insert(ctx, &domain.PricePoint{
		TokenRowID: "row-2",
		Timestamp:  150,
		Price:      1,
		Volume:     1,
	}))

	all, err := store.GetByTokenRange(ctx, "row-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, int64(100), all[0].Timestamp)
	require.Equal(t, int64(1100), all[0].Price)
	require.Equal(t, int64(300), all[2].Timestamp)

	window, err := store.GetByTokenRange(ctx, "row-1", 150, 250)
	require.NoError(t, err)
	require.Len(t, window, 1)
	require.Equal(t, int64(200), window[0].Timestamp)

	none, err := store.GetByTokenRange(ctx, "missing", 0, 0)
	require.NoError(t, err)
	require.Empty(t, none)
}
