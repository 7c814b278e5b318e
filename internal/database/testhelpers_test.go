package database

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// forecastTables are emptied between subtests
var forecastTables = []string{
	"forecast_runs",
	"price_data_daily",
	"technical_indicators",
	"watched_assets",
}

// testDB is a migrated database in a throwaway container
type testDB struct {
	*DB
}

// newTestDB starts PostgreSQL, applies db/migrations and registers teardown on t
func newTestDB(t *testing.T) *testDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("forecasts"),
		tcpostgres.WithUsername("forecast"),
		tcpostgres.WithPassword("forecast"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := New(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tdb := &testDB{DB: db}
	require.NoError(t, tdb.migrate(), "failed to run migrations")
	return tdb
}

// migrate applies the repository's migrations, located relative to this file
func (tdb *testDB) migrate() error {
	_, filename, _, _ := runtime.Caller(0)
	return tdb.Migrate(filepath.Join(filepath.Dir(filename), "..", "..", "db", "migrations"))
}

// truncate empties every forecast table
func (tdb *testDB) truncate(t *testing.T) {
	t.Helper()
	_, err := tdb.conn.Exec("TRUNCATE TABLE " + strings.Join(forecastTables, ", ") + " CASCADE")
	require.NoError(t, err)
}
