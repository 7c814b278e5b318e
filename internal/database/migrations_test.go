package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := newTestDB(t)

	columnType := func(t *testing.T, table, column string) string {
		var actualType string
		err := testDB.conn.QueryRow(`
			SELECT data_type
			FROM information_schema.columns
			WHERE table_name = $1 AND column_name = $2
		`, table, column).Scan(&actualType)
		require.NoError(t, err, "column %s should exist in %s", column, table)
		return actualType
	}

	t.Run("all tables exist", func(t *testing.T) {
		for _, tableName := range []string{"price_data_daily", "forecast_runs", "watched_assets", "technical_indicators"} {
			var exists bool
			err := testDB.conn.QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.tables
					WHERE table_schema = 'public'
					AND table_name = $1
				)
			`, tableName).Scan(&exists)

			require.NoError(t, err, "failed to check table existence for %s", tableName)
			assert.True(t, exists, "table %s should exist", tableName)
		}
	})

	t.Run("price_data_daily has correct columns", func(t *testing.T) {
		expected := map[string]string{
			"id":         "integer",
			"asset_id":   "character varying",
			"date":       "date",
			"close":      "numeric",
			"volume":     "numeric",
			"market_cap": "numeric",
			"created_at": "timestamp without time zone",
		}
		for col, typ := range expected {
			assert.Equal(t, typ, columnType(t, "price_data_daily", col), "column %s", col)
		}
	})

	t.Run("forecast_runs has correct columns", func(t *testing.T) {
		expected := map[string]string{
			"run_id":         "uuid",
			"asset_id":       "character varying",
			"current_price":  "double precision",
			"one_year_price": "double precision",
			"as_of":          "timestamp with time zone",
		}
		for col, typ := range expected {
			assert.Equal(t, typ, columnType(t, "forecast_runs", col), "column %s", col)
		}
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		assert.NoError(t, testDB.migrate())
	})
}
