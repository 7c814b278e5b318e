package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

// CreateForecastRun records the headline numbers of a generated forecast
func (db *DB) CreateForecastRun(ctx context.Context, run *models.ForecastRun) error {
	query := `
		INSERT INTO forecast_runs (run_id, asset_id, current_price, one_year_price, one_year_roi, market_cap, as_of)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := db.conn.QueryRowContext(ctx, query,
		run.RunID, run.AssetID, run.CurrentPrice, run.OneYearPrice, run.OneYearROI, run.MarketCap, run.AsOf,
	).Scan(&run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create forecast run: %w", err)
	}
	return nil
}

// GetLatestForecastRun returns the most recent run recorded for assetID
func (db *DB) GetLatestForecastRun(ctx context.Context, assetID string) (*models.ForecastRun, error) {
	query := `
		SELECT run_id, asset_id, current_price, one_year_price, one_year_roi, market_cap, as_of, created_at
		FROM forecast_runs
		WHERE asset_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var r models.ForecastRun
	err := db.conn.QueryRowContext(ctx, query, assetID).Scan(
		&r.RunID, &r.AssetID, &r.CurrentPrice, &r.OneYearPrice, &r.OneYearROI, &r.MarketCap, &r.AsOf, &r.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no forecast run found for %s", assetID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get forecast run: %w", err)
	}
	return &r, nil
}
