package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

// CreateTechnicalIndicatorBatch upserts indicator readings in one transaction
func (db *DB) CreateTechnicalIndicatorBatch(ctx context.Context, indicators []*models.TechnicalIndicator) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO technical_indicators (asset_id, date, indicator_type, value, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (asset_id, date, indicator_type) DO UPDATE SET
			value = EXCLUDED.value
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, t := range indicators {
		if _, err := stmt.ExecContext(ctx, t.AssetID, t.Date, t.IndicatorType, t.Value, now); err != nil {
			return fmt.Errorf("failed to insert indicator for %s: %w", t.AssetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetIndicator retrieves one indicator of an asset on a date
func (db *DB) GetIndicator(assetID string, date time.Time, indicatorType string) (*models.TechnicalIndicator, error) {
	query := `
		SELECT id, asset_id, date, indicator_type, value, created_at
		FROM technical_indicators
		WHERE asset_id = $1 AND date = $2 AND indicator_type = $3
	`
	var t models.TechnicalIndicator
	err := db.conn.QueryRow(query, assetID, date, indicatorType).Scan(
		&t.ID, &t.AssetID, &t.Date, &t.IndicatorType, &t.Value, &t.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("indicator not found: %s %s on %s", assetID, indicatorType, date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get indicator: %w", err)
	}
	return &t, nil
}

// GetIndicatorHistory returns up to limit readings of one indicator, newest first
func (db *DB) GetIndicatorHistory(assetID string, indicatorType string, limit int) ([]*models.TechnicalIndicator, error) {
	query := `
		SELECT id, asset_id, date, indicator_type, value, created_at
		FROM technical_indicators
		WHERE asset_id = $1 AND indicator_type = $2
		ORDER BY date DESC
		LIMIT $3
	`
	rows, err := db.conn.Query(query, assetID, indicatorType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get indicator history: %w", err)
	}
	defer rows.Close()

	var indicators []*models.TechnicalIndicator
	for rows.Next() {
		var t models.TechnicalIndicator
		if err := rows.Scan(&t.ID, &t.AssetID, &t.Date, &t.IndicatorType, &t.Value, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan technical indicator: %w", err)
		}
		indicators = append(indicators, &t)
	}
	return indicators, rows.Err()
}

// DeleteIndicatorsOlderThan deletes readings dated before date
func (db *DB) DeleteIndicatorsOlderThan(date time.Time) (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM technical_indicators WHERE date < $1`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old indicators: %w", err)
	}
	return result.RowsAffected()
}
