package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/price-forecast-service/internal/models"
)

const upsertPriceData = `
	INSERT INTO price_data_daily (asset_id, date, close, volume, market_cap, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (asset_id, date) DO UPDATE SET
		close = EXCLUDED.close,
		volume = EXCLUDED.volume,
		market_cap = EXCLUDED.market_cap
`

// CreatePriceData upserts one daily close
func (db *DB) CreatePriceData(p *models.PriceDataDaily) error {
	err := db.conn.QueryRow(upsertPriceData+" RETURNING id",
		p.AssetID, p.Date, p.Close, p.Volume, nullableDecimal(p.MarketCap), time.Now(),
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to create price data: %w", err)
	}
	return nil
}

// CreatePriceDataBatch upserts many daily closes in one transaction
func (db *DB) CreatePriceDataBatch(prices []*models.PriceDataDaily) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertPriceData)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range prices {
		if _, err := stmt.Exec(p.AssetID, p.Date, p.Close, p.Volume, nullableDecimal(p.MarketCap), now); err != nil {
			return fmt.Errorf("failed to insert price data for %s: %w", p.AssetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPriceDataByAssetAndDate retrieves the close of assetID on date
func (db *DB) GetPriceDataByAssetAndDate(assetID string, date time.Time) (*models.PriceDataDaily, error) {
	query := `
		SELECT id, asset_id, date, close, volume, market_cap, created_at
		FROM price_data_daily
		WHERE asset_id = $1 AND date = $2
	`
	p, err := scanPriceData(db.conn.QueryRow(query, assetID, date))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("price data not found for %s on %s", assetID, date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price data: %w", err)
	}
	return p, nil
}

// GetPriceSeries returns the most recent limit closes of assetID in ascending date order
func (db *DB) GetPriceSeries(ctx context.Context, assetID string, limit int) ([]models.PricePoint, error) {
	query := `
		SELECT id, asset_id, date, close, volume, market_cap, created_at
		FROM (
			SELECT * FROM price_data_daily
			WHERE asset_id = $1
			ORDER BY date DESC
			LIMIT $2
		) recent
		ORDER BY date ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get price series: %w", err)
	}
	defer rows.Close()

	var series []models.PricePoint
	for rows.Next() {
		p, err := scanPriceData(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price data: %w", err)
		}
		series = append(series, p.PricePoint())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price data: %w", err)
	}
	return series, nil
}

// GetLatestMarketCap returns the most recent non-null market cap of assetID
func (db *DB) GetLatestMarketCap(ctx context.Context, assetID string) (float64, error) {
	query := `
		SELECT market_cap
		FROM price_data_daily
		WHERE asset_id = $1 AND market_cap IS NOT NULL
		ORDER BY date DESC
		LIMIT 1
	`
	var marketCap decimal.Decimal
	err := db.conn.QueryRowContext(ctx, query, assetID).Scan(&marketCap)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no market cap found for %s", assetID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get market cap: %w", err)
	}
	return marketCap.InexactFloat64(), nil
}

// DeletePriceDataOlderThan removes closes dated before date
func (db *DB) DeletePriceDataOlderThan(date time.Time) (int64, error) {
	result, err := db.conn.Exec(`DELETE FROM price_data_daily WHERE date < $1`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old price data: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPriceData(row rowScanner) (*models.PriceDataDaily, error) {
	var p models.PriceDataDaily
	var marketCap sql.NullString

	if err := row.Scan(&p.ID, &p.AssetID, &p.Date, &p.Close, &p.Volume, &marketCap, &p.CreatedAt); err != nil {
		return nil, err
	}
	if marketCap.Valid {
		p.MarketCap, _ = decimal.NewFromString(marketCap.String)
	}
	return &p, nil
}

func nullableDecimal(d decimal.Decimal) interface{} {
	if d.IsZero() {
		return nil
	}
	return d
}
