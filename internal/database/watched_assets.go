package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

// CreateWatchedAsset adds an asset to the warm list, updating it if present
func (db *DB) CreateWatchedAsset(w *models.WatchedAsset) error {
	query := `
		INSERT INTO watched_assets (asset_id, enabled, priority, notes, added_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (asset_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			priority = EXCLUDED.priority,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	if w.Priority == 0 {
		w.Priority = 1
	}

	_, err := db.conn.Exec(query, w.AssetID, w.Enabled, w.Priority, nullableString(w.Notes), now, now)
	if err != nil {
		return fmt.Errorf("failed to create watched asset: %w", err)
	}
	w.AddedAt = now
	w.UpdatedAt = now
	return nil
}

// GetWatchedAsset retrieves one watched asset
func (db *DB) GetWatchedAsset(assetID string) (*models.WatchedAsset, error) {
	query := `
		SELECT asset_id, enabled, priority, notes, added_at, updated_at
		FROM watched_assets
		WHERE asset_id = $1
	`
	w, err := scanWatchedAsset(db.conn.QueryRow(query, assetID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("watched asset not found: %s", assetID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watched asset: %w", err)
	}
	return w, nil
}

// GetAllWatchedAssets retrieves every watched asset, enabled or not
func (db *DB) GetAllWatchedAssets() ([]*models.WatchedAsset, error) {
	query := `
		SELECT asset_id, enabled, priority, notes, added_at, updated_at
		FROM watched_assets
		ORDER BY priority ASC, asset_id ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query watched assets: %w", err)
	}
	defer rows.Close()

	var assets []*models.WatchedAsset
	for rows.Next() {
		w, err := scanWatchedAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watched asset: %w", err)
		}
		assets = append(assets, w)
	}
	return assets, rows.Err()
}

// GetWatchedAssetIDs returns the ids of enabled watched assets in warm order
func (db *DB) GetWatchedAssetIDs() ([]string, error) {
	query := `
		SELECT asset_id
		FROM watched_assets
		WHERE enabled = true
		ORDER BY priority ASC, asset_id ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get watched asset ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan asset id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetWatchedAssetEnabled enables or disables warming for an asset
func (db *DB) SetWatchedAssetEnabled(assetID string, enabled bool) error {
	query := `UPDATE watched_assets SET enabled = $2, updated_at = $3 WHERE asset_id = $1`
	result, err := db.conn.Exec(query, assetID, enabled, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update watched asset: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watched asset not found: %s", assetID)
	}
	return nil
}

// DeleteWatchedAsset removes an asset from the warm list
func (db *DB) DeleteWatchedAsset(assetID string) error {
	result, err := db.conn.Exec(`DELETE FROM watched_assets WHERE asset_id = $1`, assetID)
	if err != nil {
		return fmt.Errorf("failed to delete watched asset: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watched asset not found: %s", assetID)
	}
	return nil
}

func scanWatchedAsset(row rowScanner) (*models.WatchedAsset, error) {
	var w models.WatchedAsset
	var notes sql.NullString
	if err := row.Scan(&w.AssetID, &w.Enabled, &w.Priority, &notes, &w.AddedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	if notes.Valid {
		w.Notes = notes.String
	}
	return &w, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
