package models

import "time"

// WatchedAsset is an asset whose forecast is kept warm by the scheduler
type WatchedAsset struct {
	AssetID   string    `json:"asset_id"`
	Enabled   bool      `json:"enabled"`
	Priority  int       `json:"priority"` // 1 is warmed first
	Notes     string    `json:"notes,omitempty"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
