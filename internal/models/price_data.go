package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceDataDaily is a stored daily close and volume for an asset
type PriceDataDaily struct {
	ID        int             `json:"id"`
	AssetID   string          `json:"asset_id"`
	Date      time.Time       `json:"date"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
	MarketCap decimal.Decimal `json:"market_cap,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// PricePoint converts the stored row to the engine's float representation
func (p *PriceDataDaily) PricePoint() PricePoint {
	return PricePoint{
		Timestamp: p.Date,
		Price:     p.Close.InexactFloat64(),
		Volume:    p.Volume.InexactFloat64(),
	}
}
