package models

import "time"

// Event type constants
const (
	EventForecastGenerated = "FORECAST_GENERATED"
	EventPriceRecorded     = "PRICE_RECORDED"
)

// ForecastEvent is published after a forecast has been generated and cached
type ForecastEvent struct {
	EventType    string    `json:"event_type"`
	RunID        string    `json:"run_id"`
	AssetID      string    `json:"asset_id"`
	CurrentPrice float64   `json:"current_price"`
	OneYearPrice float64   `json:"one_year_price"`
	OneYearROI   float64   `json:"one_year_roi"`
	Timestamp    time.Time `json:"timestamp"`
}

// PriceEvent is consumed from the ingestion pipeline. Numeric fields arrive as strings.
type PriceEvent struct {
	EventType string `json:"event_type"`
	Source    string `json:"source"`
	Data      struct {
		AssetID   string `json:"asset_id"`
		Date      string `json:"date"`
		Close     string `json:"close"`
		Volume    string `json:"volume"`
		MarketCap string `json:"market_cap,omitempty"`
	} `json:"data"`
}

// ForecastRun is the persisted summary of one generated forecast
type ForecastRun struct {
	RunID        string    `json:"run_id"`
	AssetID      string    `json:"asset_id"`
	CurrentPrice float64   `json:"current_price"`
	OneYearPrice float64   `json:"one_year_price"`
	OneYearROI   float64   `json:"one_year_roi"`
	MarketCap    float64   `json:"market_cap"`
	AsOf         time.Time `json:"as_of"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewForecastRun summarises bundle for storage
func NewForecastRun(bundle *ForecastBundle, marketCap float64) *ForecastRun {
	return &ForecastRun{
		RunID:        bundle.RunID,
		AssetID:      bundle.AssetID,
		CurrentPrice: bundle.CurrentPrice,
		OneYearPrice: bundle.Predictions.OneYear.Price,
		OneYearROI:   bundle.Predictions.OneYear.ROI,
		MarketCap:    marketCap,
		AsOf:         bundle.AsOf,
	}
}
