package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Indicator type constants
const (
	IndicatorSMA50      = "SMA_50"
	IndicatorSMA200     = "SMA_200"
	IndicatorRSI14      = "RSI_14"
	IndicatorVolatility = "VOLATILITY_30"
	IndicatorFearGreed  = "FEAR_GREED"
)

// TechnicalIndicator is one stored indicator reading of an asset on a date
type TechnicalIndicator struct {
	ID            int             `json:"id"`
	AssetID       string          `json:"asset_id"`
	Date          time.Time       `json:"date"`
	IndicatorType string          `json:"indicator_type"`
	Value         decimal.Decimal `json:"value"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IndicatorsFromSnapshot splits the snapshot of bundle into one row per indicator, dated by its as-of day
func IndicatorsFromSnapshot(bundle *ForecastBundle) []*TechnicalIndicator {
	date := bundle.AsOf.UTC().Truncate(24 * time.Hour)
	snap := bundle.TechnicalIndicators
	values := []struct {
		kind  string
		value float64
	}{
		{IndicatorSMA50, snap.SMA50},
		{IndicatorSMA200, snap.SMA200},
		{IndicatorRSI14, snap.RSI14},
		{IndicatorVolatility, snap.Volatility},
		{IndicatorFearGreed, float64(snap.FearGreedIndex)},
	}

	out := make([]*TechnicalIndicator, 0, len(values))
	for _, v := range values {
		out = append(out, &TechnicalIndicator{
			AssetID:       bundle.AssetID,
			Date:          date,
			IndicatorType: v.kind,
			Value:         decimal.NewFromFloat(v.value),
		})
	}
	return out
}
