package upstream

import (
	"fmt"
	"math"
	"time"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

// DefaultMarketCap is assumed when the market cap cannot be fetched
const DefaultMarketCap = 1e9

// DefaultCoinInfo is used when coin metadata cannot be fetched
func DefaultCoinInfo() models.CoinInfo {
	return models.CoinInfo{Name: "Bitcoin", Ticker: "BTC", Rank: 1}
}

// FallbackSeries is the minimal two-point history substituted when the chart
// cannot be fetched
func FallbackSeries(asOf time.Time) []models.PricePoint {
	return []models.PricePoint{
		{Timestamp: asOf.AddDate(0, 0, -30), Price: 1000, Volume: 1000000},
		{Timestamp: asOf, Price: 1100, Volume: 1100000},
	}
}

// ValidateSeries rejects a history the engine cannot use: an empty series,
// timestamps out of order, or a last price that is not a finite positive number
func ValidateSeries(series []models.PricePoint) error {
	if len(series) == 0 {
		return ErrEmptyResult
	}
	for i := 1; i < len(series); i++ {
		if !series[i].Timestamp.After(series[i-1].Timestamp) {
			return fmt.Errorf("%w: timestamps not ascending at index %d", ErrMalformed, i)
		}
	}
	last := series[len(series)-1].Price
	if math.IsNaN(last) || math.IsInf(last, 0) || last <= 0 {
		return fmt.Errorf("%w: last price %v", ErrMalformed, last)
	}
	return nil
}
