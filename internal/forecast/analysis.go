package forecast

import (
	"github.com/trogers1052/price-forecast-service/internal/indicators"
)

// Analysis is the indicator state of one series, computed once per run and
// shared by every short-horizon query
type Analysis struct {
	Prices          []float64
	Volumes         []float64
	RSI             float64
	MACDHistogram   float64
	Levels          indicators.Levels
	Volatility      float64
	PriceChange24h  float64
	VolumeChange24h float64
}

// Analyze computes the indicator state of prices/volumes. Undefined RSI reads as a neutral 50.
func Analyze(prices, volumes []float64) Analysis {
	macd := indicators.MACD(prices, indicators.DefaultMACDFast, indicators.DefaultMACDSlow, indicators.DefaultMACDSignal)

	return Analysis{
		Prices:          prices,
		Volumes:         volumes,
		RSI:             indicators.LastOr(indicators.RSI(prices, indicators.DefaultRSIPeriod), 50),
		MACDHistogram:   indicators.LastOr(macd.Histogram, 0),
		Levels:          indicators.SupportResistance(prices, indicators.DefaultLevelWindow),
		Volatility:      indicators.Volatility(prices, 0),
		PriceChange24h:  lastChange(prices),
		VolumeChange24h: lastChange(volumes),
	}
}

// lastChange is the fractional change between the last two values, 0 when the
// base is missing or not positive
func lastChange(values []float64) float64 {
	n := len(values)
	if n < 2 || values[n-2] <= 0 {
		return 0
	}
	return (values[n-1] - values[n-2]) / values[n-2]
}
