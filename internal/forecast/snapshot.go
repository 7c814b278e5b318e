package forecast

import (
	"fmt"
	"math"

	"github.com/trogers1052/price-forecast-service/internal/indicators"
	"github.com/trogers1052/price-forecast-service/internal/models"
)

const (
	greenDayWindow      = 30
	profitableRSI       = 50.0
	profitableGreenDays = 15
	snapshotVolWindow   = 30
)

// Snapshot summarises the latest indicator readings of a series
func Snapshot(prices, volumes []float64) models.TechnicalSnapshot {
	fg := indicators.FearGreed(prices, volumes)
	sma50 := indicators.LastOr(indicators.SMA(prices, 50), 0)
	sma200 := indicators.LastOr(indicators.SMA(prices, 200), 0)
	rsi := indicators.LastOr(indicators.RSI(prices, indicators.DefaultRSIPeriod), 50)
	green := GreenDays(prices)

	return models.TechnicalSnapshot{
		SMA50:          sma50,
		SMA200:         sma200,
		RSI14:          rsi,
		Volatility:     indicators.Volatility(prices, snapshotVolWindow),
		FearGreedIndex: fg.Index,
		FearGreedZone:  fg.Zone,
		GreenDays:      fmt.Sprintf("%d/%d (%d%%)", green, greenDayWindow, int(math.Round(float64(green)/greenDayWindow*100))),
		IsProfitable:   rsi > profitableRSI && sma50 > sma200 && green > profitableGreenDays,
	}
}

// GreenDays counts closes above the previous close within the last 30 prices
func GreenDays(prices []float64) int {
	recent := indicators.Tail(prices, greenDayWindow)
	count := 0
	for i := 1; i < len(recent); i++ {
		if recent[i] > recent[i-1] {
			count++
		}
	}
	return count
}
