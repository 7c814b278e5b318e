package indicators

import "math"

// Default Bollinger parameters
const (
	DefaultBollingerPeriod     = 20
	DefaultBollingerMultiplier = 2.0
)

// BollingerResult holds the upper, middle and lower bands
type BollingerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes bands at multiplier population standard deviations around the SMA
func Bollinger(prices []float64, period int, multiplier float64) BollingerResult {
	middle := SMA(prices, period)
	upper := undefinedSeries(len(prices))
	lower := undefinedSeries(len(prices))

	for i := range prices {
		if !IsDefined(middle[i]) {
			continue
		}
		window := prices[i-period+1 : i+1]
		squares := 0.0
		for _, p := range window {
			diff := p - middle[i]
			squares += diff * diff
		}
		halfWidth := multiplier * math.Sqrt(squares/float64(period))
		upper[i] = middle[i] + halfWidth
		lower[i] = middle[i] - halfWidth
	}

	return BollingerResult{
		Upper:  upper,
		Middle: middle,
		Lower:  lower,
	}
}
