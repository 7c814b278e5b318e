package indicators

import "math"

// TradingDaysPerYear annualises daily return volatility
const TradingDaysPerYear = 252

// Volatility returns the population standard deviation of simple returns over
// the last window prices, annualised by sqrt(252). A window <= 0 uses the whole
// series. Returns whose base price is not positive are skipped; fewer than one
// usable return yields 0.
func Volatility(prices []float64, window int) float64 {
	prices = Tail(prices, window)

	returns := make([]float64, 0, len(prices))
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	if len(returns) == 0 {
		return 0
	}

	mean := Average(returns)
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear)
}
