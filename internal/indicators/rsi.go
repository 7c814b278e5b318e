package indicators

// DefaultRSIPeriod is the standard RSI lookback
const DefaultRSIPeriod = 14

// RSI computes the relative strength index from simple averages of the
// trailing period price changes. A window with no losses yields exactly 100.
func RSI(prices []float64, period int) []float64 {
	out := undefinedSeries(len(prices))
	if period <= 0 || len(prices) <= period {
		return out
	}

	gains := make([]float64, len(prices)-1)
	losses := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	for i := period; i < len(prices); i++ {
		avgGain := Average(gains[i-period : i])
		avgLoss := Average(losses[i-period : i])

		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = clamp(100-100/(1+rs), 0, 100)
	}
	return out
}
