package indicators

// SMA computes the simple moving average over a sliding window of period values
func SMA(prices []float64, period int) []float64 {
	out := undefinedSeries(len(prices))
	if period <= 0 {
		return out
	}

	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}
