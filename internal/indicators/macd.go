package indicators

// Default MACD periods
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACDResult holds the three aligned MACD sequences
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// EMA computes an exponential moving average seeded with the first value,
// using k = 2/(period+1). Every position is defined.
func EMA(data []float64, period int) []float64 {
	out := make([]float64, len(data))
	if len(data) == 0 {
		return out
	}
	if period <= 0 {
		period = 1
	}

	k := 2 / float64(period+1)
	prev := data[0]
	out[0] = prev
	for i := 1; i < len(data); i++ {
		prev = data[i]*k + prev*(1-k)
		out[i] = prev
	}
	return out
}

// MACD computes the MACD line (fast EMA - slow EMA), its signal EMA and the histogram
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) MACDResult {
	fast := EMA(prices, fastPeriod)
	slow := EMA(prices, slowPeriod)

	line := make([]float64, len(prices))
	for i := range prices {
		line[i] = fast[i] - slow[i]
	}

	signal := EMA(line, signalPeriod)
	histogram := make([]float64, len(prices))
	for i := range line {
		histogram[i] = line[i] - signal[i]
	}

	return MACDResult{
		MACD:      line,
		Signal:    signal,
		Histogram: histogram,
	}
}
