package indicators

import "math"

// DefaultLevelWindow is the neighbourhood half-width for support/resistance detection
const DefaultLevelWindow = 20

// Levels holds the price values that qualified as support or resistance
type Levels struct {
	Support    []float64
	Resistance []float64
}

// SupportResistance finds local extremes. A price is support when it is the
// minimum of prices[i-window : i+window], resistance when it is the maximum.
// Only positions with a full neighbourhood on both sides are examined.
func SupportResistance(prices []float64, window int) Levels {
	var levels Levels
	if window <= 0 {
		return levels
	}

	for i := window; i < len(prices)-window; i++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range prices[i-window : i+window] {
			lo = math.Min(lo, p)
			hi = math.Max(hi, p)
		}
		if prices[i] <= lo {
			levels.Support = append(levels.Support, prices[i])
		}
		if prices[i] >= hi {
			levels.Resistance = append(levels.Resistance, prices[i])
		}
	}
	return levels
}

// Nearest returns the level closest to price, first match on ties.
// ok is false when levels is empty.
func Nearest(levels []float64, price float64) (float64, bool) {
	if len(levels) == 0 {
		return 0, false
	}
	best := levels[0]
	for _, l := range levels[1:] {
		if math.Abs(l-price) < math.Abs(best-price) {
			best = l
		}
	}
	return best, true
}
