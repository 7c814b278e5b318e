// Package indicators computes technical indicators over a price series.
// Every sequence returned is index-aligned with its input. Positions without
// enough history hold Undefined rather than zero.
package indicators

import "math"

// Undefined marks a position that lacks the history an indicator needs
var Undefined = math.NaN()

// IsDefined reports whether v carries a computed value
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}

// Last returns the final value of a series and whether it is defined
func Last(series []float64) (float64, bool) {
	if len(series) == 0 {
		return Undefined, false
	}
	v := series[len(series)-1]
	return v, IsDefined(v)
}

// LastOr returns the final defined value of a series or fallback
func LastOr(series []float64, fallback float64) float64 {
	if v, ok := Last(series); ok {
		return v
	}
	return fallback
}

// Average returns the arithmetic mean, 0 for an empty slice
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Tail returns the last n values (all of them when n exceeds the length)
func Tail(values []float64, n int) []float64 {
	if n <= 0 || n >= len(values) {
		return values
	}
	return values[len(values)-n:]
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = Undefined
	}
	return out
}
