// Package sentiment maps indicator readings to a bounded market sentiment score.
package sentiment

import (
	"math"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

// Inputs are the latest readings the score is derived from.
// PriceChange24h and VolumeChange24h are fractions (0.05 == +5%).
type Inputs struct {
	RSI             float64
	MACDHistogram   float64
	PriceChange24h  float64
	VolumeChange24h float64
}

// Score is a 0-100 sentiment reading and its label
type Score struct {
	Score     float64 `json:"score"`
	Sentiment string  `json:"sentiment"`
}

// Calculate starts from a neutral 50 and adds bounded contributions from each input
func Calculate(in Inputs) Score {
	score := 50.0
	if math.IsNaN(in.RSI) {
		in.RSI = 50
	}

	// RSI: -20 .. +20
	switch {
	case in.RSI > 70:
		score -= 20
	case in.RSI < 30:
		score += 20
	default:
		score += (in.RSI - 50) / 20 * 10
	}

	score += clamp(in.MACDHistogram*100, -15, 15)
	score += clamp(in.PriceChange24h*2, -10, 10)
	score += clamp(in.VolumeChange24h/20, -5, 5)

	score = clamp(score, 0, 100)
	return Score{Score: score, Sentiment: Label(score)}
}

// Label buckets a score
func Label(score float64) string {
	switch {
	case score >= 75:
		return models.SentimentVeryBullish
	case score >= 60:
		return models.SentimentBullish
	case score >= 40:
		return models.SentimentNeutral
	case score >= 25:
		return models.SentimentBearish
	default:
		return models.SentimentVeryBearish
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(math.Max(v, lo), hi)
}
