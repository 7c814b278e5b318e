package forecast

import (
	"math"

	"github.com/trogers1052/price-forecast-service/internal/indicators"
	"github.com/trogers1052/price-forecast-service/internal/models"
	"github.com/trogers1052/price-forecast-service/internal/sentiment"
)

const (
	minPriceFraction     = 0.10
	minBandFraction      = 0.05
	bandWidth            = 1.5
	defaultSupportRatio  = 0.8
	defaultResistRatio   = 1.2
	longTermBiasPerYear  = 0.4
	bullishTrend         = 1.2
	bearishTrend         = -0.3
	macdBearishCutoff    = -0.25
	rsiBearishCutoff     = 35.0
	severeRSI            = 25.0
	severeHistogram      = -0.3
	severePriceChange    = -0.15
	skewedRSIShift       = 15.0
	skewedRSICap         = 75.0
	skewedHistogramFloor = 0.1
	skewedHistogramShift = 0.05
	skewedPriceFloor     = 0.02
	skewedVolumeFactor   = 1.5
)

// priceFloor keeps every emitted price strictly positive
const priceFloor = 1e-12

// SkewedSentiment scores the analysis with the bullish skew applied to every input
func SkewedSentiment(a Analysis, bias ShortHorizonBias) sentiment.Score {
	hist := a.MACDHistogram
	if hist >= severeHistogram {
		hist = math.Max(skewedHistogramFloor, hist+skewedHistogramShift)
	}
	change := a.PriceChange24h
	if change >= severePriceChange {
		change = math.Max(skewedPriceFloor, change+bias.Sentiment)
	}

	return sentiment.Calculate(sentiment.Inputs{
		RSI:             math.Min(skewedRSICap, a.RSI+skewedRSIShift),
		MACDHistogram:   hist,
		PriceChange24h:  change,
		VolumeChange24h: a.VolumeChange24h + bias.Sentiment*skewedVolumeFactor,
	})
}

// SeverelyBearish reports whether RSI, histogram and price change are all deeply negative
func (a Analysis) SeverelyBearish() bool {
	return a.RSI < severeRSI && a.MACDHistogram < severeHistogram && a.PriceChange24h < severePriceChange
}

// PredictShortHorizon estimates the price daysToTarget days ahead from the series indicators
func PredictShortHorizon(a Analysis, currentPrice float64, daysToTarget int, bias ShortHorizonBias) models.PredictionResult {
	if daysToTarget < 0 {
		daysToTarget = 0
	}
	score := SkewedSentiment(a, bias)
	severe := a.SeverelyBearish()

	macdTrend := bullishTrend
	if a.MACDHistogram < macdBearishCutoff {
		macdTrend = bearishTrend
	}
	rsiTrend := bullishTrend
	if a.RSI < rsiBearishCutoff {
		rsiTrend = bearishTrend
	}
	trend := (macdTrend + rsiTrend) / 2
	if !severe {
		trend = math.Max(bias.TrendFloor, trend)
	}

	years := float64(daysToTarget) / 365
	volAdjustment := a.Volatility * math.Sqrt(years)

	predicted := currentPrice * (1 + trend*volAdjustment)
	if !severe {
		longTerm := math.Min(bias.MaxLongTermBias, years*longTermBiasPerYear)
		predicted *= 1 + bias.BaseBias + longTerm
	}
	floor := math.Max(currentPrice*minPriceFraction, priceFloor)
	predicted = math.Max(predicted, floor)

	support, ok := indicators.Nearest(a.Levels.Support, predicted)
	if !ok {
		support = currentPrice * defaultSupportRatio
	}
	resistance, ok := indicators.Nearest(a.Levels.Resistance, predicted)
	if !ok {
		resistance = currentPrice * defaultResistRatio
	}
	if predicted < support {
		predicted = (predicted + support) / 2
	}
	if predicted > resistance {
		predicted = (predicted + resistance) / 2
	}
	predicted = math.Max(predicted, floor)

	// band is derived after the support/resistance pull so it always brackets the price
	minPrice := math.Max(predicted*(1-volAdjustment*bandWidth), currentPrice*minBandFraction)
	minPrice = math.Max(math.Min(minPrice, predicted), priceFloor)
	maxPrice := math.Max(predicted*(1+volAdjustment*bandWidth), predicted)

	timeFactor := math.Min(1, 365/math.Max(float64(daysToTarget), 1))
	confidenceBias := -5.0
	if predicted > currentPrice {
		confidenceBias = 10
	}
	confidence := score.Score*0.3 + timeFactor*40 + (1-volAdjustment)*30 + confidenceBias

	return models.PredictionResult{
		Price:      predicted,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		ROI:        (predicted/currentPrice - 1) * 100,
		Confidence: clamp(confidence, 0, 100),
		Sentiment:  score.Sentiment,
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
