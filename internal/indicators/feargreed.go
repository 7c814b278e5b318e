package indicators

import "math"

// Fear/Greed zones
const (
	ZoneExtremeFear  = "Extreme Fear"
	ZoneFear         = "Fear"
	ZoneGreed        = "Greed"
	ZoneExtremeGreed = "Extreme Greed"
)

// FearGreedResult is the composite index and its zone
type FearGreedResult struct {
	Index           int
	Zone            string
	VolatilityScore float64
	VolumeScore     float64
	PriceScore      float64
}

// FearGreed averages a volatility score over the last 30 prices with volume and
// price change scores against their 7-period averages. A zero average turns the
// matching change into 0 so the sub-score sits at the neutral 50.
func FearGreed(prices, volumes []float64) FearGreedResult {
	volatility := Volatility(Tail(prices, 30), 0)

	volumeChange := ratioChange(volumes, 7)
	priceChange := ratioChange(prices, 7)

	res := FearGreedResult{
		VolatilityScore: clamp(50-volatility*100, 0, 100),
		VolumeScore:     clamp(50+volumeChange*100, 0, 100),
		PriceScore:      clamp(50+priceChange*100, 0, 100),
	}
	res.Index = int(math.Round((res.VolatilityScore + res.VolumeScore + res.PriceScore) / 3))
	res.Zone = FearGreedZone(res.Index)
	return res
}

// FearGreedZone buckets an index value
func FearGreedZone(index int) string {
	switch {
	case index <= 24:
		return ZoneExtremeFear
	case index <= 49:
		return ZoneFear
	case index <= 74:
		return ZoneGreed
	default:
		return ZoneExtremeGreed
	}
}

func ratioChange(values []float64, n int) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := Average(Tail(values, n))
	if avg == 0 {
		return 0
	}
	return values[len(values)-1]/avg - 1
}
