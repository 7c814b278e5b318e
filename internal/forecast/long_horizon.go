package forecast

import (
	"math"
	"time"

	"github.com/trogers1052/price-forecast-service/internal/models"
	"github.com/trogers1052/price-forecast-service/internal/narrative"
)

const (
	dampingStartYears   = 10
	dampingSpanYears    = 50.0
	minDampingFactor    = 0.8
	noiseDivisor        = 300.0
	minNoiseFactor      = 0.01
	capBaseMultiple     = 30.0
	capMultiplePerYear  = 0.7
	maxVolatilityFactor = 30.0
	bearishCapWeight    = 0.5
	baseConfidence      = 90.0
	minLongConfidence   = 60.0
)

// Long-horizon sentiment labels
const (
	LongExtremelyBearish  = "extremely bearish"
	LongModeratelyBearish = "moderately bearish"
	LongSlightlyBearish   = "slightly bearish"
	LongNeutral           = "neutral"
	LongSlightlyBullish   = "slightly bullish"
	LongMildlyBullish     = "mildly bullish"
	LongExtremelyBullish  = "extremely bullish"
)

// SynthesisInput parameterises one long-horizon run
type SynthesisInput struct {
	CurrentPrice float64
	Volatility   float64
	MarketCap    float64
	CoinName     string
	AsOf         time.Time
	Years        int
	// Phases overrides the generated cycle when non-nil. Months past its end are neutral.
	Phases []models.MarketPhase
}

// Synthesizer produces the month-by-month forecast table
type Synthesizer struct {
	tuning   Tuning
	rng      Rand
	narrator narrative.Generator
}

// NewSynthesizer creates a synthesizer drawing phase lengths and noise from rng
func NewSynthesizer(tuning Tuning, rng Rand, narrator narrative.Generator) *Synthesizer {
	if narrator == nil {
		narrator = narrative.Disabled{}
	}
	return &Synthesizer{tuning: tuning, rng: rng, narrator: narrator}
}

// Synthesize compounds a monthly price chain from the as-of month through
// December of the final year. Each month's price is the previous month's price
// times that month's rate, bounded by the long-range cap.
func (s *Synthesizer) Synthesize(in SynthesisInput) models.YearlyPredictions {
	years := in.Years
	if years <= 0 {
		years = s.tuning.HorizonYears
	}
	phases := in.Phases
	if phases == nil {
		phases = GenerateMarketCycles(years*12, s.rng)
	}

	currentYear := in.AsOf.Year()
	currentMonth := int(in.AsOf.Month()) - 1
	capMultiplier := s.tuning.CapMultiplier(in.MarketCap)

	table := make(models.YearlyPredictions)
	cumulative := in.CurrentPrice
	step := 0

	for year := currentYear; year < currentYear+years; year++ {
		yearsFromNow := year - currentYear
		var months []models.MonthlyPrediction

		for month := 0; month < 12; month++ {
			if year == currentYear && month < currentMonth {
				continue
			}
			monthsFromNow := yearsFromNow*12 + month - currentMonth

			phase := models.PhaseNeutral
			if step < len(phases) {
				phase = phases[step]
			}
			step++

			rate := s.monthlyRate(phase, capMultiplier, yearsFromNow)
			cumulative = math.Max(cumulative*rate*s.noise(phase, in.Volatility), priceFloor)

			maxAllowed := in.CurrentPrice * (capBaseMultiple + float64(yearsFromNow)*capMultiplePerYear)
			if cumulative > maxAllowed {
				cumulative = maxAllowed
			}

			band := math.Min(maxVolatilityFactor, in.Volatility*(1+float64(monthsFromNow)/100)) * phaseVolatility(phase)
			roi := (cumulative/in.CurrentPrice - 1) * 100
			confidence := math.Min(100, math.Max(minLongConfidence, baseConfidence-float64(monthsFromNow)/4))

			entry := models.MonthlyPrediction{
				Month:       time.Month(month + 1).String(),
				Year:        year,
				Price:       cumulative,
				MinPrice:    math.Max(cumulative*(1-band/100), priceFloor),
				MaxPrice:    cumulative * (1 + band/100),
				ROI:         roi,
				Sentiment:   LongHorizonSentiment(roi, phase),
				MarketPhase: phase,
				Confidence:  confidence,
			}

			scenarios := s.narrator.Scenarios(narrative.Input{
				CoinName:   in.CoinName,
				MonthIndex: month,
				Year:       year,
				MinPrice:   entry.MinPrice,
				MaxPrice:   entry.MaxPrice,
				AvgPrice:   entry.Price,
				ROI:        roi,
				Confidence: confidence,
			})
			entry.BullishScenario = scenarios.Bullish
			entry.BearishScenario = scenarios.Bearish
			entry.Description = scenarios.Description(roi)

			months = append(months, entry)
		}

		if len(months) > 0 {
			table[year] = months
		}
	}
	return table
}

// monthlyRate applies cap elasticity and long-range damping to the phase's base rate
func (s *Synthesizer) monthlyRate(phase models.MarketPhase, capMultiplier float64, yearsFromNow int) float64 {
	rate := s.tuning.PhaseRates.Rate(phase)

	switch phase {
	case models.PhaseBullish, models.PhaseRecovery:
		rate = 1 + (rate-1)*capMultiplier
	case models.PhaseBearish:
		// large caps decline less, small caps more
		bearish := 1 + (1-capMultiplier)*bearishCapWeight
		rate = 1 - (1-rate)*bearish
	}

	if yearsFromNow > dampingStartYears {
		factor := math.Max(minDampingFactor, 1-float64(yearsFromNow-dampingStartYears)/dampingSpanYears)
		if rate > 1 {
			rate = 1 + (rate-1)*factor
		} else if rate < 1 {
			rate = 1 - (1-rate)*factor
		}
	}
	return rate
}

// noise draws the multiplicative monthly shock. One draw is taken every month
// so the random stream does not depend on volatility.
func (s *Synthesizer) noise(phase models.MarketPhase, volatility float64) float64 {
	u := s.rng.Float64()*2 - 1
	return math.Max(minNoiseFactor, 1+u*(volatility/noiseDivisor)*phaseVolatility(phase))
}

func phaseVolatility(phase models.MarketPhase) float64 {
	switch phase {
	case models.PhaseBullish:
		return 1.2
	case models.PhaseBearish:
		return 1.5
	default:
		return 1
	}
}

// LongHorizonSentiment buckets roi and shifts the label one notch toward the
// phase's direction in bullish and bearish months
func LongHorizonSentiment(roi float64, phase models.MarketPhase) string {
	var label string
	switch {
	case roi < -50:
		label = LongExtremelyBearish
	case roi < -30:
		label = LongModeratelyBearish
	case roi < 0:
		label = LongSlightlyBearish
	case roi < 20:
		label = LongNeutral
	case roi < 100:
		label = LongSlightlyBullish
	case roi < 500:
		label = LongMildlyBullish
	default:
		label = LongExtremelyBullish
	}

	switch phase {
	case models.PhaseBullish:
		switch label {
		case LongNeutral:
			return LongSlightlyBullish
		case LongSlightlyBullish:
			return LongMildlyBullish
		case LongMildlyBullish:
			return LongExtremelyBullish
		}
	case models.PhaseBearish:
		switch label {
		case LongNeutral:
			return LongSlightlyBearish
		case LongSlightlyBearish:
			return LongModeratelyBearish
		case LongModeratelyBearish:
			return LongExtremelyBearish
		}
	}
	return label
}
