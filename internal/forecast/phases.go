package forecast

import "github.com/trogers1052/price-forecast-service/internal/models"

// phaseSpan is a phase with its minimum length and the width of its random extension
type phaseSpan struct {
	phase  models.MarketPhase
	min    int
	jitter int
}

const initialNeutralMonths = 3

// cycle is the repeating regime sequence, roughly 48 months end to end
var cycle = []phaseSpan{
	{phase: models.PhaseBullish, min: 10, jitter: 5},
	{phase: models.PhaseBearish, min: 8, jitter: 5},
	{phase: models.PhaseRecovery, min: 6, jitter: 5},
	{phase: models.PhaseNeutral, min: 15, jitter: 7},
}

// GenerateMarketCycles assigns a phase to each of totalMonths months: three
// neutral months, then bullish, bearish, recovery and neutral spans repeating
// until the horizon is covered. Span lengths draw from rng.
func GenerateMarketCycles(totalMonths int, rng Rand) []models.MarketPhase {
	if totalMonths <= 0 {
		return nil
	}
	phases := make([]models.MarketPhase, 0, totalMonths)

	for i := 0; i < initialNeutralMonths && len(phases) < totalMonths; i++ {
		phases = append(phases, models.PhaseNeutral)
	}

	for len(phases) < totalMonths {
		for _, span := range cycle {
			remaining := totalMonths - len(phases)
			if remaining <= 0 {
				break
			}
			duration := span.min + rng.Intn(span.jitter)
			if duration > remaining {
				duration = remaining
			}
			for i := 0; i < duration; i++ {
				phases = append(phases, span.phase)
			}
		}
	}
	return phases
}
