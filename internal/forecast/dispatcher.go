package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

const hoursPerDay = 24

// FallbackResult is returned when no monthly entry can answer a query
func FallbackResult(currentPrice float64) models.PredictionResult {
	return models.PredictionResult{
		Price:      currentPrice * 1.1,
		MinPrice:   currentPrice * 0.9,
		MaxPrice:   currentPrice * 1.3,
		ROI:        10,
		Confidence: 70,
		Sentiment:  models.SentimentNeutral,
	}
}

// FindClosestMonthlyPrediction returns the entry of targetYear whose month is
// nearest to targetMonth (zero-based). The first entry wins on ties. A year
// absent from the table yields FallbackResult.
func FindClosestMonthlyPrediction(table models.YearlyPredictions, targetYear, targetMonth int, currentPrice float64) models.PredictionResult {
	entry, ok := closestInYear(table, targetYear, targetMonth)
	if !ok {
		return FallbackResult(currentPrice)
	}
	return entry.Result()
}

func closestInYear(table models.YearlyPredictions, year, month int) (models.MonthlyPrediction, bool) {
	var closest models.MonthlyPrediction
	found := false
	best := math.MaxInt

	for _, p := range table[year] {
		distance := p.MonthIndex() - month
		if distance < 0 {
			distance = -distance
		}
		if distance < best {
			best = distance
			closest = p
			found = true
		}
	}
	return closest, found
}

// lastDecember returns the December entry of the latest year in the table
func lastDecember(table models.YearlyPredictions) (models.MonthlyPrediction, bool) {
	years := make([]int, 0, len(table))
	for y := range table {
		years = append(years, y)
	}
	if len(years) == 0 {
		return models.MonthlyPrediction{}, false
	}
	sort.Ints(years)

	for _, p := range table[years[len(years)-1]] {
		if p.Month == time.December.String() {
			return p, true
		}
	}
	return models.MonthlyPrediction{}, false
}

// DaysBetween counts whole days from asOf to target, negative when target is earlier
func DaysBetween(asOf, target time.Time) int {
	return int(math.Floor(target.Sub(asOf).Hours() / hoursPerDay))
}

// Dispatcher routes a target date to the short-horizon predictor or the
// long-horizon table of one forecast run
type Dispatcher struct {
	Analysis     Analysis
	Table        models.YearlyPredictions
	CurrentPrice float64
	AsOf         time.Time
	Tuning       Tuning
}

// Predict answers a query for target. Dates under the short-horizon cutoff use
// the indicator predictor. Later dates use the nearest month of the target
// year, the last December when the year lies past the synthesized horizon, or
// FallbackResult when there is no table at all.
func (d Dispatcher) Predict(target time.Time) models.PredictionResult {
	days := DaysBetween(d.AsOf, target)
	if days < d.Tuning.ShortHorizonDays {
		return PredictShortHorizon(d.Analysis, d.CurrentPrice, days, d.Tuning.Bias)
	}

	if len(d.Table) == 0 {
		return FallbackResult(d.CurrentPrice)
	}
	if _, ok := d.Table[target.Year()]; !ok && target.Year() > d.AsOf.Year() {
		if dec, ok := lastDecember(d.Table); ok {
			return dec.Result()
		}
	}
	return FindClosestMonthlyPrediction(d.Table, target.Year(), int(target.Month())-1, d.CurrentPrice)
}

// Horizons evaluates the fixed headline horizons relative to the run's as-of time
func (d Dispatcher) Horizons() models.HorizonPredictions {
	return models.HorizonPredictions{
		ThreeDay:   d.Predict(d.AsOf.AddDate(0, 0, 3)),
		FiveDay:    d.Predict(d.AsOf.AddDate(0, 0, 5)),
		OneMonth:   d.Predict(d.AsOf.AddDate(0, 1, 0)),
		ThreeMonth: d.Predict(d.AsOf.AddDate(0, 3, 0)),
		SixMonth:   d.Predict(d.AsOf.AddDate(0, 6, 0)),
		OneYear:    d.Predict(d.AsOf.AddDate(1, 0, 0)),
	}
}
