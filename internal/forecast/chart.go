package forecast

import (
	"math"
	"time"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

const (
	interpolationDays = 10
	daysPerMonth      = 30
)

// BuildChart returns the projected trajectory: the current price at asOf
// followed by points evenly spaced over the next days days. Points within ten
// days interpolate toward the earliest monthly entry; later points take the
// nearest month's price.
func BuildChart(table models.YearlyPredictions, currentPrice float64, asOf time.Time, points, days int) []models.ChartPoint {
	chart := make([]models.ChartPoint, 0, points+1)
	chart = append(chart, models.ChartPoint{Time: asOf.UnixMilli(), Price: currentPrice})

	for i := 1; i <= points; i++ {
		offset := int(math.Floor(float64(i) / float64(points) * float64(days)))
		at := asOf.AddDate(0, 0, offset)
		chart = append(chart, models.ChartPoint{
			Time:  at.UnixMilli(),
			Price: chartPrice(table, currentPrice, asOf, at),
		})
	}
	return chart
}

func chartPrice(table models.YearlyPredictions, currentPrice float64, asOf, at time.Time) float64 {
	if DaysBetween(asOf, at) <= interpolationDays {
		return interpolate(table, currentPrice, asOf, at)
	}

	if _, ok := table[at.Year()]; !ok {
		if dec, ok := lastDecember(table); ok {
			return dec.Price
		}
		return currentPrice
	}
	if entry, ok := closestInYear(table, at.Year(), int(at.Month())-1); ok {
		return entry.Price
	}
	return currentPrice
}

func interpolate(table models.YearlyPredictions, currentPrice float64, asOf, at time.Time) float64 {
	months := table[asOf.Year()]
	if len(months) == 0 {
		return currentPrice
	}
	earliest := months[0]
	for _, p := range months[1:] {
		if p.MonthIndex() < earliest.MonthIndex() {
			earliest = p
		}
	}

	daysToFirst := (earliest.MonthIndex() - (int(asOf.Month()) - 1)) * daysPerMonth
	if daysToFirst <= 0 {
		return earliest.Price
	}
	progress := float64(DaysBetween(asOf, at)) / math.Max(float64(daysToFirst), daysPerMonth)
	return currentPrice + progress*(earliest.Price-currentPrice)
}
