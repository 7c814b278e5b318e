// Package narrative renders the bullish and bearish prose attached to each
// monthly forecast entry. It only formats numbers it is given, so it can be
// swapped or disabled without touching forecast numerics.
package narrative

import (
	"fmt"
	"time"
)

// Input is the numeric state of one monthly entry
type Input struct {
	CoinName   string
	MonthIndex int // 0 = January
	Year       int
	MinPrice   float64
	MaxPrice   float64
	AvgPrice   float64
	ROI        float64
	Confidence float64
}

// Scenarios is the rendered pair of narratives
type Scenarios struct {
	Bullish string
	Bearish string
}

// Description returns the narrative that matches the sign of roi
func (s Scenarios) Description(roi float64) string {
	if roi >= 0 {
		return s.Bullish
	}
	return s.Bearish
}

// Generator renders scenarios for a monthly entry
type Generator interface {
	Scenarios(in Input) Scenarios
}

// Picker chooses a phrase index. *rand.Rand satisfies it.
type Picker interface {
	Intn(n int) int
}

// Templates picks one phrase per sentence category from fixed phrase pools
type Templates struct {
	picker Picker
}

// NewTemplates creates a template generator drawing choices from picker
func NewTemplates(picker Picker) *Templates {
	return &Templates{picker: picker}
}

// Scenarios renders both narratives for in
func (t *Templates) Scenarios(in Input) Scenarios {
	return Scenarios{
		Bullish: t.bullish(in),
		Bearish: t.bearish(in),
	}
}

func (t *Templates) pick(options []string) string {
	return options[t.picker.Intn(len(options))]
}

func monthName(index int) string {
	if index < 0 || index > 11 {
		index = 0
	}
	return time.Month(index + 1).String()
}

func (t *Templates) bullish(in Input) string {
	month := monthName(in.MonthIndex)
	ctx := monthContextFor(in.MonthIndex)
	lo, hi, avg := FormatPrice(in.MinPrice), FormatPrice(in.MaxPrice), FormatPrice(in.AvgPrice)

	openings := []string{
		fmt.Sprintf("%s %d shows %s establishing a trading range from $%s to $%s.", month, in.Year, in.CoinName, lo, hi),
		fmt.Sprintf("%s price action in %s %d points to a trading corridor of $%s-$%s.", in.CoinName, month, in.Year, lo, hi),
		fmt.Sprintf("%s %d projects %s trading between $%s and $%s.", month, in.Year, in.CoinName, lo, hi),
		fmt.Sprintf("%s could reach $%s-$%s during %s %d.", in.CoinName, lo, hi, month, in.Year),
		fmt.Sprintf("A bullish %s %d outlook places %s at the range of $%s-$%s.", month, in.Year, in.CoinName, lo, hi),
	}
	analysis := []string{
		fmt.Sprintf("Our research and analysis model calculates an average price of $%s, representing %s from current levels.", avg, gainDescription(in.ROI)),
		fmt.Sprintf("Technical analysis suggests an average value of $%s, %s from today's price.", avg, gainDescription(in.ROI)),
		fmt.Sprintf("The forecast indicates an average price target of $%s, %.2f%% %s the current valuation.", avg, in.ROI, valuationDescription(in.ROI)),
		fmt.Sprintf("Analysis projects an average of $%s, yielding a %s on investment.", avg, roiDescription(in.ROI)),
	}
	context := []string{
		"This bullish scenario aligns with traditional trend continuation patterns observed during this period.",
		fmt.Sprintf("%s's typical market dynamics support this outlook.", quarter(in.MonthIndex)),
		fmt.Sprintf("%s contributes to this positive projection.", sentenceCase(ctx.market)),
		fmt.Sprintf("%s creates a favorable backdrop for this prediction.", sentenceCase(yearContextFor(in.Year))),
	}
	confidence := []string{
		fmt.Sprintf("Technical indicators also support this prediction with %s.", confidenceDescription(in.Confidence)),
		fmt.Sprintf("Our research and analysis model shows %s.", confidenceDescription(in.Confidence)),
		fmt.Sprintf("The projection carries %s based on multiple indicators.", confidenceDescription(in.Confidence)),
		fmt.Sprintf("Analysis indicates %s in this bullish scenario.", confidenceDescription(in.Confidence)),
	}

	return join(t.pick(openings), t.pick(analysis), t.pick(context), t.pick(confidence))
}

func (t *Templates) bearish(in Input) string {
	month := monthName(in.MonthIndex)
	ctx := monthContextFor(in.MonthIndex)
	lo, hi, avg := FormatPrice(in.MinPrice), FormatPrice(in.MaxPrice), FormatPrice(in.AvgPrice)

	term := "conservative"
	if in.ROI < 0 {
		term = "bearish"
	}

	openings := []string{
		fmt.Sprintf("%s %d suggests %s trading between $%s and $%s.", month, in.Year, in.CoinName, lo, hi),
		fmt.Sprintf("%s may trade in a range of $%s-$%s during %s %d.", in.CoinName, lo, hi, month, in.Year),
		fmt.Sprintf("%s %d indicates a %s price corridor of $%s-$%s.", month, in.Year, in.CoinName, lo, hi),
		fmt.Sprintf("A %s %s %d places %s at $%s-$%s.", term, month, in.Year, in.CoinName, lo, hi),
		fmt.Sprintf("%s price action for %s %d shows a range of $%s-$%s.", in.CoinName, month, in.Year, lo, hi),
	}
	analysis := []string{
		fmt.Sprintf("Our well-established and trained analysis model calculates an average price of $%s, representing %s from current levels.", avg, gainDescription(in.ROI)),
		fmt.Sprintf("Technical analysis suggests an average value of $%s, %s from today's price.", avg, gainDescription(in.ROI)),
		fmt.Sprintf("The forecast indicates an average price target of $%s, %.2f%% %s the current valuation.", avg, in.ROI, valuationDescription(in.ROI)),
		fmt.Sprintf("Analysis projects an average of $%s, yielding a %s on investment.", avg, roiDescription(in.ROI)),
	}
	context := []string{
		fmt.Sprintf("This %s scenario accounts for %s.", term, ctx.seasonal),
		fmt.Sprintf("%s's market dynamics factor into this projection.", quarter(in.MonthIndex)),
		fmt.Sprintf("%s influences this %s outlook.", sentenceCase(ctx.market), term),
		fmt.Sprintf("%s provides important context for this forecast.", sentenceCase(yearContextFor(in.Year))),
	}
	confidence := []string{
		fmt.Sprintf("Our indicators-based and reliable analysis model shows %s.", confidenceDescription(in.Confidence)),
		fmt.Sprintf("Technical indicators also support this prediction with %s.", confidenceDescription(in.Confidence)),
		fmt.Sprintf("The projection carries %s based on multiple factors.", confidenceDescription(in.Confidence)),
		fmt.Sprintf("Analysis indicates %s in this scenario.", confidenceDescription(in.Confidence)),
	}

	return join(t.pick(openings), t.pick(analysis), t.pick(context), t.pick(confidence))
}

// Disabled renders no narrative
type Disabled struct{}

// Scenarios returns empty narratives
func (Disabled) Scenarios(Input) Scenarios {
	return Scenarios{}
}
