package narrative

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatPrice renders a price with precision that scales with its magnitude
func FormatPrice(price float64) string {
	switch {
	case price < 0.0001:
		return decimal.NewFromFloat(price).StringFixed(8)
	case price < 0.01:
		return decimal.NewFromFloat(price).StringFixed(6)
	case price < 1:
		return decimal.NewFromFloat(price).StringFixed(4)
	case price < 100:
		return decimal.NewFromFloat(price).StringFixed(2)
	default:
		return humanize.Comma(int64(math.Round(price)))
	}
}

func roiDescription(roi float64) string {
	switch {
	case roi > 35:
		return fmt.Sprintf("substantial return (%.2f%%)", roi)
	case roi >= 15:
		return fmt.Sprintf("significant return (%.2f%%)", roi)
	case roi > 0:
		return fmt.Sprintf("positive potential return (%.2f%%)", roi)
	case roi == 0:
		return "neutral return"
	case roi >= -5:
		return fmt.Sprintf("slightly negative return (%.2f%%)", roi)
	case roi >= -10:
		return fmt.Sprintf("moderately negative return (%.2f%%)", roi)
	default:
		return fmt.Sprintf("significantly negative return (%.2f%%)", roi)
	}
}

func gainDescription(roi float64) string {
	switch {
	case roi > 25:
		return fmt.Sprintf("an impressive gain (%.2f%%)", roi)
	case roi >= 10:
		return fmt.Sprintf("a significant surge (%.2f%%)", roi)
	case roi > 0:
		return fmt.Sprintf("a slight gain (%.2f%%)", roi)
	case roi >= -5:
		return fmt.Sprintf("a slight decline (%.2f%%)", roi)
	case roi >= -20:
		return fmt.Sprintf("a notable decline (%.2f%%)", roi)
	default:
		return fmt.Sprintf("a terrifying decline (%.2f%%)", roi)
	}
}

func confidenceDescription(confidence float64) string {
	switch {
	case confidence >= 75:
		return fmt.Sprintf("strong confidence of %.1f%%", confidence)
	case confidence >= 50:
		return fmt.Sprintf("reliable confidence level of %.1f%%", confidence)
	default:
		return fmt.Sprintf("neutral sentiments at %.1f%%", confidence)
	}
}

func valuationDescription(roi float64) string {
	switch {
	case roi > 50:
		return "amusingly above"
	case roi >= 25:
		return "satisfactorily above"
	case roi >= 10:
		return "notably above"
	case roi > 0:
		return "slightly above"
	case roi == 0:
		return "at"
	case roi >= -5:
		return "slightly below"
	case roi >= -30:
		return "notably below"
	default:
		return "horrifyingly below"
	}
}

// sentenceCase upper-cases the first letter of s
func sentenceCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func join(parts ...string) string {
	return strings.Join(parts, " ")
}
