package narrative

// monthContext is the calendar colour woven into a month's narrative
type monthContext struct {
	event    string
	market   string
	seasonal string
}

var monthContexts = [12]monthContext{
	{"the beginning of the year", "post-holiday trading patterns", "typically a month of portfolio repositioning"},
	{"early Q1 earnings season", "evolving Q1 market sentiment", "often shows consolidation after January moves"},
	{"the end of Q1", "fiscal quarter-end institutional flows", "historically a transition month with mixed volatility"},
	{"Q1 earnings results", "beginning of Q2 positioning", "traditionally a period of renewed market activity"},
	{"mid-quarter economic reports", "evolving Q2 trends", "often marks directional clarity after Q1 uncertainty"},
	{"mid-year portfolio rebalancing", "end of Q2 adjustments", "frequently displays pre-summer positioning activity"},
	{"Q2 earnings season", "beginning of Q3 trading patterns", "often shows decreased volatility with summer trading volumes"},
	{"late summer market activity", "traditionally thinner liquidity conditions", "historically a period of range-bound trading"},
	{"end of Q3 positioning", "pre-Q4 adjustments", "typically exhibits increased volatility"},
	{"Q3 earnings reports", "beginning of Q4 strategies", "often marks a pivot month for yearly trends"},
	{"pre-holiday market positioning", "early holiday season trading patterns", "traditionally a period of trend continuation"},
	{"year-end portfolio adjustments", "reduced holiday trading volumes", "typically marked by tax-related positioning and window dressing"},
}

// monthContextFor falls back to January for an out-of-range index
func monthContextFor(monthIndex int) monthContext {
	if monthIndex < 0 || monthIndex >= len(monthContexts) {
		return monthContexts[0]
	}
	return monthContexts[monthIndex]
}

// quarter returns the quarter label of a zero-based month
func quarter(monthIndex int) string {
	switch {
	case monthIndex <= 2:
		return "Q1"
	case monthIndex <= 5:
		return "Q2"
	case monthIndex <= 8:
		return "Q3"
	default:
		return "Q4"
	}
}

type yearContext struct {
	year   int
	phrase string
}

var yearContexts = []yearContext{
	{2025, "the post-ETF adoption phase"},
	{2026, "the post-halving market cycle"},
	{2027, "the maturing digital asset ecosystem"},
	{2028, "the pre-halving anticipation period"},
	{2030, "the established institutional framework"},
}

const defaultYearContext = "ongoing market evolution"

func yearContextFor(year int) string {
	for _, yc := range yearContexts {
		if yc.year == year {
			return yc.phrase
		}
	}
	return defaultYearContext
}
