package models

import "time"

// MarketPhase is the growth regime assigned to one simulated month
type MarketPhase string

// Market phase constants
const (
	PhaseNeutral  MarketPhase = "neutral"
	PhaseBullish  MarketPhase = "bullish"
	PhaseBearish  MarketPhase = "bearish"
	PhaseRecovery MarketPhase = "recovery"
)

// Short-horizon sentiment labels
const (
	SentimentVeryBearish = "Very Bearish"
	SentimentBearish     = "Bearish"
	SentimentNeutral     = "Neutral"
	SentimentBullish     = "Bullish"
	SentimentVeryBullish = "Very Bullish"
)

// PricePoint is one observation of the historical series
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
}

// CoinInfo is the asset metadata shown alongside a forecast
type CoinInfo struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
	Rank   int    `json:"rank"`
}

// PredictionResult is the common output shape for short and long horizon queries
type PredictionResult struct {
	Price      float64 `json:"price"`
	MinPrice   float64 `json:"min_price"`
	MaxPrice   float64 `json:"max_price"`
	ROI        float64 `json:"roi"`
	Confidence float64 `json:"confidence"`
	Sentiment  string  `json:"sentiment"`
}

// MonthlyPrediction is one entry of the long-horizon table
type MonthlyPrediction struct {
	Month           string      `json:"month"`
	Year            int         `json:"year"`
	Price           float64     `json:"price"`
	MinPrice        float64     `json:"min_price"`
	MaxPrice        float64     `json:"max_price"`
	ROI             float64     `json:"roi"`
	Sentiment       string      `json:"sentiment"`
	MarketPhase     MarketPhase `json:"market_phase"`
	Confidence      float64     `json:"confidence"`
	Description     string      `json:"description,omitempty"`
	BullishScenario string      `json:"bullish_scenario,omitempty"`
	BearishScenario string      `json:"bearish_scenario,omitempty"`
}

// MonthIndex returns the zero-based calendar month of the entry, or -1 if the name is unknown
func (m MonthlyPrediction) MonthIndex() int {
	return MonthIndex(m.Month)
}

// Result converts the entry to the common prediction shape
func (m MonthlyPrediction) Result() PredictionResult {
	return PredictionResult{
		Price:      m.Price,
		MinPrice:   m.MinPrice,
		MaxPrice:   m.MaxPrice,
		ROI:        m.ROI,
		Confidence: m.Confidence,
		Sentiment:  m.Sentiment,
	}
}

// YearlyPredictions maps a calendar year to its months in calendar order.
// Years without any produced month are absent.
type YearlyPredictions map[int][]MonthlyPrediction

// MonthIndex maps an English month name to its zero-based index, -1 when unknown
func MonthIndex(name string) int {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return int(m) - 1
		}
	}
	return -1
}

// ChartPoint is one point of the projected price trajectory
type ChartPoint struct {
	Time  int64   `json:"time"` // unix millis
	Price float64 `json:"price"`
}

// HorizonPredictions holds the fixed set of headline horizons
type HorizonPredictions struct {
	ThreeDay   PredictionResult `json:"three_day"`
	FiveDay    PredictionResult `json:"five_day"`
	OneMonth   PredictionResult `json:"one_month"`
	ThreeMonth PredictionResult `json:"three_month"`
	SixMonth   PredictionResult `json:"six_month"`
	OneYear    PredictionResult `json:"one_year"`
}

// TechnicalSnapshot summarises the latest indicator readings
type TechnicalSnapshot struct {
	SMA50          float64 `json:"sma50"`
	SMA200         float64 `json:"sma200"`
	RSI14          float64 `json:"rsi14"`
	Volatility     float64 `json:"volatility"`
	FearGreedIndex int     `json:"fear_greed_index"`
	FearGreedZone  string  `json:"fear_greed_zone"`
	GreenDays      string  `json:"green_days"`
	IsProfitable   bool    `json:"is_profitable"`
}

// ForecastBundle is the complete multi-horizon result for one asset
type ForecastBundle struct {
	RunID               string             `json:"run_id"`
	AssetID             string             `json:"asset_id"`
	Coin                CoinInfo           `json:"coin"`
	CurrentPrice        float64            `json:"current_price"`
	Rank                int                `json:"rank"`
	AsOf                time.Time          `json:"as_of"`
	Predictions         HorizonPredictions `json:"predictions"`
	ChartData           []ChartPoint       `json:"chart_data"`
	YearlyPredictions   YearlyPredictions  `json:"yearly_predictions"`
	TechnicalIndicators TechnicalSnapshot  `json:"technical_indicators"`
}
