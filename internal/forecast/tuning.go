package forecast

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

// CapTier maps a market-cap ceiling to a growth elasticity multiplier
type CapTier struct {
	Threshold  float64 `yaml:"threshold"`
	Multiplier float64 `yaml:"multiplier"`
}

// PhaseRates holds the base monthly growth multiplier of each market phase
type PhaseRates struct {
	Bullish  float64 `yaml:"bullish"`
	Neutral  float64 `yaml:"neutral"`
	Bearish  float64 `yaml:"bearish"`
	Recovery float64 `yaml:"recovery"`
}

// Rate returns the base rate for phase; unknown phases grow like neutral
func (r PhaseRates) Rate(phase models.MarketPhase) float64 {
	switch phase {
	case models.PhaseBullish:
		return r.Bullish
	case models.PhaseBearish:
		return r.Bearish
	case models.PhaseRecovery:
		return r.Recovery
	default:
		return r.Neutral
	}
}

// ShortHorizonBias holds the deliberate bullish skew of the short-horizon predictor.
// These are product constants, not fitted values.
type ShortHorizonBias struct {
	// Sentiment is added to the 24h price change fed to the scorer
	Sentiment       float64 `yaml:"sentiment"`
	BaseBias        float64 `yaml:"base_bias"`
	MaxLongTermBias float64 `yaml:"max_long_term_bias"`
	TrendFloor      float64 `yaml:"trend_floor"`
}

// Tuning is the full set of engine constants
type Tuning struct {
	ShortHorizonDays int              `yaml:"short_horizon_days"`
	HorizonYears     int              `yaml:"horizon_years"`
	Bias             ShortHorizonBias `yaml:"bias"`
	PhaseRates       PhaseRates       `yaml:"phase_rates"`
	CapTiers         []CapTier        `yaml:"cap_tiers"`
	ChartPoints      int              `yaml:"chart_points"`
	ChartDays        int              `yaml:"chart_days"`
}

// DefaultTuning returns the stock engine constants
func DefaultTuning() Tuning {
	return Tuning{
		ShortHorizonDays: 14,
		HorizonYears:     31,
		Bias: ShortHorizonBias{
			Sentiment:       0.25,
			BaseBias:        0.10,
			MaxLongTermBias: 0.35,
			TrendFloor:      0.25,
		},
		PhaseRates: PhaseRates{
			Bullish:  1.15,
			Neutral:  1.03,
			Bearish:  0.92,
			Recovery: 1.08,
		},
		CapTiers: []CapTier{
			{Threshold: 1e6, Multiplier: 1.3},
			{Threshold: 1e7, Multiplier: 1.2},
			{Threshold: 1e8, Multiplier: 1.15},
			{Threshold: 1e9, Multiplier: 1.1},
			{Threshold: 1e10, Multiplier: 1.0},
			{Threshold: 1e11, Multiplier: 0.9},
			{Threshold: 1e12, Multiplier: 0.8},
		},
		ChartPoints: 30,
		ChartDays:   365,
	}
}

// LoadTuning reads overrides from a YAML file on top of DefaultTuning.
// An empty path returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse tuning file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

// Validate rejects tunings the synthesizer cannot run with
func (t Tuning) Validate() error {
	if t.ShortHorizonDays < 0 {
		return fmt.Errorf("short_horizon_days must not be negative")
	}
	if t.HorizonYears <= 0 {
		return fmt.Errorf("horizon_years must be positive")
	}
	if len(t.CapTiers) == 0 {
		return fmt.Errorf("cap_tiers must not be empty")
	}
	for i := 1; i < len(t.CapTiers); i++ {
		if t.CapTiers[i].Threshold <= t.CapTiers[i-1].Threshold {
			return fmt.Errorf("cap_tiers must be in ascending threshold order")
		}
	}
	if t.ChartPoints <= 0 || t.ChartDays <= 0 {
		return fmt.Errorf("chart_points and chart_days must be positive")
	}
	return nil
}

// CapMultiplier returns the multiplier of the first tier whose threshold is at
// least marketCap. Caps above every threshold use the last tier.
func (t Tuning) CapMultiplier(marketCap float64) float64 {
	if len(t.CapTiers) == 0 {
		return 1
	}
	for _, tier := range t.CapTiers {
		if marketCap <= tier.Threshold {
			return tier.Multiplier
		}
	}
	return t.CapTiers[len(t.CapTiers)-1].Multiplier
}
