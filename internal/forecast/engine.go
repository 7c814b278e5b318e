// Package forecast synthesizes multi-horizon price forecasts from a historical series.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trogers1052/price-forecast-service/internal/indicators"
	"github.com/trogers1052/price-forecast-service/internal/models"
	"github.com/trogers1052/price-forecast-service/internal/narrative"
)

// longHorizonVolWindow is the number of trailing prices feeding long-horizon volatility
const longHorizonVolWindow = 30

var (
	ErrGeneration   = errors.New("forecast generation failed")
	ErrEmptySeries  = errors.New("price series is empty")
	ErrInvalidPrice = errors.New("current price must be positive")
)

// ForecastInput is everything a run needs. All upstream fetching has already happened.
type ForecastInput struct {
	AssetID      string
	Series       []models.PricePoint
	CurrentPrice float64 // 0 uses the last series price
	MarketCap    float64
	Coin         models.CoinInfo
	AsOf         time.Time // zero uses the engine clock
}

// Engine runs forecasts. It holds no per-run state and is safe for concurrent use
// as long as its random sources are created per run.
type Engine struct {
	tuning      Tuning
	numericRand func() Rand
	narrator    func() narrative.Generator
	now         func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithTuning replaces the default engine constants
func WithTuning(t Tuning) Option {
	return func(e *Engine) { e.tuning = t }
}

// WithSeed makes every run reproducible. Numerics and narrative draw from
// separately seeded streams.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.numericRand = func() Rand { return NewRand(seed) }
		e.narrator = func() narrative.Generator { return narrative.NewTemplates(NewRand(seed + 1)) }
	}
}

// WithRand supplies the numeric random source for each run
func WithRand(fn func() Rand) Option {
	return func(e *Engine) { e.numericRand = fn }
}

// WithNarrator supplies the narrative generator for each run
func WithNarrator(fn func() narrative.Generator) Option {
	return func(e *Engine) { e.narrator = fn }
}

// WithoutNarrative leaves scenario and description fields empty
func WithoutNarrative() Option {
	return WithNarrator(func() narrative.Generator { return narrative.Disabled{} })
}

// WithClock overrides the as-of source used when an input carries no AsOf
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine. Without options runs are non-deterministic.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tuning:      DefaultTuning(),
		numericRand: clockRand,
		narrator:    func() narrative.Generator { return narrative.NewTemplates(clockRand()) },
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tuning returns the engine constants
func (e *Engine) Tuning() Tuning {
	return e.tuning
}

// GenerateForecast runs the full pipeline for one asset: indicators, the
// long-horizon table, headline horizons, the chart and the technical snapshot.
// Every date in the run derives from a single as-of instant.
func (e *Engine) GenerateForecast(ctx context.Context, in ForecastInput) (*models.ForecastBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(in.Series) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, ErrEmptySeries)
	}

	prices := make([]float64, len(in.Series))
	volumes := make([]float64, len(in.Series))
	for i, p := range in.Series {
		prices[i] = p.Price
		volumes[i] = p.Volume
	}

	current := in.CurrentPrice
	if current <= 0 {
		current = prices[len(prices)-1]
	}
	if current <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, ErrInvalidPrice)
	}

	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = e.now()
	}

	synth := NewSynthesizer(e.tuning, e.numericRand(), e.narrator())
	table := synth.Synthesize(SynthesisInput{
		CurrentPrice: current,
		Volatility:   indicators.Volatility(prices, longHorizonVolWindow),
		MarketCap:    in.MarketCap,
		CoinName:     in.Coin.Name,
		AsOf:         asOf,
		Years:        e.tuning.HorizonYears,
	})

	dispatcher := Dispatcher{
		Analysis:     Analyze(prices, volumes),
		Table:        table,
		CurrentPrice: current,
		AsOf:         asOf,
		Tuning:       e.tuning,
	}

	return &models.ForecastBundle{
		RunID:               uuid.NewString(),
		AssetID:             in.AssetID,
		Coin:                in.Coin,
		CurrentPrice:        current,
		Rank:                in.Coin.Rank,
		AsOf:                asOf,
		Predictions:         dispatcher.Horizons(),
		ChartData:           BuildChart(table, current, asOf, e.tuning.ChartPoints, e.tuning.ChartDays),
		YearlyPredictions:   table,
		TechnicalIndicators: Snapshot(prices, volumes),
	}, nil
}
