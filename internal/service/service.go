// Package service produces forecasts on demand: it gathers inputs, runs the
// engine, caches the bundle and announces it.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/trogers1052/price-forecast-service/internal/forecast"
	"github.com/trogers1052/price-forecast-service/internal/metrics"
	"github.com/trogers1052/price-forecast-service/internal/models"
	"github.com/trogers1052/price-forecast-service/internal/upstream"
)

// ErrInvalidAsset is returned for an empty asset id
var ErrInvalidAsset = errors.New("asset id is required")

// SeriesSource supplies price history
type SeriesSource interface {
	FetchSeries(ctx context.Context, id string) ([]models.PricePoint, error)
}

// MetadataSource supplies market cap and coin metadata
type MetadataSource interface {
	FetchMarketCap(ctx context.Context, id string) (float64, error)
	FetchCoinInfo(ctx context.Context, id string) (models.CoinInfo, error)
}

// Generator runs one forecast
type Generator interface {
	GenerateForecast(ctx context.Context, in forecast.ForecastInput) (*models.ForecastBundle, error)
}

// Cache stores bundles by asset id
type Cache interface {
	Get(ctx context.Context, assetID string) (*models.ForecastBundle, bool, error)
	Set(ctx context.Context, bundle *models.ForecastBundle) error
}

// Publisher announces generated forecasts
type Publisher interface {
	PublishForecastGenerated(ctx context.Context, bundle *models.ForecastBundle) error
}

// RunRecorder persists forecast run summaries
type RunRecorder interface {
	CreateForecastRun(ctx context.Context, run *models.ForecastRun) error
}

// IndicatorRecorder persists the indicator readings of a run
type IndicatorRecorder interface {
	CreateTechnicalIndicatorBatch(ctx context.Context, indicators []*models.TechnicalIndicator) error
}

// Deps are the collaborators of a ForecastService. Everything but Series,
// Metadata and Engine is optional.
type Deps struct {
	Series     SeriesSource
	Metadata   MetadataSource
	Engine     Generator
	Cache      Cache
	Publisher  Publisher
	Recorder   RunRecorder
	Indicators IndicatorRecorder
	Metrics    *metrics.Registry
	Now        func() time.Time
}

// ForecastService serves cached forecasts and generates missing ones,
// at most once concurrently per asset
type ForecastService struct {
	deps  Deps
	group singleflight.Group
}

// NewForecastService creates a service from deps
func NewForecastService(deps Deps) *ForecastService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &ForecastService{deps: deps}
}

// GetForecast returns the cached bundle of id unless refresh is set, otherwise
// generates, caches and publishes a new one
func (s *ForecastService) GetForecast(ctx context.Context, id string, refresh bool) (*models.ForecastBundle, error) {
	if id == "" {
		return nil, ErrInvalidAsset
	}
	log := logrus.WithField("asset_id", id)

	if !refresh && s.deps.Cache != nil {
		bundle, ok, err := s.deps.Cache.Get(ctx, id)
		switch {
		case err != nil:
			// unreadable entries are regenerated
			log.WithError(err).Warn("Forecast cache read failed")
			s.countCache(metrics.CacheError)
		case ok:
			s.countCache(metrics.CacheHit)
			return bundle, nil
		default:
			log.Debug("Forecast cache miss")
			s.countCache(metrics.CacheMiss)
		}
	}

	v, err, shared := s.group.Do(id, func() (interface{}, error) {
		return s.generate(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug("Joined in-flight forecast generation")
	}
	return v.(*models.ForecastBundle), nil
}

func (s *ForecastService) generate(ctx context.Context, id string) (bundle *models.ForecastBundle, err error) {
	start := time.Now()
	if s.deps.Metrics != nil {
		defer func() { s.deps.Metrics.ObserveGeneration(start, err) }()
	}

	in := s.gatherInputs(ctx, id)
	bundle, err = s.deps.Engine.GenerateForecast(ctx, in)
	if err != nil {
		logrus.WithError(err).WithField("asset_id", id).Error("Forecast generation failed")
		return nil, fmt.Errorf("failed to generate forecast for %s: %w", id, err)
	}

	s.store(ctx, bundle, in.MarketCap)
	return bundle, nil
}

// gatherInputs fetches history, market cap and coin metadata concurrently.
// Each failed fetch is replaced by its default and never aborts the run.
func (s *ForecastService) gatherInputs(ctx context.Context, id string) forecast.ForecastInput {
	asOf := s.deps.Now()
	in := forecast.ForecastInput{
		AssetID:   id,
		AsOf:      asOf,
		MarketCap: upstream.DefaultMarketCap,
		Coin:      upstream.DefaultCoinInfo(),
	}

	var g errgroup.Group
	g.Go(func() error {
		series, err := s.deps.Series.FetchSeries(ctx, id)
		if err == nil {
			// empty or malformed history is replaced like a failed fetch
			err = upstream.ValidateSeries(series)
		}
		if err != nil {
			s.fetchFailed(id, "series", err)
			series = upstream.FallbackSeries(asOf)
		}
		in.Series = series
		return nil
	})
	g.Go(func() error {
		marketCap, err := s.deps.Metadata.FetchMarketCap(ctx, id)
		if err != nil {
			s.fetchFailed(id, "market_cap", err)
			return nil
		}
		in.MarketCap = marketCap
		return nil
	})
	g.Go(func() error {
		info, err := s.deps.Metadata.FetchCoinInfo(ctx, id)
		if err != nil {
			s.fetchFailed(id, "coin_info", err)
			return nil
		}
		in.Coin = info
		return nil
	})
	_ = g.Wait()

	return in
}

// store caches, records and publishes bundle. Failures are logged only.
func (s *ForecastService) store(ctx context.Context, bundle *models.ForecastBundle, marketCap float64) {
	log := logrus.WithFields(logrus.Fields{"asset_id": bundle.AssetID, "run_id": bundle.RunID})

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Set(ctx, bundle); err != nil {
			log.WithError(err).Warn("Failed to cache forecast")
		}
	}
	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.CreateForecastRun(ctx, models.NewForecastRun(bundle, marketCap)); err != nil {
			log.WithError(err).Warn("Failed to record forecast run")
		}
	}
	if s.deps.Indicators != nil {
		if err := s.deps.Indicators.CreateTechnicalIndicatorBatch(ctx, models.IndicatorsFromSnapshot(bundle)); err != nil {
			log.WithError(err).Warn("Failed to record technical indicators")
		}
	}
	if s.deps.Publisher != nil {
		status := "success"
		if err := s.deps.Publisher.PublishForecastGenerated(ctx, bundle); err != nil {
			log.WithError(err).Warn("Failed to publish forecast event")
			status = "error"
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.EventsPublished.WithLabelValues(status).Inc()
		}
	}
	log.Info("Forecast generated")
}

func (s *ForecastService) fetchFailed(id, source string, err error) {
	logrus.WithError(err).WithFields(logrus.Fields{
		"asset_id": id,
		"source":   source,
	}).Warn("Upstream fetch failed, using default")
	if s.deps.Metrics != nil {
		s.deps.Metrics.FetchFailures.WithLabelValues(source).Inc()
	}
}

func (s *ForecastService) countCache(result string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
