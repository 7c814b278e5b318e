// Package scheduler runs periodic jobs: cache warming for a watchlist and
// pruning of old price history.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/trogers1052/price-forecast-service/internal/metrics"
	"github.com/trogers1052/price-forecast-service/internal/models"
)

// Refresher regenerates and caches the forecast of one asset
type Refresher interface {
	GetForecast(ctx context.Context, id string, refresh bool) (*models.ForecastBundle, error)
}

// Watchlist lists assets to warm in addition to the configured ones
type Watchlist interface {
	GetWatchedAssetIDs() ([]string, error)
}

// Pruner deletes price history older than a cutoff
type Pruner interface {
	DeletePriceDataOlderThan(date time.Time) (int64, error)
}

// IndicatorPruner is optionally implemented by a Pruner that also stores indicator readings
type IndicatorPruner interface {
	DeleteIndicatorsOlderThan(date time.Time) (int64, error)
}

// Warmer regenerates the forecasts of configured and watched assets on a cron schedule so
// requests for them are served from cache
type Warmer struct {
	cron      *cron.Cron
	svc       Refresher
	assets    []string
	watchlist Watchlist
	timeout   time.Duration
	metrics   *metrics.Registry
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewWarmer creates a warmer for assets. Each asset gets at most timeout per run.
func NewWarmer(svc Refresher, assets []string, timeout time.Duration, m *metrics.Registry) *Warmer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Warmer{
		cron:    cron.New(cron.WithSeconds()),
		svc:     svc,
		assets:  assets,
		timeout: timeout,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetWatchlist adds a dynamic asset source, read on every run
func (w *Warmer) SetWatchlist(wl Watchlist) {
	w.watchlist = wl
}

// Register schedules the warm job with a six-field cron spec
func (w *Warmer) Register(spec string) error {
	if _, err := w.cron.AddFunc(spec, func() { w.RunOnce(w.ctx) }); err != nil {
		return fmt.Errorf("failed to register warm job: %w", err)
	}
	return nil
}

// RegisterRetention schedules deletion of closes older than keepDays
func (w *Warmer) RegisterRetention(spec string, pruner Pruner, keepDays int) error {
	_, err := w.cron.AddFunc(spec, func() {
		cutoff := time.Now().AddDate(0, 0, -keepDays)
		deleted, err := pruner.DeletePriceDataOlderThan(cutoff)
		if err != nil {
			logrus.WithError(err).Error("Price retention failed")
			return
		}
		logrus.WithFields(logrus.Fields{"deleted": deleted, "cutoff": cutoff.Format("2006-01-02")}).Info("Pruned price history")

		if ip, ok := pruner.(IndicatorPruner); ok {
			deleted, err := ip.DeleteIndicatorsOlderThan(cutoff)
			if err != nil {
				logrus.WithError(err).Error("Indicator retention failed")
				return
			}
			logrus.WithField("deleted", deleted).Info("Pruned technical indicators")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register retention job: %w", err)
	}
	return nil
}

// RunOnce refreshes every asset sequentially and reports how many succeeded
func (w *Warmer) RunOnce(ctx context.Context) (warmed, failed int) {
	for _, id := range w.targets() {
		if ctx.Err() != nil {
			break
		}
		if err := w.refresh(ctx, id); err != nil {
			logrus.WithError(err).WithField("asset_id", id).Warn("Cache warm failed")
			w.count("error")
			failed++
			continue
		}
		w.count("success")
		warmed++
	}

	logrus.WithFields(logrus.Fields{"warmed": warmed, "failed": failed}).Info("Cache warm finished")
	return warmed, failed
}

// targets returns the configured assets followed by watchlist assets, without duplicates.
// A failing watchlist only leaves the configured assets.
func (w *Warmer) targets() []string {
	ids := append([]string(nil), w.assets...)
	if w.watchlist == nil {
		return ids
	}

	watched, err := w.watchlist.GetWatchedAssetIDs()
	if err != nil {
		logrus.WithError(err).Warn("Failed to read watchlist")
		return ids
	}
	seen := make(map[string]bool, len(ids)+len(watched))
	for _, id := range ids {
		seen[id] = true
	}
	for _, id := range watched {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func (w *Warmer) refresh(ctx context.Context, id string) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	_, err := w.svc.GetForecast(ctx, id, true)
	return err
}

func (w *Warmer) count(result string) {
	if w.metrics != nil {
		w.metrics.WarmRuns.WithLabelValues(result).Inc()
	}
}

// Start starts the cron scheduler
func (w *Warmer) Start() {
	w.cron.Start()
	logrus.WithField("assets", len(w.assets)).Info("Scheduler started")
}

// Stop cancels running jobs and waits for them to return
func (w *Warmer) Stop() {
	w.cancel()
	<-w.cron.Stop().Done()
	logrus.Info("Scheduler stopped")
}
