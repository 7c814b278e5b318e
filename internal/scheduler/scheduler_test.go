package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/price-forecast-service/internal/metrics"
	"github.com/trogers1052/price-forecast-service/internal/models"
)

type fakeRefresher struct {
	mu      sync.Mutex
	calls   []string
	refresh []bool
	fail    map[string]bool
}

func (f *fakeRefresher) GetForecast(ctx context.Context, id string, refresh bool) (*models.ForecastBundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	f.refresh = append(f.refresh, refresh)
	if f.fail[id] {
		return nil, errors.New("generation failed")
	}
	return &models.ForecastBundle{AssetID: id}, nil
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePruner struct {
	mu               sync.Mutex
	cutoffs          []time.Time
	indicatorCutoffs []time.Time
}

func (p *fakePruner) DeleteIndicatorsOlderThan(date time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indicatorCutoffs = append(p.indicatorCutoffs, date)
	return 5, nil
}

func (p *fakePruner) DeletePriceDataOlderThan(date time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, date)
	return 3, nil
}

func TestWarmer_RunOnce(t *testing.T) {
	svc := &fakeRefresher{fail: map[string]bool{"ethereum": true}}
	m := metrics.NewRegistry()
	w := NewWarmer(svc, []string{"bitcoin", "ethereum", "solana"}, time.Second, m)

	warmed, failed := w.RunOnce(context.Background())

	assert.Equal(t, 2, warmed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"bitcoin", "ethereum", "solana"}, svc.calls)
	assert.Equal(t, []bool{true, true, true}, svc.refresh)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WarmRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WarmRuns.WithLabelValues("error")))
}

type fakeWatchlist struct {
	ids []string
	err error
}

func (f fakeWatchlist) GetWatchedAssetIDs() ([]string, error) {
	return f.ids, f.err
}

func TestWarmer_Watchlist(t *testing.T) {
	t.Run("merges without duplicates", func(t *testing.T) {
		svc := &fakeRefresher{}
		w := NewWarmer(svc, []string{"bitcoin", "ethereum"}, 0, nil)
		w.SetWatchlist(fakeWatchlist{ids: []string{"solana", "bitcoin", "cardano"}})

		warmed, failed := w.RunOnce(context.Background())
		assert.Equal(t, 4, warmed)
		assert.Zero(t, failed)
		assert.Equal(t, []string{"bitcoin", "ethereum", "solana", "cardano"}, svc.calls)
	})

	t.Run("failing watchlist keeps configured assets", func(t *testing.T) {
		svc := &fakeRefresher{}
		w := NewWarmer(svc, []string{"bitcoin"}, 0, nil)
		w.SetWatchlist(fakeWatchlist{err: errors.New("db down")})

		warmed, _ := w.RunOnce(context.Background())
		assert.Equal(t, 1, warmed)
		assert.Equal(t, []string{"bitcoin"}, svc.calls)
	})
}

func TestWarmer_RunOnceStopsOnCancel(t *testing.T) {
	svc := &fakeRefresher{}
	w := NewWarmer(svc, []string{"a", "b"}, 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	warmed, failed := w.RunOnce(ctx)
	assert.Zero(t, warmed)
	assert.Zero(t, failed)
	assert.Empty(t, svc.calls)
}

func TestWarmer_Register(t *testing.T) {
	w := NewWarmer(&fakeRefresher{}, nil, 0, nil)
	assert.Error(t, w.Register("not a cron spec"))
	assert.NoError(t, w.Register("0 */15 * * * *"))
	assert.Error(t, w.RegisterRetention("bad", &fakePruner{}, 30))
}

func TestWarmer_ScheduledJobsRun(t *testing.T) {
	svc := &fakeRefresher{}
	pruner := &fakePruner{}
	w := NewWarmer(svc, []string{"bitcoin"}, time.Second, nil)
	require.NoError(t, w.Register("* * * * * *"))
	require.NoError(t, w.RegisterRetention("* * * * * *", pruner, 400))

	w.Start()
	require.Eventually(t, func() bool { return svc.callCount() > 0 }, 3*time.Second, 50*time.Millisecond)
	w.Stop()

	pruner.mu.Lock()
	defer pruner.mu.Unlock()
	require.NotEmpty(t, pruner.cutoffs)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -400), pruner.cutoffs[0], 5*time.Second)
	require.NotEmpty(t, pruner.indicatorCutoffs)
	assert.Equal(t, pruner.cutoffs[0], pruner.indicatorCutoffs[0])
}
