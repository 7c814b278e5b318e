package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/price-forecast-service/internal/forecast"
	"github.com/trogers1052/price-forecast-service/internal/metrics"
	"github.com/trogers1052/price-forecast-service/internal/models"
)

var testAsOf = time.Date(2026, time.February, 2, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	series      []models.PricePoint
	seriesErr   error
	marketCap   float64
	capErr      error
	info        models.CoinInfo
	infoErr     error
	seriesCalls int32
	release     chan struct{}
}

func (f *fakeSource) FetchSeries(ctx context.Context, id string) ([]models.PricePoint, error) {
	atomic.AddInt32(&f.seriesCalls, 1)
	if f.release != nil {
		<-f.release
	}
	return f.series, f.seriesErr
}

func (f *fakeSource) FetchMarketCap(ctx context.Context, id string) (float64, error) {
	return f.marketCap, f.capErr
}

func (f *fakeSource) FetchCoinInfo(ctx context.Context, id string) (models.CoinInfo, error) {
	return f.info, f.infoErr
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*models.ForecastBundle
	getErr  error
	gets    int32
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*models.ForecastBundle{}}
}

func (c *fakeCache) Get(ctx context.Context, id string) (*models.ForecastBundle, bool, error) {
	atomic.AddInt32(&c.gets, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	b, ok := c.entries[id]
	return b, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, b *models.ForecastBundle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[b.AssetID] = b
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*models.ForecastBundle
	err    error
}

func (p *fakePublisher) PublishForecastGenerated(ctx context.Context, b *models.ForecastBundle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, b)
	return p.err
}

type fakeRecorder struct {
	runs       []*models.ForecastRun
	indicators []*models.TechnicalIndicator
}

func (r *fakeRecorder) CreateTechnicalIndicatorBatch(ctx context.Context, indicators []*models.TechnicalIndicator) error {
	r.indicators = append(r.indicators, indicators...)
	return nil
}

func (r *fakeRecorder) CreateForecastRun(ctx context.Context, run *models.ForecastRun) error {
	r.runs = append(r.runs, run)
	return nil
}

func testSeries(n int) []models.PricePoint {
	series := make([]models.PricePoint, n)
	for i := range series {
		series[i] = models.PricePoint{
			Timestamp: testAsOf.AddDate(0, 0, i-n+1),
			Price:     200 + 20*math.Sin(float64(i)/5) + float64(i)/2,
			Volume:    5e6,
		}
	}
	return series
}

type harness struct {
	svc       *ForecastService
	source    *fakeSource
	cache     *fakeCache
	publisher *fakePublisher
	recorder  *fakeRecorder
	metrics   *metrics.Registry
}

func newHarness(source *fakeSource) *harness {
	h := &harness{
		source:    source,
		cache:     newFakeCache(),
		publisher: &fakePublisher{},
		recorder:  &fakeRecorder{},
		metrics:   metrics.NewRegistry(),
	}
	h.svc = NewForecastService(Deps{
		Series:     source,
		Metadata:   source,
		Engine:     forecast.NewEngine(forecast.WithSeed(3)),
		Cache:      h.cache,
		Publisher:  h.publisher,
		Recorder:   h.recorder,
		Indicators: h.recorder,
		Metrics:    h.metrics,
		Now:        func() time.Time { return testAsOf },
	})
	return h
}

func healthySource() *fakeSource {
	return &fakeSource{
		series:    testSeries(120),
		marketCap: 2.5e10,
		info:      models.CoinInfo{Name: "Solana", Ticker: "SOL", Rank: 5},
	}
}

func TestGetForecast_GeneratesOnMiss(t *testing.T) {
	h := newHarness(healthySource())

	bundle, err := h.svc.GetForecast(context.Background(), "solana", false)
	require.NoError(t, err)

	assert.Equal(t, "solana", bundle.AssetID)
	assert.Equal(t, "Solana", bundle.Coin.Name)
	assert.Equal(t, 5, bundle.Rank)
	assert.Equal(t, testAsOf, bundle.AsOf)
	assert.Equal(t, h.source.series[119].Price, bundle.CurrentPrice)

	assert.Same(t, bundle, h.cache.entries["solana"])
	require.Len(t, h.publisher.events, 1)
	require.Len(t, h.recorder.runs, 1)
	assert.Equal(t, bundle.RunID, h.recorder.runs[0].RunID)
	assert.Equal(t, 2.5e10, h.recorder.runs[0].MarketCap)
	require.Len(t, h.recorder.indicators, 5)
	assert.Equal(t, models.IndicatorSMA50, h.recorder.indicators[0].IndicatorType)
	assert.Equal(t, "solana", h.recorder.indicators[0].AssetID)

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CacheLookups.WithLabelValues(metrics.CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.EventsPublished.WithLabelValues("success")))
}

func TestGetForecast_CacheHit(t *testing.T) {
	h := newHarness(healthySource())
	cached := &models.ForecastBundle{AssetID: "solana", RunID: "cached"}
	h.cache.entries["solana"] = cached

	bundle, err := h.svc.GetForecast(context.Background(), "solana", false)
	require.NoError(t, err)

	assert.Same(t, cached, bundle)
	assert.Zero(t, atomic.LoadInt32(&h.source.seriesCalls))
	assert.Empty(t, h.publisher.events)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CacheLookups.WithLabelValues(metrics.CacheHit)))
}

func TestGetForecast_RefreshBypassesCache(t *testing.T) {
	h := newHarness(healthySource())
	h.cache.entries["solana"] = &models.ForecastBundle{AssetID: "solana", RunID: "stale"}

	bundle, err := h.svc.GetForecast(context.Background(), "solana", true)
	require.NoError(t, err)

	assert.NotEqual(t, "stale", bundle.RunID)
	assert.Zero(t, atomic.LoadInt32(&h.cache.gets))
	assert.Equal(t, bundle.RunID, h.cache.entries["solana"].RunID)
}

func TestGetForecast_FailedFetchesUseDefaults(t *testing.T) {
	boom := errors.New("upstream down")
	h := newHarness(&fakeSource{seriesErr: boom, capErr: boom, infoErr: boom})

	bundle, err := h.svc.GetForecast(context.Background(), "mystery", false)
	require.NoError(t, err)

	assert.Equal(t, models.CoinInfo{Name: "Bitcoin", Ticker: "BTC", Rank: 1}, bundle.Coin)
	assert.Equal(t, 1100.0, bundle.CurrentPrice)
	assert.Equal(t, 1e9, h.recorder.runs[0].MarketCap)

	for _, source := range []string{"series", "market_cap", "coin_info"} {
		assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.FetchFailures.WithLabelValues(source)), source)
	}
}

func TestGetForecast_EmptySeriesUsesFallback(t *testing.T) {
	source := healthySource()
	source.series = nil
	h := newHarness(source)

	bundle, err := h.svc.GetForecast(context.Background(), "solana", false)
	require.NoError(t, err)
	assert.Equal(t, 1100.0, bundle.CurrentPrice)
}

func TestGetForecast_CacheErrorIsMiss(t *testing.T) {
	h := newHarness(healthySource())
	h.cache.getErr = errors.New("redis timeout")

	bundle, err := h.svc.GetForecast(context.Background(), "solana", false)
	require.NoError(t, err)
	assert.NotNil(t, bundle)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.CacheLookups.WithLabelValues(metrics.CacheError)))
}

func TestGetForecast_PublishFailureIsLogged(t *testing.T) {
	h := newHarness(healthySource())
	h.publisher.err = errors.New("broker gone")

	_, err := h.svc.GetForecast(context.Background(), "solana", false)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.EventsPublished.WithLabelValues("error")))
}

type failingEngine struct{}

func (failingEngine) GenerateForecast(ctx context.Context, in forecast.ForecastInput) (*models.ForecastBundle, error) {
	return nil, fmt.Errorf("%w: synthesis blew up", forecast.ErrGeneration)
}

func TestGetForecast_GenerationError(t *testing.T) {
	h := newHarness(healthySource())
	h.svc = NewForecastService(Deps{
		Series:    h.source,
		Metadata:  h.source,
		Engine:    failingEngine{},
		Cache:     h.cache,
		Publisher: h.publisher,
		Recorder:  h.recorder,
		Metrics:   h.metrics,
		Now:       func() time.Time { return testAsOf },
	})

	_, err := h.svc.GetForecast(context.Background(), "solana", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, forecast.ErrGeneration)
	assert.Empty(t, h.cache.entries)
	assert.Empty(t, h.publisher.events)
	assert.Empty(t, h.recorder.runs)
}

func TestGetForecast_MalformedSeriesUsesFallback(t *testing.T) {
	tests := []struct {
		name   string
		series []models.PricePoint
	}{
		{"zero prices", []models.PricePoint{
			{Timestamp: testAsOf.AddDate(0, 0, -1)},
			{Timestamp: testAsOf},
		}},
		{"negative last price", []models.PricePoint{
			{Timestamp: testAsOf.AddDate(0, 0, -1), Price: 5},
			{Timestamp: testAsOf, Price: -1},
		}},
		{"non-finite last price", []models.PricePoint{
			{Timestamp: testAsOf.AddDate(0, 0, -1), Price: 5},
			{Timestamp: testAsOf, Price: math.Inf(1)},
		}},
		{"descending timestamps", []models.PricePoint{
			{Timestamp: testAsOf, Price: 300},
			{Timestamp: testAsOf.AddDate(0, 0, -1), Price: 200},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := healthySource()
			source.series = tt.series
			h := newHarness(source)

			bundle, err := h.svc.GetForecast(context.Background(), "solana", false)
			require.NoError(t, err)
			assert.Equal(t, 1100.0, bundle.CurrentPrice)
			assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.FetchFailures.WithLabelValues("series")))
		})
	}
}

func TestGetForecast_EmptyID(t *testing.T) {
	h := newHarness(healthySource())
	_, err := h.svc.GetForecast(context.Background(), "", false)
	assert.ErrorIs(t, err, ErrInvalidAsset)
}

func TestGetForecast_ConcurrentCallsShareGeneration(t *testing.T) {
	source := healthySource()
	source.release = make(chan struct{})
	h := newHarness(source)

	const callers = 5
	results := make([]*models.ForecastBundle, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := h.svc.GetForecast(context.Background(), "solana", false)
			assert.NoError(t, err)
			results[i] = b
		}(i)
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&h.cache.gets) == callers && atomic.LoadInt32(&source.seriesCalls) == 1
	}, time.Second, 5*time.Millisecond)
	// let the remaining callers join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(source.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&source.seriesCalls))
	for _, b := range results {
		assert.Same(t, results[0], b)
	}
	assert.Len(t, h.publisher.events, 1)
}

type fakeStore struct {
	series    []models.PricePoint
	marketCap float64
	limit     int
}

func (s *fakeStore) GetPriceSeries(ctx context.Context, id string, limit int) ([]models.PricePoint, error) {
	s.limit = limit
	return s.series, nil
}

func (s *fakeStore) GetLatestMarketCap(ctx context.Context, id string) (float64, error) {
	if s.marketCap == 0 {
		return 0, errors.New("none")
	}
	return s.marketCap, nil
}

func TestStoreHistory(t *testing.T) {
	store := &fakeStore{series: testSeries(3)}
	history := NewStoreHistory(store, 365)

	series, err := history.FetchSeries(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Len(t, series, 3)
	assert.Equal(t, 365, store.limit)

	_, err = NewStoreHistory(&fakeStore{}, 30).FetchSeries(context.Background(), "bitcoin")
	assert.Error(t, err)
}

func TestStoreMetadata(t *testing.T) {
	fallback := &fakeSource{marketCap: 42, info: models.CoinInfo{Name: "Fallback"}}

	stored := NewStoreMetadata(&fakeStore{marketCap: 7e9}, fallback)
	marketCap, err := stored.FetchMarketCap(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 7e9, marketCap)

	missing := NewStoreMetadata(&fakeStore{}, fallback)
	marketCap, err = missing.FetchMarketCap(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 42.0, marketCap)

	info, err := missing.FetchCoinInfo(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Fallback", info.Name)
}
