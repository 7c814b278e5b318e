package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	r.CacheLookups.WithLabelValues(CacheHit).Inc()
	r.CacheLookups.WithLabelValues(CacheHit).Inc()
	r.CacheLookups.WithLabelValues(CacheMiss).Inc()
	r.FetchFailures.WithLabelValues("market_cap").Inc()
	r.ObserveGeneration(time.Now(), nil)
	r.ObserveGeneration(time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.CacheLookups.WithLabelValues(CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CacheLookups.WithLabelValues(CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.FetchFailures.WithLabelValues("market_cap")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.GenerationDuration))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "forecast_cache_lookups_total")
	assert.Contains(t, string(body), `forecast_generation_duration_seconds_count{result="error"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
