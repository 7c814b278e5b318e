package upstream

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
}

func TestFetchSeries(t *testing.T) {
	t.Run("decodes points", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/coin/chart/bitcoin", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"timestamp":1700000000000,"price":100.5,"volume":2000},{"timestamp":1700086400000,"price":101,"volume":0}]`))
		})

		series, err := client.FetchSeries(context.Background(), "bitcoin")
		require.NoError(t, err)
		require.Len(t, series, 2)
		assert.Equal(t, 100.5, series[0].Price)
		assert.Equal(t, 2000.0, series[0].Volume)
		assert.Equal(t, time.UnixMilli(1700086400000).UTC(), series[1].Timestamp)
	})

	t.Run("newest-first input is returned ascending", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"timestamp":2000,"price":200,"volume":1},{"timestamp":1000,"price":100,"volume":1}]`))
		})

		series, err := client.FetchSeries(context.Background(), "bitcoin")
		require.NoError(t, err)
		require.Len(t, series, 2)
		assert.Equal(t, time.UnixMilli(1000).UTC(), series[0].Timestamp)
		assert.Equal(t, 200.0, series[1].Price)
		assert.Equal(t, time.UnixMilli(2000).UTC(), series[1].Timestamp)
	})

	t.Run("empty array is an error", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		})

		_, err := client.FetchSeries(context.Background(), "bitcoin")
		assert.ErrorIs(t, err, ErrEmptyResult)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.FetchSeries(context.Background(), "bitcoin")
		assert.ErrorIs(t, err, ErrStatus)
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not":"an array"}`))
		})

		_, err := client.FetchSeries(context.Background(), "bitcoin")
		assert.Error(t, err)
	})
}

func TestFetchMarketCap(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coin/price/bitcoin":
			w.Write([]byte(`{"price":65000,"market_cap":1.28e12}`))
		default:
			w.Write([]byte(`{"price":1}`))
		}
	})

	marketCap, err := client.FetchMarketCap(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 1.28e12, marketCap)

	_, err = client.FetchMarketCap(context.Background(), "dust")
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestFetchCoinInfo(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coin/id/ethereum":
			w.Write([]byte(`{"name":"Ethereum","ticker":"ETH","rank":2}`))
		default:
			w.Write([]byte(`{"name":"Partial"}`))
		}
	})

	info, err := client.FetchCoinInfo(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Equal(t, "Ethereum", info.Name)
	assert.Equal(t, "ETH", info.Ticker)
	assert.Equal(t, 2, info.Rank)

	info, err = client.FetchCoinInfo(context.Background(), "partial")
	require.NoError(t, err)
	assert.Equal(t, "Partial", info.Name)
	assert.Equal(t, "BTC", info.Ticker)
	assert.Equal(t, 1, info.Rank)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 3; i++ {
		_, err := client.FetchCoinInfo(context.Background(), "bitcoin")
		require.Error(t, err)
	}

	_, err := client.FetchCoinInfo(context.Background(), "bitcoin")
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	// other endpoints keep their own breaker
	_, err = client.FetchMarketCap(context.Background(), "bitcoin")
	assert.ErrorIs(t, err, ErrStatus)
}

func TestCancelledContext(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchSeries(ctx, "bitcoin")
	assert.Error(t, err)
}

func TestFallbackSeries(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := FallbackSeries(asOf)

	require.Len(t, series, 2)
	assert.Equal(t, asOf.AddDate(0, 0, -30), series[0].Timestamp)
	assert.Equal(t, 1000.0, series[0].Price)
	assert.Equal(t, 1100.0, series[1].Price)
	assert.Equal(t, 1100000.0, series[1].Volume)
	assert.Equal(t, "Bitcoin", DefaultCoinInfo().Name)
}

func TestValidateSeries(t *testing.T) {
	at := func(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

	tests := []struct {
		name    string
		series  []models.PricePoint
		wantErr error
	}{
		{"valid", []models.PricePoint{{Timestamp: at(1), Price: 1}, {Timestamp: at(2), Price: 2}}, nil},
		{"empty", nil, ErrEmptyResult},
		{"zero last price", []models.PricePoint{{Timestamp: at(1), Price: 0}, {Timestamp: at(2), Price: 0}}, ErrMalformed},
		{"negative last price", []models.PricePoint{{Timestamp: at(1), Price: 5}, {Timestamp: at(2), Price: -1}}, ErrMalformed},
		{"NaN last price", []models.PricePoint{{Timestamp: at(1), Price: math.NaN()}}, ErrMalformed},
		{"infinite last price", []models.PricePoint{{Timestamp: at(1), Price: math.Inf(1)}}, ErrMalformed},
		{"descending timestamps", []models.PricePoint{{Timestamp: at(2), Price: 1}, {Timestamp: at(1), Price: 2}}, ErrMalformed},
		{"duplicate timestamps", []models.PricePoint{{Timestamp: at(1), Price: 1}, {Timestamp: at(1), Price: 2}}, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeries(tt.series)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
