package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

func setupRedis(t *testing.T) (*ForecastCache, *redis.Client) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	c, err := New(ctx, Config{Addr: endpoint, TTL: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	raw := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { raw.Close() })
	return c, raw
}

func TestKey(t *testing.T) {
	assert.Equal(t, "coin_prediction_bitcoin", Key("bitcoin"))
}

func TestForecastCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	c, raw := setupRedis(t)
	ctx := context.Background()

	bundle := &models.ForecastBundle{
		RunID:        "run-1",
		AssetID:      "bitcoin",
		Coin:         models.CoinInfo{Name: "Bitcoin", Ticker: "BTC", Rank: 1},
		CurrentPrice: 65000,
		Rank:         1,
		AsOf:         time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		ChartData:    []models.ChartPoint{{Time: 1, Price: 65000}},
		YearlyPredictions: models.YearlyPredictions{
			2026: {{Month: "January", Year: 2026, Price: 66000, MinPrice: 65000, MaxPrice: 67000, Confidence: 90}},
		},
	}

	t.Run("miss", func(t *testing.T) {
		got, ok, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, bundle))

		got, ok, err := c.Get(ctx, "bitcoin")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, bundle.RunID, got.RunID)
		assert.Equal(t, 66000.0, got.YearlyPredictions[2026][0].Price)
		assert.True(t, bundle.AsOf.Equal(got.AsOf))

		ttl, err := raw.TTL(ctx, "coin_prediction_bitcoin").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, bundle))
		require.NoError(t, c.Delete(ctx, "bitcoin"))

		_, ok, err := c.Get(ctx, "bitcoin")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupt entry is an error", func(t *testing.T) {
		require.NoError(t, raw.Set(ctx, Key("broken"), "not json", 0).Err())

		_, ok, err := c.Get(ctx, "broken")
		assert.Error(t, err)
		assert.False(t, ok)
	})
}
