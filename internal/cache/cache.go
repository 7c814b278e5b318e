// Package cache stores generated forecasts in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

// KeyPrefix prefixes every cached forecast key
const KeyPrefix = "coin_prediction_"

// DefaultTTL is how long a forecast stays cached
const DefaultTTL = 24 * time.Hour

// ForecastCache keeps one JSON-encoded bundle per asset
type ForecastCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// Config configures the Redis connection
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New connects to Redis and verifies the connection
func New(ctx context.Context, cfg Config) (*ForecastCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewWithClient(rdb, cfg.TTL), nil
}

// NewWithClient wraps an existing client
func NewWithClient(rdb redis.UniversalClient, ttl time.Duration) *ForecastCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ForecastCache{rdb: rdb, ttl: ttl}
}

// Key returns the cache key of assetID
func Key(assetID string) string {
	return KeyPrefix + assetID
}

// Get returns the cached bundle of assetID. ok is false on a miss.
func (c *ForecastCache) Get(ctx context.Context, assetID string) (*models.ForecastBundle, bool, error) {
	data, err := c.rdb.Get(ctx, Key(assetID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached forecast: %w", err)
	}

	var bundle models.ForecastBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached forecast: %w", err)
	}
	return &bundle, true, nil
}

// Set stores bundle under its asset id for the configured TTL
func (c *ForecastCache) Set(ctx context.Context, bundle *models.ForecastBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to encode forecast: %w", err)
	}
	if err := c.rdb.Set(ctx, Key(bundle.AssetID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache forecast: %w", err)
	}
	return nil
}

// Delete drops the cached bundle of assetID
func (c *ForecastCache) Delete(ctx context.Context, assetID string) error {
	if err := c.rdb.Del(ctx, Key(assetID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate forecast: %w", err)
	}
	return nil
}

// Ping checks the connection
func (c *ForecastCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection
func (c *ForecastCache) Close() error {
	return c.rdb.Close()
}
