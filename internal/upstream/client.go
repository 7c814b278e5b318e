// Package upstream fetches price history and coin metadata from the market data API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

const (
	endpointChart = "chart"
	endpointPrice = "price"
	endpointCoin  = "coin"

	maxBodyBytes = 16 << 20
)

var (
	ErrStatus      = errors.New("unexpected upstream status")
	ErrEmptyResult = errors.New("upstream returned no data")
	ErrMalformed   = errors.New("upstream returned malformed data")
)

// Config configures a Client
type Config struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// Client talks to the market data API. Every endpoint has its own circuit
// breaker and all requests share one rate limiter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breakers   map[string]*gobreaker.CircuitBreaker
}

// NewClient creates a client for cfg
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		breakers: map[string]*gobreaker.CircuitBreaker{
			endpointChart: newBreaker("upstream-" + endpointChart),
			endpointPrice: newBreaker("upstream-" + endpointPrice),
			endpointCoin:  newBreaker("upstream-" + endpointCoin),
		},
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

type chartPoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

type priceResponse struct {
	MarketCap float64 `json:"market_cap"`
}

type coinResponse struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
	Rank   int    `json:"rank"`
}

// FetchSeries returns the historical chart of id ordered by timestamp
func (c *Client) FetchSeries(ctx context.Context, id string) ([]models.PricePoint, error) {
	var points []chartPoint
	if err := c.get(ctx, endpointChart, "/coin/chart/"+url.PathEscape(id), &points); err != nil {
		return nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("failed to fetch chart data: %w", ErrEmptyResult)
	}

	series := make([]models.PricePoint, len(points))
	for i, p := range points {
		series[i] = models.PricePoint{
			Timestamp: time.UnixMilli(p.Timestamp).UTC(),
			Price:     p.Price,
			Volume:    p.Volume,
		}
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})
	return series, nil
}

// FetchMarketCap returns the market capitalisation of id. A zero cap counts as missing.
func (c *Client) FetchMarketCap(ctx context.Context, id string) (float64, error) {
	var resp priceResponse
	if err := c.get(ctx, endpointPrice, "/coin/price/"+url.PathEscape(id), &resp); err != nil {
		return 0, fmt.Errorf("failed to fetch market cap: %w", err)
	}
	if resp.MarketCap <= 0 {
		return 0, fmt.Errorf("failed to fetch market cap: %w", ErrEmptyResult)
	}
	return resp.MarketCap, nil
}

// FetchCoinInfo returns name, ticker and rank of id. Missing fields take the defaults.
func (c *Client) FetchCoinInfo(ctx context.Context, id string) (models.CoinInfo, error) {
	var resp coinResponse
	if err := c.get(ctx, endpointCoin, "/coin/id/"+url.PathEscape(id), &resp); err != nil {
		return models.CoinInfo{}, fmt.Errorf("failed to fetch coin info: %w", err)
	}

	info := DefaultCoinInfo()
	if resp.Name != "" {
		info.Name = resp.Name
	}
	if resp.Ticker != "" {
		info.Ticker = resp.Ticker
	}
	if resp.Rank > 0 {
		info.Rank = resp.Rank
	}
	return info, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := c.breakers[endpoint].Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return nil, nil
	})
	return err
}
