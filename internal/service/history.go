package service

import (
	"context"
	"fmt"

	"github.com/trogers1052/price-forecast-service/internal/models"
)

// PriceStore reads stored daily closes
type PriceStore interface {
	GetPriceSeries(ctx context.Context, assetID string, limit int) ([]models.PricePoint, error)
	GetLatestMarketCap(ctx context.Context, assetID string) (float64, error)
}

// StoreHistory serves price history from the database instead of the upstream API
type StoreHistory struct {
	store PriceStore
	days  int
}

// NewStoreHistory reads up to days closes per asset from store
func NewStoreHistory(store PriceStore, days int) *StoreHistory {
	return &StoreHistory{store: store, days: days}
}

// FetchSeries returns the stored closes of id in ascending date order
func (h *StoreHistory) FetchSeries(ctx context.Context, id string) ([]models.PricePoint, error) {
	series, err := h.store.GetPriceSeries(ctx, id, h.days)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no stored prices for %s", id)
	}
	return series, nil
}

// StoreMetadata prefers the stored market cap and falls back to another source
type StoreMetadata struct {
	store    PriceStore
	fallback MetadataSource
}

// NewStoreMetadata serves market caps from store, coin info and missing caps from fallback
func NewStoreMetadata(store PriceStore, fallback MetadataSource) *StoreMetadata {
	return &StoreMetadata{store: store, fallback: fallback}
}

// FetchMarketCap returns the latest stored cap of id or asks the fallback source
func (m *StoreMetadata) FetchMarketCap(ctx context.Context, id string) (float64, error) {
	if marketCap, err := m.store.GetLatestMarketCap(ctx, id); err == nil && marketCap > 0 {
		return marketCap, nil
	}
	return m.fallback.FetchMarketCap(ctx, id)
}

// FetchCoinInfo delegates to the fallback source
func (m *StoreMetadata) FetchCoinInfo(ctx context.Context, id string) (models.CoinInfo, error) {
	return m.fallback.FetchCoinInfo(ctx, id)
}
