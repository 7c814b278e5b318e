package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/trogers1052/price-forecast-service/internal/models"
)

// readRetryDelay is the pause after a failed read before the next attempt
const readRetryDelay = 2 * time.Second

// PriceRepository stores consumed daily closes
type PriceRepository interface {
	CreatePriceData(p *models.PriceDataDaily) error
}

// ForecastInvalidator drops cached forecasts made stale by new prices
type ForecastInvalidator interface {
	Delete(ctx context.Context, assetID string) error
}

// messageReader is the part of kafka.Reader the consumer uses
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer ingests PRICE_RECORDED events into the history store and
// invalidates the cached forecast of each updated asset
type Consumer struct {
	reader      messageReader
	topic       string
	retryDelay  time.Duration
	repo        PriceRepository
	invalidator ForecastInvalidator
}

// NewConsumer creates a new Kafka consumer for price events
func NewConsumer(brokers []string, topic, groupID string, repo PriceRepository, invalidator ForecastInvalidator) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})
	return &Consumer{
		reader:      reader,
		topic:       topic,
		retryDelay:  readRetryDelay,
		repo:        repo,
		invalidator: invalidator,
	}
}

// Start consumes until ctx is cancelled. Bad messages are logged and skipped.
func (c *Consumer) Start(ctx context.Context) error {
	logrus.WithField("topic", c.topic).Info("Starting Kafka consumer")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logrus.Info("Kafka consumer shutting down")
				return c.reader.Close()
			}
			logrus.WithError(err).Error("Error reading message")
			select {
			case <-ctx.Done():
				logrus.Info("Kafka consumer shutting down")
				return c.reader.Close()
			case <-time.After(c.retryDelay):
			}
			continue
		}

		if err := c.processMessage(ctx, msg); err != nil {
			logrus.WithError(err).WithField("offset", msg.Offset).Warn("Error processing message")
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.PriceEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal price event: %w", err)
	}

	if event.EventType != models.EventPriceRecorded {
		logrus.WithField("event_type", event.EventType).Debug("Ignoring event")
		return nil
	}

	price, err := convertEventToPriceData(event)
	if err != nil {
		return fmt.Errorf("failed to convert price event: %w", err)
	}
	if err := c.repo.CreatePriceData(price); err != nil {
		return fmt.Errorf("failed to save price data: %w", err)
	}

	// stale forecasts regenerate on next request
	if c.invalidator != nil {
		if err := c.invalidator.Delete(ctx, price.AssetID); err != nil {
			logrus.WithError(err).WithField("asset_id", price.AssetID).Warn("Failed to invalidate cached forecast")
		}
	}

	logrus.WithFields(logrus.Fields{
		"asset_id": price.AssetID,
		"date":     price.Date.Format("2006-01-02"),
		"close":    price.Close.String(),
		"source":   event.Source,
	}).Debug("Stored price")
	return nil
}

func convertEventToPriceData(event models.PriceEvent) (*models.PriceDataDaily, error) {
	data := event.Data
	if data.AssetID == "" {
		return nil, fmt.Errorf("missing asset_id")
	}

	date, err := parseDate(data.Date)
	if err != nil {
		return nil, err
	}

	closePrice, err := decimal.NewFromString(data.Close)
	if err != nil {
		return nil, fmt.Errorf("invalid close %s: %w", data.Close, err)
	}
	if !closePrice.IsPositive() {
		return nil, fmt.Errorf("close must be positive: %s", data.Close)
	}

	volume := decimal.Zero
	if data.Volume != "" {
		if volume, err = decimal.NewFromString(data.Volume); err != nil {
			return nil, fmt.Errorf("invalid volume %s: %w", data.Volume, err)
		}
	}

	marketCap := decimal.Zero
	if data.MarketCap != "" {
		marketCap, _ = decimal.NewFromString(data.MarketCap)
	}

	return &models.PriceDataDaily{
		AssetID:   data.AssetID,
		Date:      date,
		Close:     closePrice,
		Volume:    volume,
		MarketCap: marketCap,
	}, nil
}

// parseDate accepts a calendar date or an RFC3339 timestamp, truncated to the UTC day
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %s: %w", s, err)
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
