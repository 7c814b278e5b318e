package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/trogers1052/price-forecast-service/internal/models"
	"github.com/trogers1052/price-forecast-service/internal/narrative"
	"github.com/trogers1052/price-forecast-service/internal/service"
)

var (
	forecastFormat  string
	forecastTimeout time.Duration
)

var forecastCmd = &cobra.Command{
	Use:   "forecast <asset-id>",
	Short: "Generate one forecast and print it",
	Long: `Generate a forecast for one asset from the upstream API without touching
the cache, database or Kafka.

Examples:
  forecastd forecast bitcoin
  forecastd forecast ethereum --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
	forecastCmd.Flags().StringVar(&forecastFormat, "format", "table", "Output format: table, json")
	forecastCmd.Flags().DurationVar(&forecastTimeout, "timeout", time.Minute, "Timeout for fetching and generation")
}

func runForecast(cmd *cobra.Command, args []string) error {
	if forecastFormat != "table" && forecastFormat != "json" {
		return fmt.Errorf("unsupported format %q", forecastFormat)
	}

	engine, err := newEngine(cfg.Forecast)
	if err != nil {
		return err
	}
	client := newUpstream(cfg.Upstream)
	svc := service.NewForecastService(service.Deps{
		Series:   client,
		Metadata: client,
		Engine:   engine,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), forecastTimeout)
	defer cancel()

	bundle, err := svc.GetForecast(ctx, args[0], true)
	if err != nil {
		return err
	}

	if forecastFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	}
	printForecast(bundle)
	return nil
}

func printForecast(b *models.ForecastBundle) {
	fmt.Printf("%s (%s) rank #%d, current price $%s\n\n",
		b.Coin.Name, b.Coin.Ticker, b.Rank, narrative.FormatPrice(b.CurrentPrice))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HORIZON\tPRICE\tMIN\tMAX\tROI\tCONFIDENCE\tSENTIMENT")
	rows := []struct {
		name string
		r    models.PredictionResult
	}{
		{"3 days", b.Predictions.ThreeDay},
		{"5 days", b.Predictions.FiveDay},
		{"1 month", b.Predictions.OneMonth},
		{"3 months", b.Predictions.ThreeMonth},
		{"6 months", b.Predictions.SixMonth},
		{"1 year", b.Predictions.OneYear},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t$%s\t$%s\t$%s\t%.2f%%\t%.0f%%\t%s\n",
			row.name,
			narrative.FormatPrice(row.r.Price),
			narrative.FormatPrice(row.r.MinPrice),
			narrative.FormatPrice(row.r.MaxPrice),
			row.r.ROI,
			row.r.Confidence,
			row.r.Sentiment,
		)
	}
	w.Flush()

	t := b.TechnicalIndicators
	fmt.Printf("\nRSI14 %.1f  SMA50 %s  SMA200 %s  volatility %.2f  fear & greed %d (%s)  green days %s\n",
		t.RSI14, narrative.FormatPrice(t.SMA50), narrative.FormatPrice(t.SMA200),
		t.Volatility, t.FearGreedIndex, t.FearGreedZone, t.GreenDays)
}
