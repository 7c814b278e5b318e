package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trogers1052/price-forecast-service/internal/config"
)

// rootCmd is the base command of the forecast daemon
var rootCmd = &cobra.Command{
	Use:   "forecastd",
	Short: "Multi-horizon price forecast service",
	Long: `forecastd generates short and long horizon price forecasts for crypto assets,
caches them in Redis and serves them over HTTP.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		config.SetupLogging(cfg.Log)
	},
}

var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
