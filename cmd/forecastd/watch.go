package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trogers1052/price-forecast-service/internal/database"
	"github.com/trogers1052/price-forecast-service/internal/models"
)

var (
	watchPriority int
	watchNotes    string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage the assets kept warm by the scheduler",
}

var watchAddCmd = &cobra.Command{
	Use:   "add <asset-id>...",
	Short: "Add or update watched assets",
	Args:  cobra.MinimumNArgs(1),
	RunE: withDB(func(db *database.DB, args []string) error {
		for _, id := range args {
			w := &models.WatchedAsset{AssetID: id, Enabled: true, Priority: watchPriority, Notes: watchNotes}
			if err := db.CreateWatchedAsset(w); err != nil {
				return err
			}
		}
		return nil
	}),
}

var watchRemoveCmd = &cobra.Command{
	Use:   "remove <asset-id>...",
	Short: "Remove watched assets",
	Args:  cobra.MinimumNArgs(1),
	RunE: withDB(func(db *database.DB, args []string) error {
		for _, id := range args {
			if err := db.DeleteWatchedAsset(id); err != nil {
				return err
			}
		}
		return nil
	}),
}

var watchPauseCmd = &cobra.Command{
	Use:   "pause <asset-id>",
	Short: "Stop warming an asset without removing it",
	Args:  cobra.ExactArgs(1),
	RunE: withDB(func(db *database.DB, args []string) error {
		return db.SetWatchedAssetEnabled(args[0], false)
	}),
}

var watchResumeCmd = &cobra.Command{
	Use:   "resume <asset-id>",
	Short: "Resume warming a paused asset",
	Args:  cobra.ExactArgs(1),
	RunE: withDB(func(db *database.DB, args []string) error {
		return db.SetWatchedAssetEnabled(args[0], true)
	}),
}

var watchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched assets",
	Args:  cobra.NoArgs,
	RunE: withDB(func(db *database.DB, args []string) error {
		assets, err := db.GetAllWatchedAssets()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ASSET\tENABLED\tPRIORITY\tNOTES")
		for _, a := range assets {
			fmt.Fprintf(w, "%s\t%t\t%d\t%s\n", a.AssetID, a.Enabled, a.Priority, a.Notes)
		}
		return w.Flush()
	}),
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.AddCommand(watchAddCmd, watchRemoveCmd, watchPauseCmd, watchResumeCmd, watchListCmd)

	watchAddCmd.Flags().IntVar(&watchPriority, "priority", 1, "Warm order, 1 first")
	watchAddCmd.Flags().StringVar(&watchNotes, "notes", "", "Free-form notes")
}

// withDB opens the database for the duration of one command
func withDB(fn func(db *database.DB, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(db, args)
	}
}
