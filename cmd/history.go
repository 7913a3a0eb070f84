package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resumectl/internal/app"
	"resumectl/internal/history"
	"resumectl/internal/ui"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List resumes submitted from this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.History.Enabled {
			return fmt.Errorf("submission history is disabled")
		}
		ctx := context.Background()
		store, err := history.Open(ctx, cfg.History.Path, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		return app.ShowHistory(ctx, store, ui.NewConsoleUI(os.Stdout, os.Stderr, false), historyLimit)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of submissions to list (0 for all)")
}
