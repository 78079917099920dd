package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/obaudys/filegate/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print usage analytics",
	Long: `Print aggregate usage analytics from the accounting ledger:
overall totals, the most downloaded objects and stored bytes per
mimetype. Output is JSON.`,
	RunE: runStats,
}

var statsTopLimit int

func init() {
	statsCmd.Flags().IntVar(&statsTopLimit, "top", 5, "number of top downloads to include")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	service, closeDB, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	overview, err := service.Overview(ctx)
	if err != nil {
		return fmt.Errorf("overview: %w", err)
	}

	top, err := service.TopDownloads(ctx, statsTopLimit)
	if err != nil {
		return fmt.Errorf("top downloads: %w", err)
	}

	byType, err := service.StorageByType(ctx)
	if err != nil {
		return fmt.Errorf("storage by type: %w", err)
	}

	out := map[string]any{
		"overview":        overview,
		"top_downloads":   top,
		"storage_by_type": byType,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
