package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/obaudys/filegate/config"
)

var rmCmd = &cobra.Command{
	Use:   "rm <key1> [key2] ...",
	Short: "Remove objects from the gateway's bucket",
	Long: `Remove objects from the object store by key.

Usage accounting rows are kept; the ledger records historical usage,
not current existence.

Examples:
  # Remove a single object
  filegate rm 2026-08-29/image/3f2e...-photo.jpg

  # Remove several objects
  filegate rm key1 key2 key3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRm,
}

var rmQuiet bool

func init() {
	rmCmd.Flags().BoolVarP(&rmQuiet, "quiet", "q", false, "suppress per-object output")
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
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

	for _, key := range args {
		if err := service.Delete(ctx, key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
		if !rmQuiet {
			slog.Info("removed", "key", key)
		}
	}

	slog.Info("remove complete", "removed", len(args))
	return nil
}
