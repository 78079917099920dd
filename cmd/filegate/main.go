package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/obaudys/filegate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "filegate",
	Short:   "File upload gateway backed by MinIO with usage analytics",
	Long: `Filegate is a file upload gateway that validates uploads by content,
stores objects in a MinIO bucket under content-derived keys, serves
ranged downloads, and tracks per-object usage in a database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path(s), later files override earlier (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: FILEGATE_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: filegate.db, env: FILEGATE_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("endpoint", "", "MinIO endpoint (default: localhost:9000, env: FILEGATE_STORAGE_ENDPOINT)")
	rootCmd.PersistentFlags().String("bucket", "", "MinIO bucket (default: filegate, env: FILEGATE_STORAGE_BUCKET)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
