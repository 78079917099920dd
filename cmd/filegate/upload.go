package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/obaudys/filegate"
	"github.com/obaudys/filegate/config"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file1> [file2] ...",
	Short: "Upload local files through the gateway",
	Long: `Upload files from local paths into the gateway's object store.

Each file goes through the same pipeline as an HTTP upload: content
sniffing, the allow-list check, key derivation and usage accounting.

Examples:
  # Upload a single file
  filegate upload photo.jpg

  # Upload several files
  filegate upload clip.mp4 notes.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

var uploadQuiet bool

func init() {
	uploadCmd.Flags().BoolVarP(&uploadQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
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

	uploaded := 0
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}

		in := filegate.UploadInput{
			Name: filepath.Base(path),
			Size: info.Size(),
		}

		obj, err := service.Upload(ctx, in, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("upload %s: %w", path, err)
		}

		uploaded++
		if !uploadQuiet {
			slog.Info("uploaded", "key", obj.Key, "mimetype", obj.Mimetype, "size", obj.Size)
		}
	}

	slog.Info("upload complete", "uploaded", uploaded)
	return nil
}
