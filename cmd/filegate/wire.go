package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/obaudys/filegate"
	"github.com/obaudys/filegate/config"
	"github.com/obaudys/filegate/database"
	"github.com/obaudys/filegate/s3"
)

// buildService connects the object store and the usage ledger and wires the
// gateway service on top. The returned cleanup function closes the database.
func buildService(ctx context.Context, cfg *config.Config) (*filegate.Service, func(), error) {
	log := slog.Default()

	store, err := s3.New(ctx, cfg.Storage, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect object store: %w", err)
	}
	slog.Info("connected to object store", "endpoint", cfg.Storage.Endpoint, "bucket", cfg.Storage.Bucket)

	ledger, closeDB, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("connected to database", "type", cfg.Database.Type)

	service, err := filegate.NewService(store, ledger, filegate.ServiceConfig{
		MaxUploadSize: cfg.Server.MaxUploadSize,
		Logger:        log,
	})
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("create service: %w", err)
	}

	return service, closeDB, nil
}
