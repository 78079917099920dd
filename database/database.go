package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obaudys/filegate"
	"github.com/obaudys/filegate/database/postgres"
	"github.com/obaudys/filegate/database/sqlite"

	_ "modernc.org/sqlite" // SQLite driver
)

// Config holds the configuration for connecting to a ledger backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" validate:"required"`
	// Table is the name of the usage table
	Table string `mapstructure:"table"`
}

// Connect establishes a connection to the configured database backend, runs
// migrations and returns a UsageLedger. The returned cleanup function should
// be called to close the connection.
func Connect(ctx context.Context, cfg Config, log *slog.Logger) (filegate.UsageLedger, func(), error) {
	tables := filegate.Tables{Usage: cfg.Table}
	if err := tables.Validate(); err != nil {
		return nil, nil, err
	}

	switch cfg.Type {
	case "sqlite":
		return connectSQLite(ctx, cfg.DSN, tables, log)
	case "postgres":
		return connectPostgres(ctx, cfg.DSN, tables, log)
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func connectSQLite(ctx context.Context, dsn string, tables filegate.Tables, log *slog.Logger) (filegate.UsageLedger, func(), error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err = sqlite.Migrate(ctx, db, tables); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	ledger, err := sqlite.NewLedger(db, tables, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("create sqlite ledger: %w", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return ledger, cleanup, nil
}

func connectPostgres(ctx context.Context, dsn string, tables filegate.Tables, log *slog.Logger) (filegate.UsageLedger, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err = postgres.Migrate(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	ledger, err := postgres.NewLedger(pool, tables, log)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("create postgres ledger: %w", err)
	}

	return ledger, pool.Close, nil
}
