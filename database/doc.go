// Package database provides a unified interface for connecting to usage
// ledger backends.
//
// The package supports multiple database backends (PostgreSQL and SQLite)
// and handles connection management and migrations automatically. Both
// backends implement counter updates as atomic in-place increments, so
// concurrent downloads of the same key never lose accounting deltas.
//
// # Supported Backends
//
//   - PostgreSQL: production backend using the pgx connection pool
//   - SQLite: lightweight backend suitable for development and single-node deployments
//
// # Usage
//
//	cfg := database.Config{
//	    Type:  "sqlite",
//	    DSN:   "filegate.db",
//	    Table: "file_usage",
//	}
//
//	ledger, cleanup, err := database.Connect(ctx, cfg, slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cleanup()
package database
