package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/obaudys/filegate"
)

// Migrate creates the usage table and its indexes when absent.
func Migrate(ctx context.Context, db *sql.DB, tables filegate.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	stmts := []string{
		fmt.Sprintf( //nolint:gosec // G201: table name is validated
			`CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				filename TEXT NOT NULL UNIQUE,
				original_name TEXT NOT NULL,
				mimetype TEXT NOT NULL,
				size INTEGER NOT NULL,
				upload_time TEXT NOT NULL,
				download_count INTEGER NOT NULL DEFAULT 0,
				bandwidth_usage INTEGER NOT NULL DEFAULT 0,
				last_access_time TEXT
			)`, tables.Usage),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_top_downloads ON %s (download_count DESC, filename)`,
			tables.Usage, tables.Usage),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_mimetype ON %s (mimetype)`,
			tables.Usage, tables.Usage),
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create usage table: %w", err)
		}
	}

	return nil
}
