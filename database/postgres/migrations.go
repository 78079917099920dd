package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obaudys/filegate"
)

// Migrate creates the usage table and its indexes when absent.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables filegate.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	quotedTable := pgx.Identifier{tables.Usage}.Sanitize()
	indexTopDownloads := pgx.Identifier{fmt.Sprintf("idx_%s_top_downloads", tables.Usage)}.Sanitize()
	indexMimetype := pgx.Identifier{fmt.Sprintf("idx_%s_mimetype", tables.Usage)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			filename TEXT NOT NULL UNIQUE,
			original_name TEXT NOT NULL,
			mimetype TEXT NOT NULL,
			size BIGINT NOT NULL,
			upload_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			download_count BIGINT NOT NULL DEFAULT 0,
			bandwidth_usage BIGINT NOT NULL DEFAULT 0,
			last_access_time TIMESTAMPTZ
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (download_count DESC, filename);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (mimetype);
	`,
		quotedTable,
		indexTopDownloads, quotedTable,
		indexMimetype, quotedTable,
	)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create usage table: %w", err)
	}
	return nil
}
