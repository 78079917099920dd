// Package postgres implements the usage ledger on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obaudys/filegate"
)

type Ledger struct {
	pool      *pgxpool.Pool
	tableName string
	log       *slog.Logger
}

func NewLedger(pool *pgxpool.Pool, tables filegate.Tables, log *slog.Logger) (*Ledger, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new ledger: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Ledger{pool: pool, tableName: tables.Usage, log: log}, nil
}

func (l *Ledger) RecordUpload(ctx context.Context, key, originalName, mimetype string, size int64) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (filename, original_name, mimetype, size)
		VALUES ($1, $2, $3, $4)
	`, l.tableName)

	if _, err := l.pool.Exec(ctx, query, key, originalName, mimetype, size); err != nil {
		return fmt.Errorf("record upload: %w", err)
	}

	return nil
}

// RecordAccess is a single additive UPDATE so concurrent accesses to the
// same key never lose increments. An unknown key is logged, not failed.
func (l *Ledger) RecordAccess(ctx context.Context, key string, bytesTransferred int64) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET download_count = download_count + 1,
			bandwidth_usage = bandwidth_usage + $2,
			last_access_time = NOW()
		WHERE filename = $1
	`, l.tableName)

	result, err := l.pool.Exec(ctx, query, key, bytesTransferred)
	if err != nil {
		return fmt.Errorf("record access: %w", err)
	}

	if result.RowsAffected() == 0 {
		l.log.Warn("usage record not found", "key", key)
	}

	return nil
}

// Get retrieves the usage record for a single key.
func (l *Ledger) Get(ctx context.Context, key string) (filegate.UsageRecord, error) {
	query := fmt.Sprintf(`
		SELECT filename, original_name, mimetype, size, upload_time,
			download_count, bandwidth_usage, last_access_time
		FROM %s
		WHERE filename = $1
	`, l.tableName)

	var r filegate.UsageRecord
	err := l.pool.QueryRow(ctx, query, key).Scan(
		&r.Key, &r.OriginalName, &r.Mimetype, &r.Size, &r.UploadTime,
		&r.DownloadCount, &r.BandwidthUsage, &r.LastAccessTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return filegate.UsageRecord{}, filegate.ErrNotFound
		}
		return filegate.UsageRecord{}, fmt.Errorf("get: %w", err)
	}

	return r, nil
}

func (l *Ledger) Overview(ctx context.Context) (filegate.UsageOverview, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(SUM(size), 0), COALESCE(SUM(bandwidth_usage), 0)
		FROM %s
	`, l.tableName)

	var o filegate.UsageOverview
	if err := l.pool.QueryRow(ctx, query).Scan(&o.TotalFiles, &o.TotalSize, &o.TotalBandwidth); err != nil {
		return filegate.UsageOverview{}, fmt.Errorf("overview: %w", err)
	}

	return o, nil
}

func (l *Ledger) TopDownloads(ctx context.Context, limit int) ([]filegate.UsageRecord, error) {
	if limit <= 0 {
		limit = 5
	}

	query := fmt.Sprintf(`
		SELECT filename, original_name, mimetype, size, upload_time,
			download_count, bandwidth_usage, last_access_time
		FROM %s
		ORDER BY download_count DESC, filename
		LIMIT $1
	`, l.tableName)

	rows, err := l.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top downloads: %w", err)
	}
	defer rows.Close()

	records := make([]filegate.UsageRecord, 0, limit)
	for rows.Next() {
		var r filegate.UsageRecord
		if err := rows.Scan(
			&r.Key, &r.OriginalName, &r.Mimetype, &r.Size, &r.UploadTime,
			&r.DownloadCount, &r.BandwidthUsage, &r.LastAccessTime,
		); err != nil {
			return nil, fmt.Errorf("top downloads: scan: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top downloads: rows: %w", err)
	}

	return records, nil
}

func (l *Ledger) StorageByType(ctx context.Context) ([]filegate.MimeUsage, error) {
	query := fmt.Sprintf(`
		SELECT mimetype, COALESCE(SUM(size), 0) AS total_size
		FROM %s
		GROUP BY mimetype
		ORDER BY total_size DESC
	`, l.tableName)

	rows, err := l.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("storage by type: %w", err)
	}
	defer rows.Close()

	var usages []filegate.MimeUsage
	for rows.Next() {
		var u filegate.MimeUsage
		if err := rows.Scan(&u.Mimetype, &u.TotalSize); err != nil {
			return nil, fmt.Errorf("storage by type: scan: %w", err)
		}
		usages = append(usages, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage by type: rows: %w", err)
	}

	return usages, nil
}
