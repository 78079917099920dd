// Package sqlite implements the usage ledger using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/obaudys/filegate"
)

type Ledger struct {
	db        *sql.DB
	tableName string
	log       *slog.Logger
}

func NewLedger(db *sql.DB, tables filegate.Tables, log *slog.Logger) (*Ledger, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new ledger: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Ledger{db: db, tableName: tables.Usage, log: log}, nil
}

func (l *Ledger) RecordUpload(ctx context.Context, key, originalName, mimetype string, size int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, filename, original_name, mimetype, size, upload_time)
		VALUES (?, ?, ?, ?, ?, ?)`, l.tableName)

	_, err := l.db.ExecContext(ctx, query, uuid.New().String(), key, originalName, mimetype, size, now)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}

	return nil
}

// RecordAccess is a single additive UPDATE so concurrent accesses to the
// same key never lose increments. An unknown key is logged, not failed.
func (l *Ledger) RecordAccess(ctx context.Context, key string, bytesTransferred int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET download_count = download_count + 1,
			bandwidth_usage = bandwidth_usage + ?,
			last_access_time = ?
		WHERE filename = ?`, l.tableName)

	result, err := l.db.ExecContext(ctx, query, bytesTransferred, now, key)
	if err != nil {
		return fmt.Errorf("record access: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("record access: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		l.log.Warn("usage record not found", "key", key)
	}

	return nil
}

// Get retrieves the usage record for a single key.
func (l *Ledger) Get(ctx context.Context, key string) (filegate.UsageRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT filename, original_name, mimetype, size, upload_time,
			download_count, bandwidth_usage, last_access_time
		FROM %s
		WHERE filename = ?`, l.tableName)

	r, err := scanRecord(l.db.QueryRowContext(ctx, query, key).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return filegate.UsageRecord{}, filegate.ErrNotFound
		}
		return filegate.UsageRecord{}, fmt.Errorf("get: %w", err)
	}

	return r, nil
}

func (l *Ledger) Overview(ctx context.Context) (filegate.UsageOverview, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT COUNT(*), COALESCE(SUM(size), 0), COALESCE(SUM(bandwidth_usage), 0) FROM %s`, l.tableName)

	var o filegate.UsageOverview
	if err := l.db.QueryRowContext(ctx, query).Scan(&o.TotalFiles, &o.TotalSize, &o.TotalBandwidth); err != nil {
		return filegate.UsageOverview{}, fmt.Errorf("overview: %w", err)
	}

	return o, nil
}

func (l *Ledger) TopDownloads(ctx context.Context, limit int) ([]filegate.UsageRecord, error) {
	if limit <= 0 {
		limit = 5
	}

	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT filename, original_name, mimetype, size, upload_time,
			download_count, bandwidth_usage, last_access_time
		FROM %s
		ORDER BY download_count DESC, filename
		LIMIT ?`, l.tableName)

	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top downloads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]filegate.UsageRecord, 0, limit)
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("top downloads: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top downloads: rows: %w", err)
	}

	return records, nil
}

func (l *Ledger) StorageByType(ctx context.Context) ([]filegate.MimeUsage, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT mimetype, COALESCE(SUM(size), 0) AS total_size
		FROM %s
		GROUP BY mimetype
		ORDER BY total_size DESC`, l.tableName)

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("storage by type: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

// scanRecord reads one usage row; timestamps are stored as RFC3339Nano text.
func scanRecord(scan func(dest ...any) error) (filegate.UsageRecord, error) {
	var r filegate.UsageRecord
	var uploadTime string
	var lastAccess sql.NullString

	if err := scan(
		&r.Key, &r.OriginalName, &r.Mimetype, &r.Size, &uploadTime,
		&r.DownloadCount, &r.BandwidthUsage, &lastAccess,
	); err != nil {
		return filegate.UsageRecord{}, err
	}

	var err error
	r.UploadTime, err = time.Parse(time.RFC3339Nano, uploadTime)
	if err != nil {
		return filegate.UsageRecord{}, fmt.Errorf("parse upload_time: %w", err)
	}

	if lastAccess.Valid {
		t, err := time.Parse(time.RFC3339Nano, lastAccess.String)
		if err != nil {
			return filegate.UsageRecord{}, fmt.Errorf("parse last_access_time: %w", err)
		}
		r.LastAccessTime = &t
	}

	return r, nil
}
