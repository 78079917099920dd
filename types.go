package filegate

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ObjectInfo describes a stored object as returned to upload callers.
type ObjectInfo struct {
	Key          string `json:"key"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
	Mimetype     string `json:"mimetype"`
	Category     string `json:"category"`
	DownloadURL  string `json:"download_url"`
}

// ObjectStat is the metadata an object store reports for a stored object.
type ObjectStat struct {
	Size         int64
	ContentType  string
	OriginalName string
	ModTime      time.Time
}

// PutOptions carries metadata attached to an object at write time.
// OriginalName keeps the client-supplied filename verbatim even though the
// storage key only ever contains its sanitized form.
type PutOptions struct {
	ContentType  string
	OriginalName string
}

// UsageRecord is one row of the accounting ledger, keyed by object key.
type UsageRecord struct {
	Key            string     `json:"key"`
	OriginalName   string     `json:"original_name"`
	Mimetype       string     `json:"mimetype"`
	Size           int64      `json:"size"`
	UploadTime     time.Time  `json:"upload_time"`
	DownloadCount  int64      `json:"download_count"`
	BandwidthUsage int64      `json:"bandwidth_usage"`
	LastAccessTime *time.Time `json:"last_access_time,omitempty"`
}

// UsageOverview aggregates the ledger across all objects.
type UsageOverview struct {
	TotalFiles     int64 `json:"total_files"`
	TotalSize      int64 `json:"total_size"`
	TotalBandwidth int64 `json:"total_bandwidth"`
}

// MimeUsage is the total stored size attributed to one mimetype.
type MimeUsage struct {
	Mimetype  string `json:"mimetype"`
	TotalSize int64  `json:"total_size"`
}

// Tables holds configurable table names for the accounting ledger.
// This allows multiple gateways to share one database.
type Tables struct {
	Usage string `mapstructure:"usage"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Usage == "" {
		return errors.New("validate tables: usage table name cannot be empty")
	}

	if !IsValidTableName(t.Usage) {
		return fmt.Errorf("validate tables: invalid usage table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Usage)
	}

	return nil
}
