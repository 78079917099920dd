// Package s3 provides a MinIO backed object store for filegate. It maps the
// gateway's whole-object and offset-length partial reads onto the MinIO
// client and keeps the original filename in user metadata.
package s3

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/obaudys/filegate"
)

// metadata key carrying the verbatim client-supplied filename
const originalNameHeader = "Original-Name"

// Config holds MinIO connection settings.
type Config struct {
	Endpoint  string `mapstructure:"endpoint" validate:"required"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket" validate:"required"`
	AccessKey string `mapstructure:"access_key" validate:"required"`
	SecretKey string `mapstructure:"secret_key" validate:"required"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	PathStyle bool   `mapstructure:"path_style"`
}

// Store implements filegate.ObjectStore on a MinIO bucket.
type Store struct {
	cl     *minio.Client
	bucket string
	log    *slog.Logger
}

// New connects to MinIO and ensures the configured bucket exists,
// creating it when absent.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*Store, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("new minio client: %w", err)
	}

	if log == nil {
		log = slog.Default()
	}

	exists, err := cl.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cl.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		log.Info("bucket created", "bucket", cfg.Bucket)
	}

	return &Store{cl: cl, bucket: cfg.Bucket, log: log}, nil
}

func (s *Store) Put(ctx context.Context, key string, content io.Reader, size int64, opts filegate.PutOptions) error {
	putOpts := minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: map[string]string{originalNameHeader: opts.OriginalName},
	}

	if _, err := s.cl.PutObject(ctx, s.bucket, key, content, size, putOpts); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.cl.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, mapErr(err))
	}
	return obj, nil
}

func (s *Store) GetRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error) {
	opts := minio.GetObjectOptions{}
	// SetRange takes inclusive bounds
	if err := opts.SetRange(offset, offset+length-1); err != nil {
		return nil, fmt.Errorf("get range %s: %w", key, err)
	}

	obj, err := s.cl.GetObject(ctx, s.bucket, key, opts)
	if err != nil {
		return nil, fmt.Errorf("get range %s: %w", key, mapErr(err))
	}
	return obj, nil
}

func (s *Store) Stat(ctx context.Context, key string) (filegate.ObjectStat, error) {
	info, err := s.cl.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return filegate.ObjectStat{}, fmt.Errorf("stat %s: %w", key, mapErr(err))
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return filegate.ObjectStat{
		Size:         info.Size,
		ContentType:  contentType,
		OriginalName: info.UserMetadata[originalNameHeader],
		ModTime:      info.LastModified,
	}, nil
}

// Remove deletes an object. MinIO treats removal of an absent key as
// success, which matches the gateway's idempotent delete semantics.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.cl.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, mapErr(err))
	}
	return nil
}

func (s *Store) PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.cl.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, mapErr(err))
	}
	return u.String(), nil
}

// mapErr translates MinIO error responses to the gateway's sentinel errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
		return filegate.ErrNotFound
	}
	return err
}
