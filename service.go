package filegate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// ObjectStore defines the object storage collaborator. Implementations must
// support whole-object and offset-length partial reads so ranged requests
// never pull more bytes off the store than they serve.
//
// All methods accept a context for cancellation and timeout control.
type ObjectStore interface {
	// Put stores an object under key with the given metadata attached.
	// size may be -1 when unknown; implementations then stream until EOF.
	Put(ctx context.Context, key string, content io.Reader, size int64, opts PutOptions) error

	// Get opens the full object stream.
	// Returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// GetRange opens a stream covering length bytes starting at offset.
	GetRange(ctx context.Context, key string, offset, length int64) (io.ReadCloser, error)

	// Stat reports size and stored metadata for an object.
	// Returns ErrNotFound when the key is absent.
	Stat(ctx context.Context, key string) (ObjectStat, error)

	// Remove deletes an object. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// PresignedGet returns a time-limited URL granting read access to key.
	PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// UsageLedger defines the accounting collaborator: durable per-key usage
// counters living in their own consistency domain, decoupled from the object
// store. Counter updates must be atomic increments at the database, never
// read-modify-write in application code.
type UsageLedger interface {
	// RecordUpload creates the accounting row for a freshly stored object.
	RecordUpload(ctx context.Context, key, originalName, mimetype string, size int64) error

	// RecordAccess atomically increments the download count by one and the
	// bandwidth total by bytesTransferred, and stamps the access time.
	// An unknown key is a warning condition, not an error.
	RecordAccess(ctx context.Context, key string, bytesTransferred int64) error

	// Overview aggregates totals across all tracked objects.
	Overview(ctx context.Context) (UsageOverview, error)

	// TopDownloads lists the most downloaded objects, best first.
	TopDownloads(ctx context.Context, limit int) ([]UsageRecord, error)

	// StorageByType sums stored bytes per mimetype.
	StorageByType(ctx context.Context) ([]MimeUsage, error)
}

// UploadInput carries the untrusted client-declared attributes of an upload.
type UploadInput struct {
	Name         string
	DeclaredMime string
	Size         int64
}

// Object is an opened stream plus everything the transport needs to frame it.
type Object struct {
	Content     io.ReadCloser
	Stat        ObjectStat
	Window      RangeWindow
	Disposition string
}

// ServiceConfig holds configuration options for Service.
type ServiceConfig struct {
	// MaxUploadSize rejects uploads above this many bytes before any
	// content sniffing. Zero means no ceiling.
	MaxUploadSize int64
	// DownloadPathPrefix is prepended to the escaped key when building the
	// download URL returned from uploads (default "/file/download/").
	DownloadPathPrefix string
	Logger             *slog.Logger
}

// Service orchestrates uploads, ranged delivery and deletion against an
// object store, attributing exactly one accounting event per request to the
// usage ledger. Ledger failures are logged and swallowed; the data path is
// authoritative, accounting is best effort.
type Service struct {
	store  ObjectStore
	ledger UsageLedger
	cfg    ServiceConfig
	log    *slog.Logger
}

// NewService wires a Service from its collaborators. Both are passed
// explicitly; there is no global registry.
func NewService(store ObjectStore, ledger UsageLedger, cfg ServiceConfig) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("new service: %w: object store is required", ErrInvalidInput)
	}
	if ledger == nil {
		return nil, fmt.Errorf("new service: %w: usage ledger is required", ErrInvalidInput)
	}
	if cfg.DownloadPathPrefix == "" {
		cfg.DownloadPathPrefix = "/file/download/"
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, ledger: ledger, cfg: cfg, log: log}, nil
}

// Upload validates, keys and stores one uploaded object, then creates its
// accounting row. Validation failures short-circuit before any store call;
// a store failure leaves no accounting row behind.
//
// The sniffed media type, not the declared one, drives the allow-list check,
// the stored Content-Type, the key category and the ledger row. The declared
// filename is preserved verbatim in object metadata while the key carries
// only its sanitized form.
func (s *Service) Upload(ctx context.Context, in UploadInput, content io.Reader) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, fmt.Errorf("upload: %w", err)
	}

	if in.Name == "" {
		return ObjectInfo{}, fmt.Errorf("upload: %w: name cannot be empty", ErrInvalidInput)
	}

	if s.cfg.MaxUploadSize > 0 && in.Size > s.cfg.MaxUploadSize {
		return ObjectInfo{}, fmt.Errorf("upload %s: %w: %d bytes exceeds ceiling %d", in.Name, ErrOversizeUpload, in.Size, s.cfg.MaxUploadSize)
	}

	head := make([]byte, SniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return ObjectInfo{}, fmt.Errorf("upload %s: read head: %w", in.Name, err)
	}
	head = head[:n]

	sniffed, err := ValidateContent(head)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("upload %s: %w", in.Name, err)
	}
	if in.DeclaredMime != "" && in.DeclaredMime != sniffed {
		s.log.Debug("declared mimetype disagrees with sniffed content", "name", in.Name, "declared", in.DeclaredMime, "sniffed", sniffed)
	}

	key, category := DeriveKey(in.Name, sniffed, time.Now())

	body := io.MultiReader(bytes.NewReader(head), content)
	opts := PutOptions{ContentType: sniffed, OriginalName: in.Name}
	if err := s.store.Put(ctx, key, body, in.Size, opts); err != nil {
		return ObjectInfo{}, fmt.Errorf("upload %s: %w: %w", in.Name, ErrStorage, err)
	}

	if err := s.ledger.RecordUpload(ctx, key, in.Name, sniffed, in.Size); err != nil {
		s.log.Warn("usage ledger upload record failed", "key", key, "err", err)
	}

	s.log.Info("object uploaded", "key", key, "size", in.Size, "mimetype", sniffed)

	return ObjectInfo{
		Key:          key,
		OriginalName: in.Name,
		Size:         in.Size,
		Mimetype:     sniffed,
		Category:     category,
		DownloadURL:  s.cfg.DownloadPathPrefix + url.PathEscape(key),
	}, nil
}

// Open stats an object and opens either the full stream or the partial
// window the Range header asks for, attributing one access event sized to
// the bytes actually served. The event is emitted once the stream is
// obtained, never optimistically before; if the caller later cancels
// mid-transfer the event stands.
//
// The caller owns the returned Object.Content and must close it.
func (s *Service) Open(ctx context.Context, key, rangeHeader string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}

	if key == "" {
		return nil, fmt.Errorf("open object: %w: key cannot be empty", ErrInvalidInput)
	}

	stat, err := s.store.Stat(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("open object %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("open object %s: %w: %w", key, ErrStorage, err)
	}

	window, err := ResolveRange(rangeHeader, stat.Size)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", key, err)
	}

	var rc io.ReadCloser
	if window.Full {
		rc, err = s.store.Get(ctx, key)
	} else {
		rc, err = s.store.GetRange(ctx, key, window.Start, window.Length())
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("open object %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("open object %s: %w: %w", key, ErrStorage, err)
	}

	served := stat.Size
	if !window.Full {
		served = window.Length()
	}
	if err := s.ledger.RecordAccess(ctx, key, served); err != nil {
		s.log.Warn("usage ledger access record failed", "key", key, "err", err)
	}

	return &Object{
		Content:     rc,
		Stat:        stat,
		Window:      window,
		Disposition: Disposition(stat.ContentType),
	}, nil
}

// Delete removes an object from the store. The accounting row is left in
// place: the ledger reflects historical usage, not current existence.
// Deleting an absent key succeeds, so racing deletes are indistinguishable
// from a single one.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	if key == "" {
		return fmt.Errorf("delete object: %w: key cannot be empty", ErrInvalidInput)
	}

	if err := s.store.Remove(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete object %s: %w: %w", key, ErrStorage, err)
	}

	s.log.Info("object deleted", "key", key)
	return nil
}

// PresignedURL delegates to the store's time-limited URL capability.
func (s *Service) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("presigned url: %w", err)
	}

	if key == "" {
		return "", fmt.Errorf("presigned url: %w: key cannot be empty", ErrInvalidInput)
	}

	u, err := s.store.PresignedGet(ctx, key, expiry)
	if err != nil {
		return "", fmt.Errorf("presigned url %s: %w: %w", key, ErrStorage, err)
	}
	return u, nil
}

// Overview exposes the ledger's aggregate totals.
func (s *Service) Overview(ctx context.Context) (UsageOverview, error) {
	return s.ledger.Overview(ctx)
}

// TopDownloads exposes the ledger's most-downloaded listing.
func (s *Service) TopDownloads(ctx context.Context, limit int) ([]UsageRecord, error) {
	return s.ledger.TopDownloads(ctx, limit)
}

// StorageByType exposes the ledger's per-mimetype size breakdown.
func (s *Service) StorageByType(ctx context.Context) ([]MimeUsage, error) {
	return s.ledger.StorageByType(ctx)
}

// Disposition picks the Content-Disposition type for a media type: inline
// for the in-browser previewable families, attachment for everything else.
func Disposition(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"),
		strings.HasPrefix(contentType, "video/"),
		strings.HasPrefix(contentType, "audio/"),
		strings.HasPrefix(contentType, "application/pdf"):
		return "inline"
	default:
		return "attachment"
	}
}
