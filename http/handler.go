package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/obaudys/filegate"
)

// multipartMemory caps how much of a multipart body is held in memory
// before spilling to temp files.
const multipartMemory = 32 << 20

type Service interface {
	Upload(ctx context.Context, in filegate.UploadInput, content io.Reader) (filegate.ObjectInfo, error)
	Open(ctx context.Context, key, rangeHeader string) (*filegate.Object, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Overview(ctx context.Context) (filegate.UsageOverview, error)
	TopDownloads(ctx context.Context, limit int) ([]filegate.UsageRecord, error)
	StorageByType(ctx context.Context) ([]filegate.MimeUsage, error)
}

type CORSConfig struct {
	Enabled          bool
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type HandlerConfig struct {
	// MaxUploadSize bounds the request body accepted on the upload route.
	// Zero disables the transport-level cap; the service still enforces its
	// own ceiling.
	MaxUploadSize int64
	// PresignExpiry is the lifetime of generated presigned URLs
	// (default 15 minutes).
	PresignExpiry time.Duration
	CORS          CORSConfig
	Logger        *slog.Logger
}

// Handler provides the HTTP surface of the gateway: upload, download,
// ranged streaming, deletion, presigned URLs and usage analytics.
type Handler struct {
	config  HandlerConfig
	service Service
	log     *slog.Logger
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = 15 * time.Minute
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		config:  cfg,
		service: service,
		log:     log,
	}
}

// Router returns an http.Handler with all gateway routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Use(RequestLogger(h.log))
	r.Use(MetricsMiddleware)

	r.Route("/file", func(r chi.Router) {
		r.Post("/upload", h.handleUpload)
		r.Post("/presigned-url", h.handlePresignedURL)
		r.Get("/download/*", h.handleDownload)
		r.Get("/stream/*", h.handleStream)
		r.Delete("/*", h.handleDelete)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/overview", h.handleOverview)
		r.Get("/top-downloads", h.handleTopDownloads)
		r.Get("/storage-by-type", h.handleStorageByType)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// objectKey extracts and decodes the object key trailing the given route
// prefix. Keys travel escaped in paths because they contain slashes of
// their own.
func objectKey(r *http.Request, prefix string) (string, error) {
	raw := strings.TrimPrefix(r.URL.EscapedPath(), prefix)
	key, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("decode object key: %w: %w", filegate.ErrInvalidInput, err)
	}
	return key, nil
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.config.MaxUploadSize > 0 {
		// Leave headroom for multipart framing around the file part.
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize+multipartMemory)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "upload_too_large", "Uploaded file exceeds the size limit")
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_input", "Request must be multipart/form-data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Multipart form must carry a 'file' field")
		return
	}
	defer func() { _ = file.Close() }()

	in := filegate.UploadInput{
		Name:         header.Filename,
		DeclaredMime: header.Header.Get("Content-Type"),
		Size:         header.Size,
	}

	info, err := h.service.Upload(r.Context(), in, file)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, info)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	key, err := objectKey(r, "/file/download/")
	if err != nil {
		HandleError(w, err)
		return
	}

	obj, err := h.service.Open(r.Context(), key, "")
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = obj.Content.Close() }()

	name := obj.Stat.OriginalName
	if name == "" {
		name = path.Base(key)
	}

	w.Header().Set("Content-Type", obj.Stat.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Stat.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, obj.Content)
	bytesServedTotal.WithLabelValues("download").Add(float64(n))
	if err != nil {
		h.log.Warn("download stream aborted", "key", key, "written", n, "err", err)
	}
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	key, err := objectKey(r, "/file/stream/")
	if err != nil {
		HandleError(w, err)
		return
	}

	obj, err := h.service.Open(r.Context(), key, r.Header.Get("Range"))
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = obj.Content.Close() }()

	name := obj.Stat.OriginalName
	if name == "" {
		name = path.Base(key)
	}

	w.Header().Set("Content-Type", obj.Stat.ContentType)
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", obj.Disposition, name))

	if obj.Window.Full {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Stat.Size, 10))
		w.WriteHeader(http.StatusOK)
	} else {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Window.Length(), 10))
		w.Header().Set("Content-Range", obj.Window.ContentRange(obj.Stat.Size))
		w.WriteHeader(http.StatusPartialContent)
	}

	n, err := io.Copy(w, obj.Content)
	bytesServedTotal.WithLabelValues("stream").Add(float64(n))
	if err != nil {
		h.log.Warn("stream aborted", "key", key, "written", n, "err", err)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	key, err := objectKey(r, "/file/")
	if err != nil {
		HandleError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), key); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}

type presignRequest struct {
	Filename string `json:"filename"`
}

type presignResponse struct {
	URL string `json:"url"`
}

func (h *Handler) handlePresignedURL(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Request body must be JSON with a 'filename' field")
		return
	}
	if req.Filename == "" {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Filename cannot be empty")
		return
	}

	u, err := h.service.PresignedURL(r.Context(), req.Filename, h.config.PresignExpiry)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, presignResponse{URL: u})
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, overview)
}

func (h *Handler) handleTopDownloads(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = max(1, min(100, parsed))
		}
	}

	records, err := h.service.TopDownloads(r.Context(), limit)
	if err != nil {
		HandleError(w, err)
		return
	}

	if records == nil {
		records = []filegate.UsageRecord{}
	}
	_ = WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleStorageByType(w http.ResponseWriter, r *http.Request) {
	usage, err := h.service.StorageByType(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}

	if usage == nil {
		usage = []filegate.MimeUsage{}
	}
	_ = WriteJSON(w, http.StatusOK, usage)
}
