// Package http provides the REST surface of the filegate gateway.
//
// # Endpoints
//
//   - POST /file/upload: multipart upload (field "file"), validated by
//     content sniffing and capped at the configured ceiling
//   - GET /file/download/{key}: full object with attachment disposition
//   - GET /file/stream/{key}: full or partial content honoring a single
//     Range header, with inline disposition for previewable media
//   - DELETE /file/{key}: idempotent delete, success-shaped even when the
//     key is already gone
//   - POST /file/presigned-url: time-limited direct URL from the object store
//   - GET /analytics/...: usage ledger aggregates
//   - GET /metrics: Prometheus metrics
//
// Object keys contain slashes, so key-addressed routes capture the rest of
// the path and accept percent-encoded keys as well.
//
// Errors are returned as JSON {"error", "message"} bodies; the mapping from
// the gateway's sentinel errors to status codes lives in HandleError.
package http
