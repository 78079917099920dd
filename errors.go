package filegate

import "errors"

var (
	// ErrNotFound is returned when an object is absent from the store
	ErrNotFound = errors.New("not found")
	// ErrInvalidContent is returned when the sniffed media type is not allow-listed
	ErrInvalidContent = errors.New("invalid content")
	// ErrRangeNotSatisfiable is returned when a byte range cannot be served
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
	// ErrOversizeUpload is returned when an upload exceeds the configured ceiling
	ErrOversizeUpload = errors.New("upload too large")
	// ErrStorage is returned when an object store operation fails
	ErrStorage = errors.New("storage failure")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
