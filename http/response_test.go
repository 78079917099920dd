package http_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obaudys/filegate"
	gatehttp "github.com/obaudys/filegate/http"
)

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", filegate.ErrNotFound, http.StatusNotFound, "not_found"},
		{"invalid content", filegate.ErrInvalidContent, http.StatusUnprocessableEntity, "invalid_content"},
		{"range not satisfiable", filegate.ErrRangeNotSatisfiable, http.StatusRequestedRangeNotSatisfiable, "range_not_satisfiable"},
		{"oversize upload", filegate.ErrOversizeUpload, http.StatusRequestEntityTooLarge, "upload_too_large"},
		{"invalid input", filegate.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{"unknown error", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
		{"wrapped sentinel", fmt.Errorf("open object x: %w", filegate.ErrNotFound), http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			gatehttp.HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	err := gatehttp.WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}
