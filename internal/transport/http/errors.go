package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
	"github.com/KaramelBytes/assetboard-cli/internal/session"
)

// APIError is the JSON error body of every failed request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code, msg string) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: msg}
}

func errInvalidRequest(msg string) *APIError {
	return newAPIError(http.StatusBadRequest, "INVALID_REQUEST", msg)
}

// apiError maps domain errors onto HTTP responses.
func apiError(err error) *APIError {
	var ae *APIError
	var ie *asset.IngestionError
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.As(err, &ie):
		e := newAPIError(http.StatusUnprocessableEntity, "INGESTION_FAILED", ie.Error())
		e.Details = map[string]string{"source": ie.Source, "reason": ie.Reason}
		return e
	case errors.Is(err, asset.ErrIngestionFailed):
		return newAPIError(http.StatusUnprocessableEntity, "INGESTION_FAILED", err.Error())
	case errors.Is(err, session.ErrNotFound):
		return newAPIError(http.StatusNotFound, "DATASET_NOT_FOUND", err.Error())
	case errors.Is(err, asset.ErrExportFailed):
		return newAPIError(http.StatusInternalServerError, "EXPORT_FAILED", err.Error())
	}
	return newAPIError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
