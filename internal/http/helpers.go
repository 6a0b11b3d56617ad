package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-localization/internal/langfiles"
	"github.com/goliatone/go-localization/internal/overrides"
	"github.com/goliatone/go-localization/internal/runtimeconfig"
	"github.com/goliatone/go-localization/internal/validation"
)

type errorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message,omitempty"`
	Issues  []validation.ValidationIssue `json:"issues,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

var configurationErrors = []error{
	langfiles.ErrBaseLocaleMissing,
	langfiles.ErrUnknownCodec,
	runtimeconfig.ErrPathRequired,
	runtimeconfig.ErrBaseLocaleRequired,
	runtimeconfig.ErrFormatUnknown,
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.Trim(strings.TrimSpace(base), "/")
	trimmedSuffix := strings.Trim(strings.TrimSpace(suffix), "/")
	switch {
	case trimmedBase == "" && trimmedSuffix == "":
		return "/"
	case trimmedBase == "":
		return "/" + trimmedSuffix
	case trimmedSuffix == "":
		return "/" + trimmedBase
	default:
		return "/" + trimmedBase + "/" + trimmedSuffix
	}
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func writeUnavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable", Message: "overrides are disabled"})
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if errors.Is(err, validation.ErrValidation) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  validation.Issues(err),
		}
	}

	if errors.Is(err, overrides.ErrOverrideNotFound) || errors.Is(err, langfiles.ErrFileNotFound) {
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	}

	if errors.Is(err, langfiles.ErrInvalidName) {
		return http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()}
	}

	if errors.Is(err, overrides.ErrRepositoryRequired) {
		return http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable", Message: err.Error()}
	}

	for _, target := range configurationErrors {
		if errors.Is(err, target) {
			return http.StatusInternalServerError, errorResponse{Error: "configuration_error", Message: err.Error()}
		}
	}

	if errors.Is(err, langfiles.ErrWriteFailed) {
		return http.StatusInternalServerError, errorResponse{Error: "io_error", Message: err.Error()}
	}

	if overrides.IsPersistenceError(err) {
		return http.StatusInternalServerError, errorResponse{Error: "persistence_error", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("id is required")
	}
	return uuid.Parse(trimmed)
}
