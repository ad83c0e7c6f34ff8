package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-portfolio/internal/auth"
	"github.com/goliatone/go-portfolio/internal/sections"
	"github.com/goliatone/go-portfolio/internal/validation"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

const internalErrorDetail = "Internal server error"

type errorResponse struct {
	Detail string `json:"detail"`
}

// badRequestError carries a client facing 400 message.
type badRequestError struct {
	detail string
}

func (e *badRequestError) Error() string { return e.detail }

func badRequest(detail string) error {
	return &badRequestError{detail: detail}
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

// decodeJSON reads at most maxBytes of body, validates it against schema and
// decodes it into target.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, schema *validation.Schema, target any) error {
	if r == nil || r.Body == nil {
		return badRequest("request body is required")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return badRequest("request body is required")
	}

	var generic any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return badRequest("request body must be valid JSON")
	}
	if err := schema.Validate(generic); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return badRequest("request body must be valid JSON")
	}
	return nil
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
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

// writeError maps err to a status and detail. Server side failures are
// logged with the request context and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, logger interfaces.Logger, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithContext(r.Context()).Error("http.request.failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Detail: internalErrorDetail}
	}

	if errors.Is(err, auth.ErrUnauthorized) {
		return http.StatusUnauthorized, errorResponse{Detail: "Not authenticated"}
	}
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return http.StatusUnauthorized, errorResponse{Detail: "Invalid username or password"}
	}
	if errors.Is(err, auth.ErrTooManyAttempts) {
		return http.StatusTooManyRequests, errorResponse{Detail: "Too many login attempts, try again later"}
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge, errorResponse{Detail: "Request body too large"}
	}

	var bad *badRequestError
	if errors.As(err, &bad) {
		return http.StatusBadRequest, errorResponse{Detail: bad.detail}
	}
	if errors.Is(err, validation.ErrSchemaValidation) {
		return http.StatusBadRequest, errorResponse{Detail: err.Error()}
	}

	switch {
	case errors.Is(err, sections.ErrInvalidPage):
		return http.StatusBadRequest, errorResponse{Detail: "Invalid page"}
	case errors.Is(err, sections.ErrInvalidKey):
		return http.StatusBadRequest, errorResponse{Detail: "Invalid section key"}
	case errors.Is(err, sections.ErrTitleRequired):
		return http.StatusBadRequest, errorResponse{Detail: "title is required"}
	case errors.Is(err, sections.ErrSectionExists):
		return http.StatusConflict, errorResponse{Detail: "Section already exists"}
	case errors.Is(err, sections.ErrSectionNotFound):
		return http.StatusNotFound, errorResponse{Detail: "Section not found"}
	}

	return http.StatusInternalServerError, errorResponse{Detail: internalErrorDetail}
}
