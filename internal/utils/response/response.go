// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler sends JSON back to the client (the roster export is the
// one exception). Centralising the header/status/encode sequence here
// keeps error bodies identical across the API:
//
//	{ "status": "error", "error": "field Age must be at most 120" }
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/queryset-api/internal/query"
	"github.com/aanand-mishra/queryset-api/internal/storage"
)

// Response is the envelope returned for error cases.
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error"`  // human-readable error detail
}

// Status string constants — use these instead of raw string literals so
// a typo is caught by the compiler.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes data as JSON with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// StatusFor maps an error from the storage or query layers to an HTTP
// status:
//
//	storage.ErrNotFound       → 404
//	storage.ErrCourseMissing  → 400 (the client named a course that is gone)
//	query.ErrUnknownField     → 400
//	anything else             → 500
func StatusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrCourseMissing),
		errors.Is(err, query.ErrUnknownField),
		errors.Is(err, query.ErrFieldType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err with the status StatusFor picks for it.
func Fail(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), GeneralError(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts the validator's per-field errors into a single
// human-readable Response, one sentence per failing field joined by ", ".
//
//	{ "status": "error", "error": "field Name is required, field Age must be at least 1" }
//
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		// numbers are bounded, strings are length-limited
		case "min":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at least %s", e.Field(), e.Param()))
		case "max":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at most %s", e.Field(), e.Param()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}
