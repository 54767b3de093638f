package httpx

import (
	"errors"
	"net/http"
	"strings"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("conflicting entry")
	ErrValidation = errors.New("validation failed")
	ErrDependency = errors.New("upstream dependency failed")
)

// FieldError describes a single violated check on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every violated check for a request. Callers
// receive the full list, never a partial report.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unexpected errors surface as an opaque 500 with no internal detail.
func RespondError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		ProblemWithErrors(w, http.StatusBadRequest, "Validation Failed", verr.Fields)
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrDependency):
		Problem(w, http.StatusBadGateway, "Dependency Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
