// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// FieldErrors carries per-field validation messages. It matches ErrValidation.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match field errors.
func (e FieldErrors) Is(target error) bool { return target == ErrValidation }

// RespondError maps domain errors to HTTP responses using RFC7807. Conflict
// and duplicate details are the wrapped message so clients can show it as is.
func RespondError(w http.ResponseWriter, err error) {
	var fields FieldErrors
	switch {
	case errors.As(err, &fields):
		ValidationProblem(w, fields)
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", Detail(err, ErrDuplicate))
	case errors.Is(err, ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", Detail(err, ErrConflict))
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// StatusOf returns the status RespondError would write for err.
func StatusOf(err error) int {
	var fields FieldErrors
	switch {
	case errors.As(err, &fields):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Detail strips the ": <sentinel>" suffix added by fmt.Errorf("%s: %w").
func Detail(err, sentinel error) string {
	msg := err.Error()
	if trimmed, ok := strings.CutSuffix(msg, ": "+sentinel.Error()); ok {
		return trimmed
	}
	return msg
}
