package shared

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

// PathID reads the {id} URL parameter.
func PathID(r *http.Request) (int64, error) {
	return ParseID(chi.URLParam(r, "id"))
}

// DecodeBody decodes a JSON request body, reporting malformed JSON as a
// validation error.
func DecodeBody(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return fmt.Errorf("malformed request body: %w", ErrValidation)
	}
	return nil
}

// RespondList writes a paginated list envelope.
func RespondList[T any](w http.ResponseWriter, items []T, filters ListFilters, total int) {
	if items == nil {
		items = []T{}
	}
	meta := filters.Meta(total)
	httpx.JSON(w, http.StatusOK, httpx.Envelope{Data: items, Meta: &meta})
}

// RespondItem writes a single entity envelope.
func RespondItem(w http.ResponseWriter, status int, item any) {
	httpx.JSON(w, status, httpx.Envelope{Data: item})
}

// Fail logs unexpected errors and writes the problem response.
func Fail(logger *slog.Logger, w http.ResponseWriter, msg string, err error, attrs ...any) {
	if httpx.StatusOf(err) >= http.StatusInternalServerError {
		logger.Error(msg, append(attrs, slog.Any("error", err))...)
	} else {
		logger.Debug(msg, append(attrs, slog.Any("error", err))...)
	}
	httpx.RespondError(w, err)
}
