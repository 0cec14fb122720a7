package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	var p ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"not found", fmt.Errorf("branch 9: %w", ErrNotFound), http.StatusNotFound, "branch 9: resource not found"},
		{"conflict keeps message", fmt.Errorf("cannot delete the default branch: %w", ErrConflict), http.StatusConflict, "cannot delete the default branch"},
		{"duplicate", fmt.Errorf("code JKT already exists: %w", ErrDuplicate), http.StatusConflict, "code JKT already exists"},
		{"internal hides detail", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tt.err)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.detail, decodeProblem(t, rr).Detail)
		})
	}
}

func TestRespondErrorFieldErrors(t *testing.T) {
	err := fmt.Errorf("create branch: %w", FieldErrors{"name": "name is required"})
	assert.True(t, errors.Is(err, ErrValidation))

	rr := httptest.NewRecorder()
	RespondError(rr, err)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	p := decodeProblem(t, rr)
	assert.Equal(t, "name is required", p.Errors["name"])
	assert.Equal(t, "validation failed", p.Detail)
}

func TestFieldErrorsMessageIsSorted(t *testing.T) {
	err := FieldErrors{"name": "required", "code": "too long"}
	assert.Equal(t, "validation failed: code: too long; name: required", err.Error())
}
