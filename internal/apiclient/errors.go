package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// NetworkError is a transport failure: the request never produced an HTTP response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the request ran out of time.
func (e *NetworkError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// ServerError is a non-2xx response carrying a message for the user.
type ServerError struct {
	Status  int
	Title   string
	Message string
}

func (e *ServerError) Error() string { return e.Message }

// ValidationError is a 4xx response with field-level messages.
type ValidationError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Field returns the message for one field.
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

// UserMessage renders err for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		netErr *NetworkError
		srvErr *ServerError
		valErr *ValidationError
	)
	switch {
	case errors.As(err, &valErr):
		return valErr.Error()
	case errors.As(err, &srvErr):
		return srvErr.Message
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return "the server took too long to answer"
		}
		return "cannot reach the server: " + netErr.Err.Error()
	default:
		return err.Error()
	}
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var srvErr *ServerError
	return errors.As(err, &srvErr) && srvErr.Status == http.StatusNotFound
}
