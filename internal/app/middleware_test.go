package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-backoffice/internal/observability"
	_ "github.com/odyssey-erp/odyssey-backoffice/internal/testing/guard"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLatencyStopsOnCancelledRequest(t *testing.T) {
	called := false
	h := Latency(time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, called)
}

func TestLatencyIsSkippedInTestMode(t *testing.T) {
	require.True(t, InTestMode())
	base := MiddlewareStack(MiddlewareConfig{Logger: discardLogger(), Config: &ServerConfig{}})
	slow := MiddlewareStack(MiddlewareConfig{Logger: discardLogger(), Config: &ServerConfig{Latency: time.Second}})
	assert.Len(t, slow, len(base))
}

func TestRouterServesHealthAndSecurityHeaders(t *testing.T) {
	router := NewRouter(RouterParams{
		Logger:            discardLogger(),
		Config:            &ServerConfig{AppEnv: "test"},
		Metrics:           observability.NewMetrics(),
		DisableRequestLog: true,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backoffice_http_requests_total")
}

func TestRateLimitRejectsBurst(t *testing.T) {
	router := NewRouter(RouterParams{
		Logger:            discardLogger(),
		Config:            &ServerConfig{RateLimit: 2},
		DisableRequestLog: true,
	})
	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
