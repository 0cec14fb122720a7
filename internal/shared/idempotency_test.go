package shared

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, time.Hour), mr
}

func TestCheckAndInsert(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "k1", "branches"))
	assert.ErrorIs(t, store.CheckAndInsert(ctx, "k1", "branches"), ErrIdempotencyConflict)
	assert.NoError(t, store.CheckAndInsert(ctx, "k1", "products"), "keys are per module")

	assert.Error(t, store.CheckAndInsert(ctx, "", "branches"))
	assert.Error(t, store.CheckAndInsert(ctx, "k2", ""))

	mr.FastForward(2 * time.Hour)
	assert.NoError(t, store.CheckAndInsert(ctx, "k1", "branches"), "expired keys are reusable")
}

func TestDeleteReleasesKey(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "k", "customers"))
	require.NoError(t, store.Delete(ctx, "k", "customers"))
	assert.NoError(t, store.CheckAndInsert(ctx, "k", "customers"))
}

func TestIdempotentMiddleware(t *testing.T) {
	store, _ := newStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	replays := 0
	status := http.StatusCreated

	handler := Idempotent(store, "branches", logger, func() { replays++ })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

	post := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/branches", nil)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusCreated, post("a"))
	assert.Equal(t, http.StatusConflict, post("a"))
	assert.Equal(t, 1, replays)

	assert.Equal(t, http.StatusCreated, post(""))
	assert.Equal(t, http.StatusCreated, post(""), "requests without a key are never deduplicated")

	status = http.StatusUnprocessableEntity
	assert.Equal(t, http.StatusUnprocessableEntity, post("b"))
	status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, post("b"), "failed attempts release the key")
}

func TestIdempotentWithoutStorePassesThrough(t *testing.T) {
	called := 0
	handler := Idempotent(nil, "branches", slog.Default(), nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called++ }))

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/branches", nil)
		req.Header.Set(IdempotencyHeader, "same")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, called)
}
