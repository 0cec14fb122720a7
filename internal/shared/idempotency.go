package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

// IdempotencyHeader is the request header carrying the client key.
const IdempotencyHeader = "Idempotency-Key"

// ErrIdempotencyConflict indicates a duplicate key.
var ErrIdempotencyConflict = errors.New("idempotent request already processed")

// IdempotencyStore records processed keys in Redis.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewIdempotencyStore constructs the store. Keys expire after ttl.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl, prefix: "idempotency"}
}

func (s *IdempotencyStore) key(module, key string) string {
	return s.prefix + ":" + module + ":" + key
}

// CheckAndInsert ensures key uniqueness per module.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, key, module string) error {
	if s == nil || s.client == nil {
		return errors.New("idempotency store not initialised")
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	if module == "" {
		return errors.New("idempotency module required")
	}
	ok, err := s.client.SetNX(ctx, s.key(module, key), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("idempotency: setnx: %w", err)
	}
	if !ok {
		return ErrIdempotencyConflict
	}
	return nil
}

// Delete removes a key, typically used to roll back failed processing.
func (s *IdempotencyStore) Delete(ctx context.Context, key, module string) error {
	if s == nil || s.client == nil {
		return nil
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	return s.client.Del(ctx, s.key(module, key)).Err()
}

// Idempotent guards POST requests carrying an Idempotency-Key. A replayed key
// is answered with 409. When the handler fails the key is released so the
// client may retry with it. Requests without a key pass through.
func Idempotent(store *IdempotencyStore, module string, logger *slog.Logger, onReplay func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			err := store.CheckAndInsert(r.Context(), key, module)
			switch {
			case errors.Is(err, ErrIdempotencyConflict):
				if onReplay != nil {
					onReplay()
				}
				httpx.Problem(w, http.StatusConflict, "Conflict", "this request was already submitted")
				return
			case err != nil:
				// Redis trouble should not block writes in development.
				logger.Warn("idempotency check skipped", slog.String("module", module), slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.status >= http.StatusBadRequest {
				if err := store.Delete(context.WithoutCancel(r.Context()), key, module); err != nil {
					logger.Warn("idempotency release failed", slog.String("module", module), slog.Any("error", err))
				}
			}
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
