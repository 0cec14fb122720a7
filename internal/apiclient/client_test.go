package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-backoffice/internal/listing"
)

type widget struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (w widget) ResourceID() int64 { return w.ID }

type widgetPayload struct {
	Name string `json:"name"`
}

type recorder struct {
	mu       sync.Mutex
	queries  []url.Values
	headers  []http.Header
	payloads []map[string]any
}

func (r *recorder) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, req.URL.Query())
	r.headers = append(r.headers, req.Header.Clone())
	if req.Body != nil && req.ContentLength != 0 {
		var body map[string]any
		_ = json.NewDecoder(req.Body).Decode(&body)
		r.payloads = append(r.payloads, body)
	}
}

func (r *recorder) last() (url.Values, http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries[len(r.queries)-1], r.headers[len(r.headers)-1]
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestResource(t *testing.T, routes func(chi.Router, *recorder)) (*Resource[widget, widgetPayload], *recorder) {
	t.Helper()
	rec := &recorder{}
	r := chi.NewRouter()
	routes(r, rec)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL + "/api/v1", Token: "secret", Timeout: time.Second})
	require.NoError(t, err)
	return NewResource[widget, widgetPayload](client, "/widgets", "branch_id"), rec
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
	_, err = New(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
	_, err = New(Config{BaseURL: "http://127.0.0.1:8080/api/v1"})
	assert.NoError(t, err)
}

func TestListSendsQueryParameters(t *testing.T) {
	res, rec := newTestResource(t, func(r chi.Router, rec *recorder) {
		r.Get("/api/v1/widgets", func(w http.ResponseWriter, req *http.Request) {
			rec.record(req)
			writeJSON(w, http.StatusOK, `{"data":[],"meta":{"current_page":2,"last_page":2,"per_page":25,"total":30}}`)
		})
	})

	_, err := res.List(context.Background(), listing.Query{
		Search:   "kopi",
		Scope:    "3",
		Filters:  map[string]string{"status": "active", "category_id": "4"},
		Page:     2,
		PageSize: 25,
	})
	require.NoError(t, err)

	query, header := rec.last()
	assert.Equal(t, "kopi", query.Get("search"))
	assert.Equal(t, "3", query.Get("branch_id"))
	assert.Equal(t, "active", query.Get("status"))
	assert.Equal(t, "4", query.Get("category_id"))
	assert.Equal(t, "2", query.Get("page"))
	assert.Equal(t, "25", query.Get("per_page"))
	assert.Equal(t, "Bearer secret", header.Get("Authorization"))
}

func TestListOmitsEmptyScopeAndSearch(t *testing.T) {
	res, rec := newTestResource(t, func(r chi.Router, rec *recorder) {
		r.Get("/api/v1/widgets", func(w http.ResponseWriter, req *http.Request) {
			rec.record(req)
			writeJSON(w, http.StatusOK, `[]`)
		})
	})

	_, err := res.List(context.Background(), listing.Query{Page: 1, PageSize: 10})
	require.NoError(t, err)

	query, _ := rec.last()
	assert.False(t, query.Has("search"))
	assert.False(t, query.Has("branch_id"))
	assert.Equal(t, "1", query.Get("page"))
}

func TestDecodePageShapes(t *testing.T) {
	t.Run("legacy bare array", func(t *testing.T) {
		res, err := DecodePage[widget]([]byte(`[{"id":1},{"id":2},{"id":3},{"id":4},{"id":5},{"id":6},{"id":7}]`))
		require.NoError(t, err)
		assert.Len(t, res.Items, 7)
		assert.Equal(t, 1, res.CurrentPage)
		assert.Equal(t, 1, res.LastPage)
		assert.Equal(t, 7, res.PerPage)
		assert.Equal(t, 7, res.Total)
	})

	t.Run("nested meta", func(t *testing.T) {
		res, err := DecodePage[widget]([]byte(`{"data":[{"id":11,"name":"b"},{"id":12,"name":"a"}],"meta":{"current_page":2,"last_page":3,"per_page":10,"total":22}}`))
		require.NoError(t, err)
		assert.Equal(t, []widget{{ID: 11, Name: "b"}, {ID: 12, Name: "a"}}, res.Items)
		assert.Equal(t, 2, res.CurrentPage)
		assert.Equal(t, 3, res.LastPage)
		assert.Equal(t, 10, res.PerPage)
		assert.Equal(t, 22, res.Total)
	})

	t.Run("flat envelope", func(t *testing.T) {
		res, err := DecodePage[widget]([]byte(`{"data":[{"id":1}],"current_page":1,"last_page":4,"per_page":1,"total":4}`))
		require.NoError(t, err)
		assert.Equal(t, 4, res.LastPage)
		assert.Equal(t, 4, res.Total)
	})

	t.Run("envelope without pagination", func(t *testing.T) {
		res, err := DecodePage[widget]([]byte(`{"data":[{"id":1},{"id":2}]}`))
		require.NoError(t, err)
		assert.Equal(t, listing.SinglePage([]widget{{ID: 1}, {ID: 2}}), res)
	})

	t.Run("null data", func(t *testing.T) {
		res, err := DecodePage[widget]([]byte(`{"data":null,"meta":{"current_page":1,"last_page":1,"per_page":10,"total":0}}`))
		require.NoError(t, err)
		assert.Empty(t, res.Items)
		assert.True(t, res.IsEmpty())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := DecodePage[widget]([]byte(`<html>`))
		assert.Error(t, err)
	})
}

func TestAllWalksPages(t *testing.T) {
	res, _ := newTestResource(t, func(r chi.Router, rec *recorder) {
		r.Get("/api/v1/widgets", func(w http.ResponseWriter, req *http.Request) {
			switch req.URL.Query().Get("page") {
			case "1":
				writeJSON(w, http.StatusOK, `{"data":[{"id":1}],"meta":{"current_page":1,"last_page":2,"per_page":1,"total":2}}`)
			default:
				writeJSON(w, http.StatusOK, `{"data":[{"id":2}],"meta":{"current_page":2,"last_page":2,"per_page":1,"total":2}}`)
			}
		})
	})

	items, err := res.All(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []widget{{ID: 1}, {ID: 2}}, items)
}

func TestCreateSendsIdempotencyKey(t *testing.T) {
	res, rec := newTestResource(t, func(r chi.Router, rec *recorder) {
		r.Post("/api/v1/widgets", func(w http.ResponseWriter, req *http.Request) {
			rec.record(req)
			writeJSON(w, http.StatusCreated, `{"data":{"id":9,"name":"teh"}}`)
		})
	})

	created, err := res.Create(context.Background(), widgetPayload{Name: "teh"})
	require.NoError(t, err)
	assert.Equal(t, widget{ID: 9, Name: "teh"}, created)

	_, header := rec.last()
	assert.NotEmpty(t, header.Get(IdempotencyHeader))
	assert.Equal(t, "teh", rec.payloads[0]["name"])
}

func TestUpdateAcceptsBareObject(t *testing.T) {
	res, _ := newTestResource(t, func(r chi.Router, rec *recorder) {
		r.Put("/api/v1/widgets/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, `{"id":`+chi.URLParam(req, "id")+`,"name":"renamed"}`)
		})
	})

	updated, err := res.Update(context.Background(), 5, widgetPayload{Name: "renamed"})
	require.NoError(t, err)
	assert.Equal(t, widget{ID: 5, Name: "renamed"}, updated)
}

func TestErrorTaxonomy(t *testing.T) {
	res, _ := newTestResource(t, func(r chi.Router, rec *recorder) {
		r.Post("/api/v1/widgets", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, `{"title":"Validation Failed","status":422,"detail":"validation failed","errors":{"name":"name is required","code":["code is too long"]}}`)
		})
		r.Delete("/api/v1/widgets/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusConflict, `{"title":"Conflict","status":409,"detail":"cannot delete the default branch"}`)
		})
		r.Get("/api/v1/widgets/{id}", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		r.Put("/api/v1/widgets/{id}", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"message":"bad payload"}`)
		})
	})
	ctx := context.Background()

	_, err := res.Create(ctx, widgetPayload{})
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "name is required", valErr.Field("name"))
	assert.Equal(t, "code is too long", valErr.Field("code"))
	assert.Equal(t, "validation failed (code: code is too long; name: name is required)", UserMessage(err))

	err = res.Delete(ctx, 1)
	var srvErr *ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusConflict, srvErr.Status)
	assert.Equal(t, "cannot delete the default branch", UserMessage(err))

	_, err = res.Get(ctx, 404)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Not Found", UserMessage(err))

	_, err = res.Update(ctx, 1, widgetPayload{})
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, "bad payload", srvErr.Message)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client, err := New(Config{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)
	res := NewResource[widget, widgetPayload](client, "/widgets", "")

	_, err = res.List(context.Background(), listing.Query{Page: 1, PageSize: 10})
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.MethodGet, netErr.Method)
	assert.Contains(t, UserMessage(err), "cannot reach the server")
}

func TestListHonoursContextCancellation(t *testing.T) {
	release := make(chan struct{})
	res, _ := newTestResource(t, func(r chi.Router, rec *recorder) {
		r.Get("/api/v1/widgets", func(w http.ResponseWriter, req *http.Request) {
			select {
			case <-release:
			case <-req.Context().Done():
			}
		})
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := res.List(ctx, listing.Query{Page: 1, PageSize: 10})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRetryConditionOnlyRetriesReads(t *testing.T) {
	var calls int
	var mu sync.Mutex
	r := chi.NewRouter()
	r.Get("/widgets", func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, `[]`)
	})
	r.Post("/widgets", func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL, Retries: 2, Timeout: time.Second})
	require.NoError(t, err)
	res := NewResource[widget, widgetPayload](client, "/widgets", "")

	_, err = res.List(context.Background(), listing.Query{Page: 1, PageSize: 10})
	require.NoError(t, err)

	mu.Lock()
	calls = 0
	mu.Unlock()
	_, err = res.Create(context.Background(), widgetPayload{Name: "x"})
	var srvErr *ServerError
	require.ErrorAs(t, err, &srvErr)
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}
