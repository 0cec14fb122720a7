package branches

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

func newTestServer(t *testing.T) (*httptest.Server, *Service) {
	t.Helper()
	svc := NewService(NewMemoryRepository())
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, nil)
	r := chi.NewRouter()
	r.Route("/branches", h.MountRoutes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func send(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHandlerCreateAndList(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := send(t, http.MethodPost, srv.URL+"/branches", `{"code":"jkt","name":"Jakarta","city":"Jakarta"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created struct{ Data Branch }
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "JKT", created.Data.Code)

	resp, body = send(t, http.MethodGet, srv.URL+"/branches?per_page=25&search=jak", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Data []Branch
		Meta httpx.Meta
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list.Data, 1)
	assert.Equal(t, httpx.Meta{CurrentPage: 1, LastPage: 1, PerPage: 25, Total: 1}, list.Meta)
}

func TestHandlerValidationProblem(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := send(t, http.MethodPost, srv.URL+"/branches", `{"name":""}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var p httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "code is required", p.Errors["code"])
	assert.Equal(t, "name is required", p.Errors["name"])
}

func TestHandlerDeleteDefaultBranch(t *testing.T) {
	srv, _ := newTestServer(t)
	_, body := send(t, http.MethodPost, srv.URL+"/branches", `{"code":"JKT","name":"Jakarta"}`)
	var created struct{ Data Branch }
	require.NoError(t, json.Unmarshal(body, &created))

	resp, body := send(t, http.MethodDelete, srv.URL+"/branches/"+jsonID(created.Data.ID), "")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var p httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Equal(t, "cannot delete the default branch", p.Detail)
}

func TestHandlerBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := send(t, http.MethodGet, srv.URL+"/branches/abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = send(t, http.MethodGet, srv.URL+"/branches/42", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = send(t, http.MethodGet, srv.URL+"/branches?per_page=500", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = send(t, http.MethodPost, srv.URL+"/branches", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerUpdateAndDelete(t *testing.T) {
	srv, _ := newTestServer(t)
	send(t, http.MethodPost, srv.URL+"/branches", `{"code":"JKT","name":"Jakarta"}`)
	_, body := send(t, http.MethodPost, srv.URL+"/branches", `{"code":"BDG","name":"Bandung","is_active":true}`)
	var created struct{ Data Branch }
	require.NoError(t, json.Unmarshal(body, &created))
	url := srv.URL + "/branches/" + jsonID(created.Data.ID)

	resp, body := send(t, http.MethodPut, url, `{"code":"BDG","name":"Bandung Kota","is_active":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = send(t, http.MethodDelete, url, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = send(t, http.MethodGet, url, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
