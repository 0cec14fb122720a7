package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/odyssey-erp/odyssey-backoffice/internal/listing"
)

// Query parameter names understood by the API.
const (
	ParamSearch  = "search"
	ParamPage    = "page"
	ParamPerPage = "per_page"
)

// maxPerPage is the largest page the API serves; All pages through with it.
const maxPerPage = 100

// Resource is a typed endpoint for one entity. T is the entity and P the
// create/update payload.
type Resource[T listing.Resource, P any] struct {
	client     *Client
	path       string
	scopeParam string
}

// NewResource binds a resource path such as "/branches". scopeParam names the
// query parameter that carries the listing scope; empty for unscoped resources.
func NewResource[T listing.Resource, P any](client *Client, path, scopeParam string) *Resource[T, P] {
	return &Resource[T, P]{client: client, path: path, scopeParam: scopeParam}
}

// Path returns the collection path.
func (r *Resource[T, P]) Path() string { return r.path }

// ScopeParam returns the scope query parameter name.
func (r *Resource[T, P]) ScopeParam() string { return r.scopeParam }

// Params encodes q as API query parameters.
func (r *Resource[T, P]) Params(q listing.Query) url.Values {
	params := url.Values{}
	if q.Search != "" {
		params.Set(ParamSearch, q.Search)
	}
	for _, k := range q.FilterKeys() {
		params.Set(k, q.Filters[k])
	}
	if r.scopeParam != "" && q.Scope != "" {
		params.Set(r.scopeParam, q.Scope)
	}
	page := q.Page
	if page < 1 {
		page = listing.DefaultPage
	}
	params.Set(ParamPage, strconv.Itoa(page))
	if q.PageSize > 0 {
		params.Set(ParamPerPage, strconv.Itoa(q.PageSize))
	}
	return params
}

// List fetches one page. It implements listing.Fetcher.
func (r *Resource[T, P]) List(ctx context.Context, q listing.Query) (listing.PageResult[T], error) {
	body, err := r.client.do(ctx, request{method: http.MethodGet, path: r.path, params: r.Params(q)})
	if err != nil {
		return listing.PageResult[T]{}, err
	}
	res, err := DecodePage[T](body)
	if err != nil {
		return listing.PageResult[T]{}, fmt.Errorf("apiclient: decode %s: %w", r.path, err)
	}
	return res, nil
}

// All walks every page for scope and returns the concatenated items.
func (r *Resource[T, P]) All(ctx context.Context, scope string) ([]T, error) {
	q := listing.Query{Scope: scope, Page: 1, PageSize: maxPerPage}
	var out []T
	for {
		res, err := r.List(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
		if res.CurrentPage >= res.LastPage || len(res.Items) == 0 {
			return out, nil
		}
		q = q.WithPage(res.CurrentPage + 1)
	}
}

// Get fetches one entity.
func (r *Resource[T, P]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	body, err := r.client.do(ctx, request{method: http.MethodGet, path: r.itemPath(id)})
	if err != nil {
		return zero, err
	}
	return decodeOne[T](body)
}

// Create posts a new entity with a fresh idempotency key.
func (r *Resource[T, P]) Create(ctx context.Context, payload P) (T, error) {
	var zero T
	body, err := r.client.do(ctx, request{
		method: http.MethodPost,
		path:   r.path,
		body:   payload,
		header: map[string]string{IdempotencyHeader: newIdempotencyKey()},
	})
	if err != nil {
		return zero, err
	}
	return decodeOne[T](body)
}

// Update replaces the editable fields of an entity.
func (r *Resource[T, P]) Update(ctx context.Context, id int64, payload P) (T, error) {
	var zero T
	body, err := r.client.do(ctx, request{method: http.MethodPut, path: r.itemPath(id), body: payload})
	if err != nil {
		return zero, err
	}
	return decodeOne[T](body)
}

// Delete removes an entity. Business rule rejections come back as *ServerError.
func (r *Resource[T, P]) Delete(ctx context.Context, id int64) error {
	_, err := r.client.do(ctx, request{method: http.MethodDelete, path: r.itemPath(id)})
	return err
}

func (r *Resource[T, P]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

type pageMeta struct {
	CurrentPage *int `json:"current_page"`
	LastPage    *int `json:"last_page"`
	PerPage     *int `json:"per_page"`
	Total       *int `json:"total"`
}

func (m pageMeta) present() bool {
	return m.CurrentPage != nil || m.LastPage != nil || m.PerPage != nil || m.Total != nil
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *pageMeta       `json:"meta"`
	pageMeta
}

// DecodePage decodes a list response. Three shapes are accepted: a bare
// array, a flat envelope with the pagination fields next to data, and an
// envelope with a nested meta object.
func DecodePage[T any](body []byte) (listing.PageResult[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return listing.PageResult[T]{}, err
		}
		return listing.SinglePage(items), nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return listing.PageResult[T]{}, err
	}
	var items []T
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return listing.PageResult[T]{}, err
		}
	}
	if items == nil {
		items = []T{}
	}

	meta := env.pageMeta
	if env.Meta != nil && env.Meta.present() {
		meta = *env.Meta
	}
	if !meta.present() {
		return listing.SinglePage(items), nil
	}
	res := listing.PageResult[T]{
		Items:       items,
		CurrentPage: deref(meta.CurrentPage, 1),
		LastPage:    deref(meta.LastPage, 1),
		PerPage:     deref(meta.PerPage, len(items)),
		Total:       deref(meta.Total, len(items)),
	}
	return res.Normalize(), nil
}

func decodeOne[T any](body []byte) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return out, nil
	}
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err == nil && len(wrapped.Data) > 0 && wrapped.Data[0] == '{' {
		trimmed = wrapped.Data
	}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, fmt.Errorf("apiclient: decode entity: %w", err)
	}
	return out, nil
}

func deref(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
