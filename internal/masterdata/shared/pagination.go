package shared

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

// ListFilters represents standard list page filters
type ListFilters struct {
	Page     int
	Limit    int
	Search   string
	SortBy   string
	SortDir  string
	IsActive *bool

	// Entity specific filters
	BranchID   *int64
	CategoryID *int64
	Type       string
}

// ParseListFilters reads the list query string. Malformed numbers are
// validation errors so a client bug does not silently show page one.
func ParseListFilters(r *http.Request) (ListFilters, error) {
	q := r.URL.Query()
	filters := ListFilters{
		Page:    DefaultPage,
		Limit:   DefaultLimit,
		Search:  strings.TrimSpace(q.Get("search")),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
		Type:    q.Get("type"),
	}
	fields := httpx.FieldErrors{}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			fields["page"] = "page must be a positive integer"
		} else {
			filters.Page = page
		}
	}
	limit := q.Get("per_page")
	if limit == "" {
		limit = q.Get("limit")
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 || n > MaxLimit {
			fields["per_page"] = fmt.Sprintf("per_page must be between 1 and %d", MaxLimit)
		} else {
			filters.Limit = n
		}
	}
	switch q.Get("status") {
	case "":
	case StatusActive:
		filters.IsActive = boolPtr(true)
	case StatusInactive:
		filters.IsActive = boolPtr(false)
	default:
		fields["status"] = "status must be active or inactive"
	}
	if id, ok, err := optionalID(q.Get("branch_id")); err != nil {
		fields["branch_id"] = err.Error()
	} else if ok {
		filters.BranchID = &id
	}
	if id, ok, err := optionalID(q.Get("category_id")); err != nil {
		fields["category_id"] = err.Error()
	} else if ok {
		filters.CategoryID = &id
	}

	if len(fields) > 0 {
		return filters, fields
	}
	return filters, nil
}

// Offset returns the row offset for the current page.
func (f ListFilters) Offset() int {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Meta builds the response pagination block for total matching rows.
func (f ListFilters) Meta(total int) httpx.Meta {
	last := 1
	if f.Limit > 0 && total > 0 {
		last = (total + f.Limit - 1) / f.Limit
	}
	return httpx.Meta{CurrentPage: f.Page, LastPage: last, PerPage: f.Limit, Total: total}
}

// Window slices items to the current page.
func Window[T any](items []T, f ListFilters) []T {
	start := f.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := len(items)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return items[start:end]
}

// MatchesSearch reports whether any field contains the search term,
// ignoring case.
func MatchesSearch(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// ParseID parses a path identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

func optionalID(raw string) (int64, bool, error) {
	if raw == "" {
		return 0, false, nil
	}
	id, err := ParseID(raw)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func boolPtr(v bool) *bool { return &v }
