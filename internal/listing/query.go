// Package listing implements the scoped, filtered, paginated list controller
// shared by every back-office screen.
package listing

import (
	"maps"
	"slices"
)

// Default pagination settings.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// DefaultPageSizes lists the page sizes offered by the screens.
var DefaultPageSizes = []int{10, 25, 50, 100}

// Query holds the parameters that determine what the server returns.
// A dispatched Query is never mutated; use the With* helpers to derive a new one.
type Query struct {
	Search   string
	Scope    string
	Filters  map[string]string
	Page     int
	PageSize int
}

// Clone returns a deep copy of q.
func (q Query) Clone() Query {
	out := q
	if q.Filters != nil {
		out.Filters = maps.Clone(q.Filters)
	}
	return out
}

// Equal reports whether q and other ask the server for the same page.
func (q Query) Equal(other Query) bool {
	if q.Search != other.Search || q.Scope != other.Scope || q.Page != other.Page || q.PageSize != other.PageSize {
		return false
	}
	if len(q.Filters) != len(other.Filters) {
		return false
	}
	for k, v := range q.Filters {
		if ov, ok := other.Filters[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// WithSearch returns a copy with the search text replaced and the page reset.
func (q Query) WithSearch(search string) Query {
	out := q.Clone()
	out.Search = search
	out.Page = DefaultPage
	return out
}

// WithScope returns a copy bound to scope with the page reset.
func (q Query) WithScope(scope string) Query {
	out := q.Clone()
	out.Scope = scope
	out.Page = DefaultPage
	return out
}

// WithFilter returns a copy with key set to value (cleared when empty) and the page reset.
func (q Query) WithFilter(key, value string) Query {
	out := q.Clone()
	if value == "" {
		delete(out.Filters, key)
	} else {
		if out.Filters == nil {
			out.Filters = make(map[string]string)
		}
		out.Filters[key] = value
	}
	out.Page = DefaultPage
	return out
}

// WithPage returns a copy pointing at page p.
func (q Query) WithPage(p int) Query {
	out := q.Clone()
	out.Page = p
	return out
}

// WithPageSize returns a copy with a new page size and the page reset.
func (q Query) WithPageSize(n int) Query {
	out := q.Clone()
	out.PageSize = n
	out.Page = DefaultPage
	return out
}

// FilterKeys returns the active filter keys in sorted order.
func (q Query) FilterKeys() []string {
	return slices.Sorted(maps.Keys(q.Filters))
}
