package listing

// Resource is implemented by every entity a list screen displays.
type Resource interface {
	ResourceID() int64
}

// PageResult is the server answer to a Query.
type PageResult[T any] struct {
	Items       []T
	CurrentPage int
	LastPage    int
	PerPage     int
	Total       int
}

// SinglePage wraps an unpaginated item set as a one-page result.
func SinglePage[T any](items []T) PageResult[T] {
	return PageResult[T]{
		Items:       items,
		CurrentPage: 1,
		LastPage:    1,
		PerPage:     len(items),
		Total:       len(items),
	}
}

// Normalize clamps negative counters and restores CurrentPage <= LastPage
// for non-empty result sets.
func (r PageResult[T]) Normalize() PageResult[T] {
	if r.Total < 0 {
		r.Total = 0
	}
	if r.PerPage < 0 {
		r.PerPage = 0
	}
	if r.LastPage < 1 {
		r.LastPage = 1
	}
	if r.CurrentPage < 1 {
		r.CurrentPage = 1
	}
	if r.Total > 0 && r.PerPage > 0 {
		if pages := (r.Total + r.PerPage - 1) / r.PerPage; pages > r.LastPage {
			r.LastPage = pages
		}
	}
	if r.Total > 0 && r.CurrentPage > r.LastPage {
		r.CurrentPage = r.LastPage
	}
	return r
}

// IsEmpty reports whether the server has no items for the query.
func (r PageResult[T]) IsEmpty() bool {
	return r.Total == 0 && len(r.Items) == 0
}

func (r PageResult[T]) clone() PageResult[T] {
	out := r
	out.Items = append([]T(nil), r.Items...)
	return out
}
