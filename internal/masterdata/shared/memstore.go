package shared

import (
	"cmp"
	"slices"
	"sync"
)

// MemStore is an in-memory table keyed by an int64 identity. Repositories
// without a database build on it.
type MemStore[T any] struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]T
	id     func(T) int64
}

// NewMemStore returns an empty store. id extracts the identity of a row.
func NewMemStore[T any](id func(T) int64) *MemStore[T] {
	return &MemStore[T]{rows: make(map[int64]T), id: id}
}

// Select returns the rows accepted by match ordered by compare, then by id.
func (s *MemStore[T]) Select(match func(T) bool, compare func(a, b T) int) []T {
	s.mu.RLock()
	out := make([]T, 0, len(s.rows))
	for _, row := range s.rows {
		if match == nil || match(row) {
			out = append(out, row)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b T) int {
		if compare != nil {
			if c := compare(a, b); c != 0 {
				return c
			}
		}
		return cmp.Compare(s.id(a), s.id(b))
	})
	return out
}

// Get returns the row with id.
func (s *MemStore[T]) Get(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	return row, ok
}

// Find returns the first row, by id, accepted by match.
func (s *MemStore[T]) Find(match func(T) bool) (T, bool) {
	rows := s.Select(match, nil)
	if len(rows) == 0 {
		var zero T
		return zero, false
	}
	return rows[0], true
}

// Count returns how many rows match.
func (s *MemStore[T]) Count(match func(T) bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, row := range s.rows {
		if match(row) {
			n++
		}
	}
	return n
}

// Insert allocates the next id and stores the row built for it.
func (s *MemStore[T]) Insert(build func(id int64) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	row := build(s.nextID)
	s.rows[s.id(row)] = row
	return row
}

// Put replaces an existing row. It reports false when the id is unknown.
func (s *MemStore[T]) Put(row T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id(row)
	if _, ok := s.rows[id]; !ok {
		return false
	}
	s.rows[id] = row
	return true
}

// Modify applies fn to every row accepted by match.
func (s *MemStore[T]) Modify(match func(T) bool, fn func(T) T) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, row := range s.rows {
		if match(row) {
			s.rows[id] = fn(row)
			n++
		}
	}
	return n
}

// Remove deletes a row. It reports false when the id is unknown.
func (s *MemStore[T]) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return false
	}
	delete(s.rows, id)
	return true
}

// Len returns the number of rows.
func (s *MemStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
