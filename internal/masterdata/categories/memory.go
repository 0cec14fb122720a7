package categories

import (
	"context"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
)

type memoryRepository struct {
	store *shared.MemStore[Category]
	now   func() time.Time
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		store: shared.NewMemStore(func(c Category) int64 { return c.ID }),
		now:   time.Now,
	}
}

func (r *memoryRepository) List(_ context.Context, filters shared.ListFilters) ([]Category, int, error) {
	rows := r.store.Select(func(c Category) bool {
		if filters.BranchID != nil && c.BranchID != *filters.BranchID {
			return false
		}
		if filters.IsActive != nil && c.IsActive != *filters.IsActive {
			return false
		}
		return shared.MatchesSearch(filters.Search, c.Code, c.Name)
	}, func(a, b Category) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return shared.Window(rows, filters), len(rows), nil
}

func (r *memoryRepository) Get(_ context.Context, id int64) (Category, error) {
	c, ok := r.store.Get(id)
	if !ok {
		return Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepository) codeTaken(branchID int64, code string, exceptID int64) bool {
	_, ok := r.store.Find(func(c Category) bool {
		return c.BranchID == branchID && c.ID != exceptID && strings.EqualFold(c.Code, code)
	})
	return ok
}

func (r *memoryRepository) Create(_ context.Context, c Category) (Category, error) {
	if r.codeTaken(c.BranchID, c.Code, 0) {
		return Category{}, duplicate(c.Code)
	}
	now := r.now()
	return r.store.Insert(func(id int64) Category {
		c.ID = id
		c.CreatedAt = now
		c.UpdatedAt = now
		return c
	}), nil
}

func (r *memoryRepository) Update(ctx context.Context, id int64, c Category) (Category, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if r.codeTaken(current.BranchID, c.Code, id) {
		return Category{}, duplicate(c.Code)
	}
	c.ID = id
	c.BranchID = current.BranchID
	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = r.now()
	r.store.Put(c)
	return c, nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	if !r.store.Remove(id) {
		return shared.ErrNotFound
	}
	return nil
}

func (r *memoryRepository) CountByBranch(_ context.Context, branchID int64) (int, error) {
	return r.store.Count(func(c Category) bool { return c.BranchID == branchID }), nil
}
