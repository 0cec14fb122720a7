package products

import (
	"cmp"
	"context"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
)

type memoryRepository struct {
	store *shared.MemStore[Product]
	now   func() time.Time
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		store: shared.NewMemStore(func(p Product) int64 { return p.ID }),
		now:   time.Now,
	}
}

func (r *memoryRepository) List(_ context.Context, filters shared.ListFilters) ([]Product, int, error) {
	rows := r.store.Select(func(p Product) bool {
		if filters.BranchID != nil && p.BranchID != *filters.BranchID {
			return false
		}
		if filters.CategoryID != nil && p.CategoryID != *filters.CategoryID {
			return false
		}
		if filters.IsActive != nil && p.IsActive != *filters.IsActive {
			return false
		}
		return shared.MatchesSearch(filters.Search, p.Code, p.Name)
	}, compareBy(filters.SortBy, filters.SortDir))
	return shared.Window(rows, filters), len(rows), nil
}

func (r *memoryRepository) Get(_ context.Context, id int64) (Product, error) {
	p, ok := r.store.Get(id)
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (r *memoryRepository) codeTaken(branchID int64, code string, exceptID int64) bool {
	_, ok := r.store.Find(func(p Product) bool {
		return p.BranchID == branchID && p.ID != exceptID && strings.EqualFold(p.Code, code)
	})
	return ok
}

func (r *memoryRepository) Create(_ context.Context, p Product) (Product, error) {
	if r.codeTaken(p.BranchID, p.Code, 0) {
		return Product{}, duplicate(p.Code)
	}
	now := r.now()
	return r.store.Insert(func(id int64) Product {
		p.ID = id
		p.CreatedAt = now
		p.UpdatedAt = now
		return p
	}), nil
}

func (r *memoryRepository) Update(ctx context.Context, id int64, p Product) (Product, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if r.codeTaken(current.BranchID, p.Code, id) {
		return Product{}, duplicate(p.Code)
	}
	p.ID = id
	p.BranchID = current.BranchID
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = r.now()
	r.store.Put(p)
	return p, nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	if !r.store.Remove(id) {
		return shared.ErrNotFound
	}
	return nil
}

func (r *memoryRepository) CountByCategory(_ context.Context, categoryID int64) (int, error) {
	return r.store.Count(func(p Product) bool { return p.CategoryID == categoryID }), nil
}

func (r *memoryRepository) CountByBranch(_ context.Context, branchID int64) (int, error) {
	return r.store.Count(func(p Product) bool { return p.BranchID == branchID }), nil
}

func compareBy(sortBy, sortDir string) func(a, b Product) int {
	return func(a, b Product) int {
		var c int
		switch sortBy {
		case "code":
			c = strings.Compare(a.Code, b.Code)
		case "price":
			c = cmp.Compare(a.Price, b.Price)
		case "stock":
			c = cmp.Compare(a.Stock, b.Stock)
		default:
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if sortDir == shared.SortDesc {
			return -c
		}
		return c
	}
}
