package branches

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
)

type memoryRepository struct {
	store *shared.MemStore[Branch]
	txMu  *sync.Mutex
	now   func() time.Time
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		store: shared.NewMemStore(func(b Branch) int64 { return b.ID }),
		txMu:  &sync.Mutex{},
		now:   time.Now,
	}
}

// WithTx serialises fn against other transactions. Rollback is not supported.
func (r *memoryRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(ctx, r)
}

func (r *memoryRepository) List(_ context.Context, filters shared.ListFilters) ([]Branch, int, error) {
	rows := r.store.Select(func(b Branch) bool {
		if filters.IsActive != nil && b.IsActive != *filters.IsActive {
			return false
		}
		return shared.MatchesSearch(filters.Search, b.Code, b.Name, b.City)
	}, compareBy(filters.SortBy, filters.SortDir))
	return shared.Window(rows, filters), len(rows), nil
}

func (r *memoryRepository) Get(_ context.Context, id int64) (Branch, error) {
	b, ok := r.store.Get(id)
	if !ok {
		return Branch{}, shared.ErrNotFound
	}
	return b, nil
}

func (r *memoryRepository) GetByCode(_ context.Context, code string) (Branch, error) {
	b, ok := r.store.Find(func(b Branch) bool { return strings.EqualFold(b.Code, code) })
	if !ok {
		return Branch{}, shared.ErrNotFound
	}
	return b, nil
}

func (r *memoryRepository) GetDefault(_ context.Context) (Branch, error) {
	b, ok := r.store.Find(func(b Branch) bool { return b.IsDefault })
	if !ok {
		return Branch{}, shared.ErrNotFound
	}
	return b, nil
}

func (r *memoryRepository) Create(ctx context.Context, branch Branch) (Branch, error) {
	if _, err := r.GetByCode(ctx, branch.Code); err == nil {
		return Branch{}, fmt.Errorf("branch code %s already exists: %w", branch.Code, shared.ErrDuplicate)
	}
	now := r.now()
	return r.store.Insert(func(id int64) Branch {
		branch.ID = id
		branch.CreatedAt = now
		branch.UpdatedAt = now
		return branch
	}), nil
}

func (r *memoryRepository) Update(ctx context.Context, id int64, branch Branch) (Branch, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return Branch{}, err
	}
	if other, err := r.GetByCode(ctx, branch.Code); err == nil && other.ID != id {
		return Branch{}, fmt.Errorf("branch code %s already exists: %w", branch.Code, shared.ErrDuplicate)
	}
	branch.ID = id
	branch.CreatedAt = current.CreatedAt
	branch.UpdatedAt = r.now()
	if !r.store.Put(branch) {
		return Branch{}, shared.ErrNotFound
	}
	return branch, nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	if !r.store.Remove(id) {
		return shared.ErrNotFound
	}
	return nil
}

func (r *memoryRepository) ClearDefault(_ context.Context) error {
	now := r.now()
	r.store.Modify(func(b Branch) bool { return b.IsDefault }, func(b Branch) Branch {
		b.IsDefault = false
		b.UpdatedAt = now
		return b
	})
	return nil
}

func compareBy(sortBy, sortDir string) func(a, b Branch) int {
	return func(a, b Branch) int {
		var c int
		switch sortBy {
		case "code":
			c = strings.Compare(a.Code, b.Code)
		case "city":
			c = strings.Compare(a.City, b.City)
		default:
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if sortDir == shared.SortDesc {
			return -c
		}
		return c
	}
}
