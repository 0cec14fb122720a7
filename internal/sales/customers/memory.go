package customers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
)

type memoryRepository struct {
	store *shared.MemStore[Customer]
	txMu  *sync.Mutex
	now   func() time.Time
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		store: shared.NewMemStore(func(c Customer) int64 { return c.ID }),
		txMu:  &sync.Mutex{},
		now:   time.Now,
	}
}

func (r *memoryRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(ctx, r)
}

func (r *memoryRepository) Get(_ context.Context, id int64) (*Customer, error) {
	c, ok := r.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepository) GetByCode(_ context.Context, branchID int64, code string) (*Customer, error) {
	c, ok := r.store.Find(func(c Customer) bool {
		return c.BranchID == branchID && strings.EqualFold(c.Code, code)
	})
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepository) List(_ context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	rows := r.store.Select(func(c Customer) bool {
		if filters.BranchID != nil && c.BranchID != *filters.BranchID {
			return false
		}
		if filters.IsActive != nil && c.IsActive != *filters.IsActive {
			return false
		}
		if filters.Type != "" && c.Type != filters.Type {
			return false
		}
		return shared.MatchesSearch(filters.Search, c.Code, c.Name, deref(c.Email), deref(c.Phone))
	}, func(a, b Customer) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return shared.Window(rows, filters), len(rows), nil
}

func (r *memoryRepository) Create(ctx context.Context, c Customer) (int64, error) {
	if _, err := r.GetByCode(ctx, c.BranchID, c.Code); err == nil {
		return 0, fmt.Errorf("customer code %s already exists: %w", c.Code, ErrAlreadyExists)
	}
	now := r.now()
	created := r.store.Insert(func(id int64) Customer {
		c.ID = id
		c.CreatedAt = now
		c.UpdatedAt = now
		return c
	})
	return created.ID, nil
}

func (r *memoryRepository) Update(ctx context.Context, id int64, c Customer) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if other, err := r.GetByCode(ctx, current.BranchID, c.Code); err == nil && other.ID != id {
		return fmt.Errorf("customer code %s already exists: %w", c.Code, ErrAlreadyExists)
	}
	c.ID = id
	c.BranchID = current.BranchID
	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = r.now()
	r.store.Put(c)
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
	if !r.store.Remove(id) {
		return ErrNotFound
	}
	return nil
}

func (r *memoryRepository) CountByBranch(_ context.Context, branchID int64) (int, error) {
	return r.store.Count(func(c Customer) bool { return c.BranchID == branchID }), nil
}

func (r *memoryRepository) GenerateCode(ctx context.Context, branchID int64) (string, error) {
	n, _ := r.CountByBranch(ctx, branchID)
	return formatCode(int64(n) + 1), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
