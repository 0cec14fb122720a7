package products

import (
	"context"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/categories"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

// CategoryLookup resolves product categories.
type CategoryLookup interface {
	Get(ctx context.Context, id int64) (categories.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryLookup
}

func NewService(repo Repository, categories CategoryLookup) *Service {
	return &Service{repo: repo, categories: categories}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	s.fillCategoryNames(ctx, items)
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	s.fillCategoryNames(ctx, []Product{p})
	return p, nil
}

func (s *Service) Create(ctx context.Context, form ProductForm) (Product, error) {
	if err := s.validate(ctx, form); err != nil {
		return Product{}, err
	}
	p, err := s.repo.Create(ctx, form.toProduct())
	if err != nil {
		return Product{}, err
	}
	return s.withCategory(ctx, p), nil
}

func (s *Service) Update(ctx context.Context, id int64, form ProductForm) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if form.BranchID == 0 {
		form.BranchID = current.BranchID
	}
	if form.BranchID != current.BranchID {
		return Product{}, httpx.FieldErrors{"branch_id": "a product cannot move to another branch"}
	}
	if err := s.validate(ctx, form); err != nil {
		return Product{}, err
	}
	p, err := s.repo.Update(ctx, id, form.toProduct())
	if err != nil {
		return Product{}, err
	}
	return s.withCategory(ctx, p), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

// CountByCategory implements categories.ProductCounter.
func (s *Service) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	return s.repo.CountByCategory(ctx, categoryID)
}

// CountByBranch implements branches.UsageCounter.
func (s *Service) CountByBranch(ctx context.Context, branchID int64) (int, error) {
	return s.repo.CountByBranch(ctx, branchID)
}

func (s *Service) withCategory(ctx context.Context, p Product) Product {
	items := []Product{p}
	s.fillCategoryNames(ctx, items)
	return items[0]
}

func (s *Service) fillCategoryNames(ctx context.Context, items []Product) {
	if s.categories == nil {
		return
	}
	names := map[int64]string{}
	for i := range items {
		if items[i].CategoryName != "" {
			continue
		}
		name, ok := names[items[i].CategoryID]
		if !ok {
			if c, err := s.categories.Get(ctx, items[i].CategoryID); err == nil {
				name = c.Name
			}
			names[items[i].CategoryID] = name
		}
		items[i].CategoryName = name
	}
}
