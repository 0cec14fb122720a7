package categories

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

// BranchLookup resolves the branch a category belongs to.
type BranchLookup interface {
	Get(ctx context.Context, id int64) (branches.Branch, error)
}

// ProductCounter reports how many products use a category.
type ProductCounter interface {
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}

type Service struct {
	repo     Repository
	branches BranchLookup
	products ProductCounter
}

func NewService(repo Repository, branches BranchLookup) *Service {
	return &Service{repo: repo, branches: branches}
}

// UseProducts wires the product counter used by Delete. Products depend on
// categories, so the counter is attached after both services exist.
func (s *Service) UseProducts(products ProductCounter) {
	s.products = products
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form CategoryForm) (Category, error) {
	form, err := s.validate(form)
	if err != nil {
		return Category{}, err
	}
	if err := s.checkBranch(ctx, form.BranchID); err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, Category{
		BranchID:    form.BranchID,
		Code:        form.Code,
		Name:        form.Name,
		Description: form.Description,
		IsActive:    form.IsActive,
	})
}

// Update edits a category. The branch of a category never changes.
func (s *Service) Update(ctx context.Context, id int64, form CategoryForm) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrInvalidID
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if form.BranchID == 0 {
		form.BranchID = current.BranchID
	}
	form, err = s.validate(form)
	if err != nil {
		return Category{}, err
	}
	if form.BranchID != current.BranchID {
		return Category{}, httpx.FieldErrors{"branch_id": "a category cannot move to another branch"}
	}
	return s.repo.Update(ctx, id, Category{
		Code:        form.Code,
		Name:        form.Name,
		Description: form.Description,
		IsActive:    form.IsActive,
	})
}

// Delete removes a category that no product uses.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if s.products != nil {
		n, err := s.products.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("category is used by %d products: %w", n, shared.ErrConflict)
		}
	}
	return s.repo.Delete(ctx, id)
}

// CountByBranch implements branches.UsageCounter.
func (s *Service) CountByBranch(ctx context.Context, branchID int64) (int, error) {
	return s.repo.CountByBranch(ctx, branchID)
}

func (s *Service) checkBranch(ctx context.Context, branchID int64) error {
	if s.branches == nil {
		return nil
	}
	if _, err := s.branches.Get(ctx, branchID); err != nil {
		return httpx.FieldErrors{"branch_id": "branch does not exist"}
	}
	return nil
}
