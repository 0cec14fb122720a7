package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

// BranchLookup resolves the branch a customer belongs to.
type BranchLookup interface {
	Get(ctx context.Context, id int64) (branches.Branch, error)
}

type Service struct {
	repo     Repository
	branches BranchLookup
}

func NewService(repo Repository, branches BranchLookup) *Service {
	return &Service{repo: repo, branches: branches}
}

func (s *Service) Create(ctx context.Context, form CustomerForm) (*Customer, error) {
	form = form.normalize()
	if err := shared.ValidateStruct(form); err != nil {
		return nil, err
	}
	if err := s.checkBranch(ctx, form.BranchID); err != nil {
		return nil, err
	}

	var created *Customer
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		code := form.Code
		if code == "" {
			generated, err := repo.GenerateCode(ctx, form.BranchID)
			if err != nil {
				return fmt.Errorf("generate customer code: %w", err)
			}
			code = generated
		}
		existing, err := repo.GetByCode(ctx, form.BranchID, code)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("check existing customer: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("customer code %s already exists: %w", code, ErrAlreadyExists)
		}

		customer := fromForm(form)
		customer.Code = code
		id, err := repo.Create(ctx, customer)
		if err != nil {
			return err
		}
		created, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

// Update replaces the editable fields. The code is kept when the form leaves it empty.
func (s *Service) Update(ctx context.Context, id int64, form CustomerForm) (*Customer, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if form.BranchID == 0 {
		form.BranchID = existing.BranchID
	}
	form = form.normalize()
	if err := shared.ValidateStruct(form); err != nil {
		return nil, err
	}
	if form.BranchID != existing.BranchID {
		return nil, httpx.FieldErrors{"branch_id": "a customer cannot move to another branch"}
	}

	customer := fromForm(form)
	customer.Code = form.Code
	if customer.Code == "" {
		customer.Code = existing.Code
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Update(ctx, id, customer)
	})
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	if filters.Type != "" && filters.Type != TypeRetail && filters.Type != TypeWholesale {
		return nil, 0, httpx.FieldErrors{"type": "type must be one of: retail, wholesale"}
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GenerateCode(ctx context.Context, branchID int64) (string, error) {
	return s.repo.GenerateCode(ctx, branchID)
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

func fromForm(f CustomerForm) Customer {
	return Customer{
		BranchID:         f.BranchID,
		Name:             f.Name,
		Type:             f.Type,
		Email:            f.Email,
		Phone:            f.Phone,
		City:             f.City,
		CreditLimit:      f.CreditLimit,
		PaymentTermsDays: f.PaymentTermsDays,
		IsActive:         f.IsActive,
		Notes:            f.Notes,
	}
}
