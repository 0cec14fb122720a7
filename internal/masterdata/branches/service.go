package branches

import (
	"context"
	"errors"
	"fmt"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
)

// ErrDefaultBranch is returned when deleting the default branch.
var ErrDefaultBranch = fmt.Errorf("cannot delete the default branch: %w", shared.ErrConflict)

// UsageCounter counts rows that reference a branch.
type UsageCounter interface {
	CountByBranch(ctx context.Context, branchID int64) (int, error)
}

type usage struct {
	label   string
	counter UsageCounter
}

type Service struct {
	repo  Repository
	usage []usage
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// TrackUsage blocks deleting a branch while counter reports rows for it.
// label names the rows in the error, e.g. "customers".
func (s *Service) TrackUsage(label string, counter UsageCounter) {
	s.usage = append(s.usage, usage{label: label, counter: counter})
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Branch, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Branch, error) {
	if id <= 0 {
		return Branch{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// Create stores a new branch. The first branch always becomes the default,
// and a new default replaces the previous one.
func (s *Service) Create(ctx context.Context, form BranchForm) (Branch, error) {
	form = form.normalize()
	if err := s.validate(form); err != nil {
		return Branch{}, err
	}
	var created Branch
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		branch := form.toBranch()
		if _, err := repo.GetDefault(ctx); errors.Is(err, shared.ErrNotFound) {
			branch.IsDefault = true
			branch.IsActive = true
		} else if err != nil {
			return err
		}
		if branch.IsDefault {
			if err := repo.ClearDefault(ctx); err != nil {
				return err
			}
		}
		var err error
		created, err = repo.Create(ctx, branch)
		return err
	})
	return created, err
}

// Update replaces the editable fields. The default flag can only move to
// another branch, never be cleared outright.
func (s *Service) Update(ctx context.Context, id int64, form BranchForm) (Branch, error) {
	if id <= 0 {
		return Branch{}, shared.ErrInvalidID
	}
	form = form.normalize()
	if err := s.validate(form); err != nil {
		return Branch{}, err
	}
	var updated Branch
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		current, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if current.IsDefault && !form.IsDefault {
			return fmt.Errorf("mark another branch as default instead: %w", shared.ErrConflict)
		}
		if form.IsDefault && !current.IsDefault {
			if err := repo.ClearDefault(ctx); err != nil {
				return err
			}
		}
		updated, err = repo.Update(ctx, id, form.toBranch())
		return err
	})
	return updated, err
}

// Delete removes a branch that is neither the default nor referenced.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		branch, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if branch.IsDefault {
			return ErrDefaultBranch
		}
		for _, u := range s.usage {
			n, err := u.counter.CountByBranch(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("branch still has %d %s: %w", n, u.label, shared.ErrConflict)
			}
		}
		return repo.Delete(ctx, id)
	})
}
