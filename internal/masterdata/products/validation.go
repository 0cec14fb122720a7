package products

import (
	"context"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

func (s *Service) validate(ctx context.Context, f ProductForm) error {
	err := shared.ValidateStruct(f)
	extra := httpx.FieldErrors{}
	if f.Cost > 0 && f.Price > 0 && f.Price < f.Cost {
		extra["price"] = "price must not be below cost"
	}
	if f.CategoryID > 0 && s.categories != nil {
		c, cerr := s.categories.Get(ctx, f.CategoryID)
		switch {
		case cerr != nil:
			extra["category_id"] = "category does not exist"
		case c.BranchID != f.BranchID:
			extra["category_id"] = "category belongs to another branch"
		}
	}
	return shared.Merge(err, extra)
}
