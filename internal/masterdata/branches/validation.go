package branches

import (
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

func (s *Service) validate(f BranchForm) error {
	extra := httpx.FieldErrors{}
	if f.IsDefault && !f.IsActive {
		extra["is_active"] = "the default branch must be active"
	}
	return shared.Merge(shared.ValidateStruct(f), extra)
}
