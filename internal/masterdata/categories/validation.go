package categories

import (
	"strings"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
)

func (s *Service) validate(f CategoryForm) (CategoryForm, error) {
	f.Code = strings.ToUpper(strings.TrimSpace(f.Code))
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	return f, shared.ValidateStruct(f)
}
