package branches

import "strings"

// BranchForm is the create/update payload.
type BranchForm struct {
	Code      string `json:"code" validate:"required,max=20"`
	Name      string `json:"name" validate:"required,max=120"`
	Address   string `json:"address" validate:"max=255"`
	City      string `json:"city" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=30"`
	IsActive  bool   `json:"is_active"`
	IsDefault bool   `json:"is_default"`
}

func (f BranchForm) normalize() BranchForm {
	f.Code = strings.ToUpper(strings.TrimSpace(f.Code))
	f.Name = strings.TrimSpace(f.Name)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.Phone = strings.TrimSpace(f.Phone)
	return f
}

func (f BranchForm) toBranch() Branch {
	return Branch{
		Code:      f.Code,
		Name:      f.Name,
		Address:   f.Address,
		City:      f.City,
		Phone:     f.Phone,
		IsActive:  f.IsActive,
		IsDefault: f.IsDefault,
	}
}
