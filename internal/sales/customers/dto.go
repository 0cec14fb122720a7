package customers

import "strings"

// CustomerForm is the create/update payload. An empty code on create asks
// the server to generate one.
type CustomerForm struct {
	BranchID         int64   `json:"branch_id" validate:"required,gt=0"`
	Code             string  `json:"code" validate:"max=50"`
	Name             string  `json:"name" validate:"required,max=200"`
	Type             string  `json:"type" validate:"required,oneof=retail wholesale"`
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone            *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	City             *string `json:"city,omitempty" validate:"omitempty,max=100"`
	CreditLimit      float64 `json:"credit_limit" validate:"gte=0"`
	PaymentTermsDays int     `json:"payment_terms_days" validate:"gte=0,lte=365"`
	IsActive         bool    `json:"is_active"`
	Notes            *string `json:"notes,omitempty"`
}

func (f CustomerForm) normalize() CustomerForm {
	f.Code = strings.ToUpper(strings.TrimSpace(f.Code))
	f.Name = strings.TrimSpace(f.Name)
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	if f.Type == "" {
		f.Type = TypeRetail
	}
	f.Email = trimmed(f.Email)
	f.Phone = trimmed(f.Phone)
	f.City = trimmed(f.City)
	f.Notes = trimmed(f.Notes)
	return f
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
