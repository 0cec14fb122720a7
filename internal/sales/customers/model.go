package customers

import "time"

// Customer types.
const (
	TypeRetail    = "retail"
	TypeWholesale = "wholesale"
)

type Customer struct {
	ID               int64     `json:"id" db:"id"`
	BranchID         int64     `json:"branch_id" db:"branch_id"`
	Code             string    `json:"code" db:"code"`
	Name             string    `json:"name" db:"name"`
	Type             string    `json:"type" db:"type"`
	Email            *string   `json:"email,omitempty" db:"email"`
	Phone            *string   `json:"phone,omitempty" db:"phone"`
	City             *string   `json:"city,omitempty" db:"city"`
	CreditLimit      float64   `json:"credit_limit" db:"credit_limit"`
	PaymentTermsDays int       `json:"payment_terms_days" db:"payment_terms_days"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	Notes            *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

func (c Customer) ResourceID() int64 { return c.ID }
