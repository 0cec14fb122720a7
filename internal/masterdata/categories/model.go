package categories

import "time"

// Category represents a product category
type Category struct {
	ID          int64     `json:"id"`
	BranchID    int64     `json:"branch_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c Category) ResourceID() int64 { return c.ID }

// CategoryForm is the create/update payload.
type CategoryForm struct {
	BranchID    int64  `json:"branch_id" validate:"required,gt=0"`
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
	IsActive    bool   `json:"is_active"`
}
