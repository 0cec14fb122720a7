package products

import (
	"time"
)

// Product represents a product entity
type Product struct {
	ID           int64     `json:"id"`
	BranchID     int64     `json:"branch_id"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Cost         float64   `json:"cost"`
	Stock        int       `json:"stock"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p Product) ResourceID() int64 { return p.ID }
