package products

import "strings"

type ProductForm struct {
	BranchID   int64   `json:"branch_id" validate:"required,gt=0"`
	CategoryID int64   `json:"category_id" validate:"required,gt=0"`
	Code       string  `json:"code" validate:"required,max=30"`
	Name       string  `json:"name" validate:"required,max=200"`
	Price      float64 `json:"price" validate:"gte=0"`
	Cost       float64 `json:"cost" validate:"gte=0"`
	Stock      int     `json:"stock" validate:"gte=0"`
	IsActive   bool    `json:"is_active"`
}

func (f ProductForm) toProduct() Product {
	return Product{
		BranchID:   f.BranchID,
		CategoryID: f.CategoryID,
		Code:       strings.ToUpper(strings.TrimSpace(f.Code)),
		Name:       strings.TrimSpace(f.Name),
		Price:      f.Price,
		Cost:       f.Cost,
		Stock:      f.Stock,
		IsActive:   f.IsActive,
	}
}
