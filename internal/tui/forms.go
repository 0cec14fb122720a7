package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/categories"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/products"
	"github.com/odyssey-erp/odyssey-backoffice/internal/sales/customers"
)

var errNoBranch = errors.New("select a branch first (press b)")

func parseAmount(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	return v, nil
}

func parseCount(field, s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", field)
	}
	return v, nil
}

func validateAmount(field string) func(string) error {
	return func(s string) error {
		_, err := parseAmount(field, s)
		return err
	}
}

func validateCount(field string) func(string) error {
	return func(s string) error {
		_, err := parseCount(field, s)
		return err
	}
}

func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseScope(scope string) (int64, error) {
	if scope == "" {
		return 0, errNoBranch
	}
	id, err := strconv.ParseInt(scope, 10, 64)
	if err != nil || id <= 0 {
		return 0, errNoBranch
	}
	return id, nil
}

type branchEditor struct {
	code, name, address, city, phone string
	active, isDefault                bool
}

func newBranchEditor(item *branches.Branch) *branchEditor {
	if item == nil {
		return &branchEditor{active: true}
	}
	return &branchEditor{
		code: item.Code, name: item.Name, address: item.Address, city: item.City, phone: item.Phone,
		active: item.IsActive, isDefault: item.IsDefault,
	}
}

func (e *branchEditor) form() *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Code").Value(&e.code),
		huh.NewInput().Title("Name").Value(&e.name),
		huh.NewInput().Title("Address").Value(&e.address),
		huh.NewInput().Title("City").Value(&e.city),
		huh.NewInput().Title("Phone").Value(&e.phone),
		huh.NewConfirm().Title("Active").Value(&e.active),
		huh.NewConfirm().Title("Default branch").Value(&e.isDefault),
	))
}

func (e *branchEditor) payload() (branches.BranchForm, error) {
	return branches.BranchForm{
		Code:      strings.TrimSpace(e.code),
		Name:      strings.TrimSpace(e.name),
		Address:   strings.TrimSpace(e.address),
		City:      strings.TrimSpace(e.city),
		Phone:     strings.TrimSpace(e.phone),
		IsActive:  e.active,
		IsDefault: e.isDefault,
	}, nil
}

type customerEditor struct {
	branchID               int64
	code, name, typ        string
	email, phone, city     string
	creditLimit, termsDays string
	notes                  string
	active                 bool
}

func newCustomerEditor(scope string, item *customers.Customer) (*customerEditor, error) {
	if item != nil {
		return &customerEditor{
			branchID: item.BranchID, code: item.Code, name: item.Name, typ: item.Type,
			email: deref(item.Email), phone: deref(item.Phone), city: deref(item.City),
			creditLimit: formatAmount(item.CreditLimit), termsDays: strconv.Itoa(item.PaymentTermsDays),
			notes: deref(item.Notes), active: item.IsActive,
		}, nil
	}
	branchID, err := parseScope(scope)
	if err != nil {
		return nil, err
	}
	return &customerEditor{branchID: branchID, typ: customers.TypeRetail, termsDays: "0", active: true}, nil
}

func (e *customerEditor) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Code").Description("leave empty to generate").Value(&e.code),
			huh.NewInput().Title("Name").Value(&e.name),
			huh.NewSelect[string]().Title("Type").
				Options(huh.NewOption("Retail", customers.TypeRetail), huh.NewOption("Wholesale", customers.TypeWholesale)).
				Value(&e.typ),
			huh.NewInput().Title("Email").Value(&e.email),
			huh.NewInput().Title("Phone").Value(&e.phone),
			huh.NewInput().Title("City").Value(&e.city),
		),
		huh.NewGroup(
			huh.NewInput().Title("Credit limit").Value(&e.creditLimit).Validate(validateAmount("credit limit")),
			huh.NewInput().Title("Payment terms (days)").Value(&e.termsDays).Validate(validateCount("payment terms")),
			huh.NewText().Title("Notes").Value(&e.notes),
			huh.NewConfirm().Title("Active").Value(&e.active),
		),
	)
}

func (e *customerEditor) payload() (customers.CustomerForm, error) {
	limit, err := parseAmount("credit limit", e.creditLimit)
	if err != nil {
		return customers.CustomerForm{}, err
	}
	terms, err := parseCount("payment terms", e.termsDays)
	if err != nil {
		return customers.CustomerForm{}, err
	}
	return customers.CustomerForm{
		BranchID:         e.branchID,
		Code:             strings.TrimSpace(e.code),
		Name:             strings.TrimSpace(e.name),
		Type:             e.typ,
		Email:            optional(e.email),
		Phone:            optional(e.phone),
		City:             optional(e.city),
		CreditLimit:      limit,
		PaymentTermsDays: terms,
		IsActive:         e.active,
		Notes:            optional(e.notes),
	}, nil
}

type productEditor struct {
	branchID           int64
	categoryID         int64
	code, name         string
	price, cost, stock string
	active             bool

	categories []categories.Category
}

func newProductEditor(scope string, item *products.Product, cats func(branchID int64) []categories.Category) (*productEditor, error) {
	if item != nil {
		return &productEditor{
			branchID: item.BranchID, categoryID: item.CategoryID, code: item.Code, name: item.Name,
			price: formatAmount(item.Price), cost: formatAmount(item.Cost), stock: strconv.Itoa(item.Stock),
			active: item.IsActive, categories: cats(item.BranchID),
		}, nil
	}
	branchID, err := parseScope(scope)
	if err != nil {
		return nil, err
	}
	e := &productEditor{branchID: branchID, stock: "0", active: true, categories: cats(branchID)}
	if len(e.categories) > 0 {
		e.categoryID = e.categories[0].ID
	}
	return e, nil
}

func (e *productEditor) form() *huh.Form {
	opts := make([]huh.Option[int64], 0, len(e.categories)+1)
	for _, c := range e.categories {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
	}
	if len(opts) == 0 {
		opts = append(opts, huh.NewOption("(no categories)", int64(0)))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Code").Value(&e.code),
			huh.NewInput().Title("Name").Value(&e.name),
			huh.NewSelect[int64]().Title("Category").Options(opts...).Value(&e.categoryID),
		),
		huh.NewGroup(
			huh.NewInput().Title("Price").Value(&e.price).Validate(validateAmount("price")),
			huh.NewInput().Title("Cost").Value(&e.cost).Validate(validateAmount("cost")),
			huh.NewInput().Title("Stock").Value(&e.stock).Validate(validateCount("stock")),
			huh.NewConfirm().Title("Active").Value(&e.active),
		),
	)
}

func (e *productEditor) payload() (products.ProductForm, error) {
	price, err := parseAmount("price", e.price)
	if err != nil {
		return products.ProductForm{}, err
	}
	cost, err := parseAmount("cost", e.cost)
	if err != nil {
		return products.ProductForm{}, err
	}
	stock, err := parseCount("stock", e.stock)
	if err != nil {
		return products.ProductForm{}, err
	}
	return products.ProductForm{
		BranchID:   e.branchID,
		CategoryID: e.categoryID,
		Code:       strings.TrimSpace(e.code),
		Name:       strings.TrimSpace(e.name),
		Price:      price,
		Cost:       cost,
		Stock:      stock,
		IsActive:   e.active,
	}, nil
}

type categoryEditor struct {
	branchID                int64
	code, name, description string
	active                  bool
}

func newCategoryEditor(scope string, item *categories.Category) (*categoryEditor, error) {
	if item != nil {
		return &categoryEditor{
			branchID: item.BranchID, code: item.Code, name: item.Name,
			description: item.Description, active: item.IsActive,
		}, nil
	}
	branchID, err := parseScope(scope)
	if err != nil {
		return nil, err
	}
	return &categoryEditor{branchID: branchID, active: true}, nil
}

func (e *categoryEditor) form() *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Code").Value(&e.code),
		huh.NewInput().Title("Name").Value(&e.name),
		huh.NewText().Title("Description").Value(&e.description),
		huh.NewConfirm().Title("Active").Value(&e.active),
	))
}

func (e *categoryEditor) payload() (categories.CategoryForm, error) {
	return categories.CategoryForm{
		BranchID:    e.branchID,
		Code:        strings.TrimSpace(e.code),
		Name:        strings.TrimSpace(e.name),
		Description: strings.TrimSpace(e.description),
		IsActive:    e.active,
	}, nil
}
