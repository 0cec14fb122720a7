package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/categories"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/products"
	"github.com/odyssey-erp/odyssey-backoffice/internal/sales/customers"
)

// Filter keys understood by the API.
const (
	filterStatus   = "status"
	filterType     = "type"
	filterCategory = "category_id"
)

// lookups caches the reference data used by pickers and selects.
type lookups struct {
	branches   []branches.Branch
	categories []categories.Category
}

func (l *lookups) categoriesOf(branchID int64) []categories.Category {
	var out []categories.Category
	for _, c := range l.categories {
		if c.BranchID == branchID {
			out = append(out, c)
		}
	}
	return out
}

func (l *lookups) branch(scope string) (branches.Branch, bool) {
	for _, b := range l.branches {
		if strconv.FormatInt(b.ID, 10) == scope {
			return b, true
		}
	}
	return branches.Branch{}, false
}

func statusFilter() filterDef {
	return filterDef{
		key:   filterStatus,
		label: "status",
		values: func(string) []option {
			return []option{{"", "all"}, {"active", "active"}, {"inactive", "inactive"}}
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func branchScreen() screenDef[branches.Branch, branches.BranchForm] {
	return screenDef[branches.Branch, branches.BranchForm]{
		title:   "Branches",
		noun:    "branch",
		filters: []filterDef{statusFilter()},
		columns: []table.Column{
			{Title: "Code", Width: 8},
			{Title: "Name", Width: 24},
			{Title: "City", Width: 16},
			{Title: "Phone", Width: 16},
			{Title: "Default", Width: 8},
			{Title: "Active", Width: 7},
		},
		row: func(b branches.Branch) table.Row {
			return table.Row{b.Code, b.Name, b.City, b.Phone, yesNo(b.IsDefault), yesNo(b.IsActive)}
		},
		label: func(b branches.Branch) string { return b.Code },
		edit: func(_ string, item *branches.Branch) (editor[branches.BranchForm], error) {
			return newBranchEditor(item), nil
		},
	}
}

func customerScreen(money moneyFormatter) screenDef[customers.Customer, customers.CustomerForm] {
	return screenDef[customers.Customer, customers.CustomerForm]{
		title:  "Customers",
		noun:   "customer",
		scoped: true,
		filters: []filterDef{
			statusFilter(),
			{
				key:   filterType,
				label: "type",
				values: func(string) []option {
					return []option{{"", "all"}, {customers.TypeRetail, "retail"}, {customers.TypeWholesale, "wholesale"}}
				},
			},
		},
		columns: []table.Column{
			{Title: "Code", Width: 10},
			{Title: "Name", Width: 28},
			{Title: "Email", Width: 22},
			{Title: "Phone", Width: 15},
			{Title: "Type", Width: 10},
			{Title: "Credit limit", Width: 16},
		},
		row: func(c customers.Customer) table.Row {
			return table.Row{c.Code, c.Name, deref(c.Email), deref(c.Phone), c.Type, money.Format(c.CreditLimit)}
		},
		label: func(c customers.Customer) string { return c.Code },
		edit: func(scope string, item *customers.Customer) (editor[customers.CustomerForm], error) {
			ed, err := newCustomerEditor(scope, item)
			if err != nil {
				return nil, err
			}
			return ed, nil
		},
	}
}

func productScreen(money moneyFormatter, lk *lookups) screenDef[products.Product, products.ProductForm] {
	return screenDef[products.Product, products.ProductForm]{
		title:  "Products",
		noun:   "product",
		scoped: true,
		filters: []filterDef{
			{
				key:   filterCategory,
				label: "category",
				values: func(scope string) []option {
					out := []option{{"", "all"}}
					id, err := strconv.ParseInt(scope, 10, 64)
					if err != nil {
						return out
					}
					for _, c := range lk.categoriesOf(id) {
						out = append(out, option{strconv.FormatInt(c.ID, 10), c.Name})
					}
					return out
				},
			},
			statusFilter(),
		},
		columns: []table.Column{
			{Title: "Code", Width: 10},
			{Title: "Name", Width: 24},
			{Title: "Category", Width: 16},
			{Title: "Price", Width: 14},
			{Title: "Cost", Width: 14},
			{Title: "Stock", Width: 7},
			{Title: "Active", Width: 7},
		},
		row: func(p products.Product) table.Row {
			return table.Row{p.Code, p.Name, p.CategoryName, money.Format(p.Price), money.Format(p.Cost), money.Int(p.Stock), yesNo(p.IsActive)}
		},
		label: func(p products.Product) string { return p.Code },
		edit: func(scope string, item *products.Product) (editor[products.ProductForm], error) {
			ed, err := newProductEditor(scope, item, lk.categoriesOf)
			if err != nil {
				return nil, err
			}
			return ed, nil
		},
	}
}

func categoryScreen() screenDef[categories.Category, categories.CategoryForm] {
	return screenDef[categories.Category, categories.CategoryForm]{
		title:   "Categories",
		noun:    "category",
		scoped:  true,
		filters: []filterDef{statusFilter()},
		columns: []table.Column{
			{Title: "Code", Width: 8},
			{Title: "Name", Width: 22},
			{Title: "Description", Width: 36},
			{Title: "Active", Width: 7},
		},
		row: func(c categories.Category) table.Row {
			return table.Row{c.Code, c.Name, c.Description, yesNo(c.IsActive)}
		},
		label: func(c categories.Category) string { return c.Code },
		edit: func(scope string, item *categories.Category) (editor[categories.CategoryForm], error) {
			ed, err := newCategoryEditor(scope, item)
			if err != nil {
				return nil, err
			}
			return ed, nil
		},
	}
}
