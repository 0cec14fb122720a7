package products

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/categories"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/httpx"
)

// ============================================================================
// HELPERS
// ============================================================================

type fixture struct {
	svc        *Service
	categories *categories.Service
	branch     int64
	other      int64
	drinks     categories.Category
	foreign    categories.Category
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	branchSvc := branches.NewService(branches.NewMemoryRepository())
	jkt, err := branchSvc.Create(ctx, branches.BranchForm{Code: "JKT", Name: "Jakarta"})
	require.NoError(t, err)
	bdg, err := branchSvc.Create(ctx, branches.BranchForm{Code: "BDG", Name: "Bandung", IsActive: true})
	require.NoError(t, err)

	catSvc := categories.NewService(categories.NewMemoryRepository(), branchSvc)
	drinks, err := catSvc.Create(ctx, categories.CategoryForm{BranchID: jkt.ID, Code: "BEV", Name: "Minuman", IsActive: true})
	require.NoError(t, err)
	foreign, err := catSvc.Create(ctx, categories.CategoryForm{BranchID: bdg.ID, Code: "BEV", Name: "Minuman BDG", IsActive: true})
	require.NoError(t, err)

	svc := NewService(NewMemoryRepository(), catSvc)
	catSvc.UseProducts(svc)
	return fixture{svc: svc, categories: catSvc, branch: jkt.ID, other: bdg.ID, drinks: drinks, foreign: foreign}
}

func (f fixture) form(code string) ProductForm {
	return ProductForm{BranchID: f.branch, CategoryID: f.drinks.ID, Code: code, Name: "Kopi " + code, Price: 25000, Cost: 12000, Stock: 10, IsActive: true}
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateProductFillsCategoryName(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.form("kp1"))

	require.NoError(t, err)
	assert.Equal(t, "KP1", p.Code)
	assert.Equal(t, "Minuman", p.CategoryName)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	form := f.form("KP1")
	form.Price = 1000
	form.Stock = -1
	form.CategoryID = f.foreign.ID

	_, err := f.svc.Create(context.Background(), form)

	var fields httpx.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "price must not be below cost", fields["price"])
	assert.Equal(t, "stock must be 0 or more", fields["stock"])
	assert.Equal(t, "category belongs to another branch", fields["category_id"])
}

func TestCategoryWithProductsCannotBeDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.form("KP1"))
	require.NoError(t, err)

	assert.ErrorIs(t, f.categories.Delete(ctx, f.drinks.ID), shared.ErrConflict)

	require.NoError(t, f.svc.Delete(ctx, p.ID))
	assert.NoError(t, f.categories.Delete(ctx, f.drinks.ID))
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, f.form("KP1"))
	require.NoError(t, err)

	form := f.form("KP1")
	form.BranchID = 0
	form.Stock = 3
	updated, err := f.svc.Update(ctx, p.ID, form)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, f.branch, updated.BranchID)

	form.BranchID = f.other
	_, err = f.svc.Update(ctx, p.ID, form)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDuplicateProductCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.form("KP1"))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.form("kp1"))
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestListFiltersByCategoryAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, code := range []string{"A", "B", "C"} {
		form := f.form(code)
		form.IsActive = i != 1
		_, err := f.svc.Create(ctx, form)
		require.NoError(t, err)
	}
	active := true

	items, total, err := f.svc.List(ctx, shared.ListFilters{Page: 1, Limit: 10, BranchID: &f.branch, CategoryID: &f.drinks.ID, IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, p := range items {
		assert.Equal(t, "Minuman", p.CategoryName)
	}

	items, total, err = f.svc.List(ctx, shared.ListFilters{Page: 1, Limit: 10, BranchID: &f.other})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)

	n, err := f.svc.CountByBranch(ctx, f.branch)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
