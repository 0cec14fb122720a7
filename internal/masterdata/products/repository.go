package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-backoffice/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) (Product, error)
	Delete(ctx context.Context, id int64) error
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
	CountByBranch(ctx context.Context, branchID int64) (int, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const productColumns = `p.id, p.branch_id, p.category_id, COALESCE(c.name, ''), p.code, p.name,
	p.price::float8, p.cost::float8, p.stock, p.is_active, p.created_at, p.updated_at`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.BranchID, &p.CategoryID, &p.CategoryName, &p.Code, &p.Name,
		&p.Price, &p.Cost, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, shared.ErrNotFound
	}
	return p, err
}

func duplicate(code string) error {
	return fmt.Errorf("product code %s already exists in this branch: %w", code, shared.ErrDuplicate)
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.BranchID != nil {
		args = append(args, *filters.BranchID)
		where += ` AND p.branch_id = $` + strconv.Itoa(len(args))
	}
	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		where += ` AND p.category_id = $` + strconv.Itoa(len(args))
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		where += ` AND p.is_active = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (p.name ILIKE $` + n + ` OR p.code ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+productFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + productFrom + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir) + `, p.id`
	if filters.Limit > 0 {
		args = append(args, filters.Limit, filters.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	return scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id = $1`, id))
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO products (branch_id, category_id, code, name, price, cost, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		p.BranchID, p.CategoryID, p.Code, p.Name, p.Price, p.Cost, p.Stock, p.IsActive).Scan(&id)
	if db.IsUniqueViolation(err) {
		return Product{}, duplicate(p.Code)
	}
	if err != nil {
		return Product{}, err
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id int64, p Product) (Product, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET category_id = $1, code = $2, name = $3, price = $4, cost = $5, stock = $6,
		is_active = $7, updated_at = NOW() WHERE id = $8`,
		p.CategoryID, p.Code, p.Name, p.Price, p.Cost, p.Stock, p.IsActive, id)
	if db.IsUniqueViolation(err) {
		return Product{}, duplicate(p.Code)
	}
	if err != nil {
		return Product{}, err
	}
	if tag.RowsAffected() == 0 {
		return Product{}, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&n)
	return n, err
}

func (r *repository) CountByBranch(ctx context.Context, branchID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE branch_id = $1`, branchID).Scan(&n)
	return n, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "p.code " + dir
	case "price":
		return "p.price " + dir
	case "stock":
		return "p.stock " + dir
	default:
		return "p.name " + dir
	}
}
