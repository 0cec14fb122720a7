package categories

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
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, id int64, category Category) (Category, error)
	Delete(ctx context.Context, id int64) error
	CountByBranch(ctx context.Context, branchID int64) (int, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const categoryColumns = `id, branch_id, code, name, description, is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.BranchID, &c.Code, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, shared.ErrNotFound
	}
	return c, err
}

func duplicate(code string) error {
	return fmt.Errorf("category code %s already exists in this branch: %w", code, shared.ErrDuplicate)
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.BranchID != nil {
		args = append(args, *filters.BranchID)
		where += ` AND branch_id = $` + strconv.Itoa(len(args))
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		where += ` AND is_active = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR code ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	query := `SELECT ` + categoryColumns + ` FROM categories` + where + ` ORDER BY name, id`
	if filters.Limit > 0 {
		args = append(args, filters.Limit, filters.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	return scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, c Category) (Category, error) {
	created, err := scanCategory(r.db.QueryRow(ctx,
		`INSERT INTO categories (branch_id, code, name, description, is_active)
		VALUES ($1, $2, $3, $4, $5) RETURNING `+categoryColumns,
		c.BranchID, c.Code, c.Name, c.Description, c.IsActive))
	if db.IsUniqueViolation(err) {
		return Category{}, duplicate(c.Code)
	}
	return created, err
}

func (r *repository) Update(ctx context.Context, id int64, c Category) (Category, error) {
	updated, err := scanCategory(r.db.QueryRow(ctx,
		`UPDATE categories SET code = $1, name = $2, description = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5 RETURNING `+categoryColumns,
		c.Code, c.Name, c.Description, c.IsActive, id))
	if db.IsUniqueViolation(err) {
		return Category{}, duplicate(c.Code)
	}
	return updated, err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("category still has products: %w", shared.ErrConflict)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountByBranch(ctx context.Context, branchID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE branch_id = $1`, branchID).Scan(&n)
	return n, err
}
