package branches

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
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context, filters shared.ListFilters) ([]Branch, int, error)
	Get(ctx context.Context, id int64) (Branch, error)
	GetByCode(ctx context.Context, code string) (Branch, error)
	GetDefault(ctx context.Context) (Branch, error)
	Create(ctx context.Context, branch Branch) (Branch, error)
	Update(ctx context.Context, id int64, branch Branch) (Branch, error)
	Delete(ctx context.Context, id int64) error
	ClearDefault(ctx context.Context) error
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const branchColumns = `id, code, name, address, city, phone, is_active, is_default, created_at, updated_at`

func scanBranch(row pgx.Row) (Branch, error) {
	var b Branch
	err := row.Scan(&b.ID, &b.Code, &b.Name, &b.Address, &b.City, &b.Phone, &b.IsActive, &b.IsDefault, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return b, shared.ErrNotFound
	}
	return b, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Branch, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		where += ` AND is_active = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR code ILIKE $` + n + ` OR city ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM branches`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count branches: %w", err)
	}

	query := `SELECT ` + branchColumns + ` FROM branches` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir) + `, id`
	if filters.Limit > 0 {
		args = append(args, filters.Limit, filters.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	branches := []Branch{}
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, 0, err
		}
		branches = append(branches, b)
	}
	return branches, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Branch, error) {
	return scanBranch(r.db.QueryRow(ctx, `SELECT `+branchColumns+` FROM branches WHERE id = $1`, id))
}

func (r *repository) GetByCode(ctx context.Context, code string) (Branch, error) {
	return scanBranch(r.db.QueryRow(ctx, `SELECT `+branchColumns+` FROM branches WHERE code = $1`, code))
}

func (r *repository) GetDefault(ctx context.Context) (Branch, error) {
	return scanBranch(r.db.QueryRow(ctx, `SELECT `+branchColumns+` FROM branches WHERE is_default`))
}

func (r *repository) Create(ctx context.Context, branch Branch) (Branch, error) {
	query := `INSERT INTO branches (code, name, address, city, phone, is_active, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING ` + branchColumns
	created, err := scanBranch(r.db.QueryRow(ctx, query,
		branch.Code, branch.Name, branch.Address, branch.City, branch.Phone, branch.IsActive, branch.IsDefault))
	if db.IsUniqueViolation(err) {
		return Branch{}, fmt.Errorf("branch code %s already exists: %w", branch.Code, shared.ErrDuplicate)
	}
	return created, err
}

func (r *repository) Update(ctx context.Context, id int64, branch Branch) (Branch, error) {
	query := `UPDATE branches SET code = $1, name = $2, address = $3, city = $4, phone = $5,
		is_active = $6, is_default = $7, updated_at = NOW() WHERE id = $8 RETURNING ` + branchColumns
	updated, err := scanBranch(r.db.QueryRow(ctx, query,
		branch.Code, branch.Name, branch.Address, branch.City, branch.Phone, branch.IsActive, branch.IsDefault, id))
	if db.IsUniqueViolation(err) {
		return Branch{}, fmt.Errorf("branch code %s already exists: %w", branch.Code, shared.ErrDuplicate)
	}
	return updated, err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("branch still has master data: %w", shared.ErrConflict)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ClearDefault(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `UPDATE branches SET is_default = FALSE, updated_at = NOW() WHERE is_default`)
	return err
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == shared.SortDesc {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "city":
		return "city " + dir
	default:
		return "name " + dir
	}
}
