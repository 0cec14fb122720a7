package customers

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

var (
	ErrNotFound      = shared.ErrNotFound
	ErrAlreadyExists = shared.ErrDuplicate
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Customer, error)
	GetByCode(ctx context.Context, branchID int64, code string) (*Customer, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error)
	Create(ctx context.Context, customer Customer) (int64, error)
	Update(ctx context.Context, id int64, customer Customer) error
	Delete(ctx context.Context, id int64) error
	CountByBranch(ctx context.Context, branchID int64) (int, error)
	GenerateCode(ctx context.Context, branchID int64) (string, error)
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

const customerColumns = `id, branch_id, code, name, type, email, phone, city, credit_limit::float8,
	payment_terms_days, is_active, notes, created_at, updated_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.BranchID, &c.Code, &c.Name, &c.Type, &c.Email, &c.Phone, &c.City,
		&c.CreditLimit, &c.PaymentTermsDays, &c.IsActive, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

func (r *repository) GetByCode(ctx context.Context, branchID int64, code string) (*Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE branch_id = $1 AND code = $2`, branchID, code))
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
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
	if filters.Type != "" {
		args = append(args, filters.Type)
		where += ` AND type = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (name ILIKE $` + n + ` OR code ILIKE $` + n + ` OR email ILIKE $` + n + ` OR phone ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	query := `SELECT ` + customerColumns + ` FROM customers` + where + ` ORDER BY name, id`
	if filters.Limit > 0 {
		args = append(args, filters.Limit, filters.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := []Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Customer) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO customers (branch_id, code, name, type, email, phone, city, credit_limit, payment_terms_days, is_active, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		c.BranchID, c.Code, c.Name, c.Type, c.Email, c.Phone, c.City, c.CreditLimit, c.PaymentTermsDays, c.IsActive, c.Notes,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("customer code %s already exists: %w", c.Code, ErrAlreadyExists)
	}
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, c Customer) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE customers SET code = $1, name = $2, type = $3, email = $4, phone = $5, city = $6,
		credit_limit = $7, payment_terms_days = $8, is_active = $9, notes = $10, updated_at = NOW()
		WHERE id = $11`,
		c.Code, c.Name, c.Type, c.Email, c.Phone, c.City, c.CreditLimit, c.PaymentTermsDays, c.IsActive, c.Notes, id)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("customer code %s already exists: %w", c.Code, ErrAlreadyExists)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) CountByBranch(ctx context.Context, branchID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE branch_id = $1`, branchID).Scan(&n)
	return n, err
}

// GenerateCode suggests the next CUST-NNNN code for a branch.
func (r *repository) GenerateCode(ctx context.Context, branchID int64) (string, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE branch_id = $1`, branchID).Scan(&count); err != nil {
		return "", err
	}
	return formatCode(count + 1), nil
}

func formatCode(seq int64) string {
	return fmt.Sprintf("CUST-%04d", seq)
}
