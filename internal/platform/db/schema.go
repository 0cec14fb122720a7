package db

import (
	"context"
	"fmt"
)

// schema creates the master data tables used by the development API.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS branches (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_branches_default ON branches (is_default) WHERE is_default`,
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		branch_id BIGINT NOT NULL REFERENCES branches(id) ON DELETE RESTRICT,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (branch_id, code)
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		branch_id BIGINT NOT NULL REFERENCES branches(id) ON DELETE RESTRICT,
		category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		price NUMERIC(18,2) NOT NULL DEFAULT 0,
		cost NUMERIC(18,2) NOT NULL DEFAULT 0,
		stock INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (branch_id, code)
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		branch_id BIGINT NOT NULL REFERENCES branches(id) ON DELETE RESTRICT,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'retail',
		email TEXT,
		phone TEXT,
		city TEXT,
		credit_limit NUMERIC(18,2) NOT NULL DEFAULT 0,
		payment_terms_days INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (branch_id, code)
	)`,
}

// Migrate creates missing tables. It is idempotent.
func Migrate(ctx context.Context, conn DBTX) error {
	for i, stmt := range schema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("platform/db: migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
