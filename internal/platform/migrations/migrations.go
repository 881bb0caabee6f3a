// Package migrations applies the database schema in order. Statements are
// idempotent so Apply is safe to run on every startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		birth_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS customers_email_key ON customers (email)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id UUID PRIMARY KEY,
		customer_id UUID NOT NULL REFERENCES customers (id) ON DELETE CASCADE,
		sale_date DATE NOT NULL,
		value NUMERIC(15, 2) NOT NULL CHECK (value > 0),
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sales_customer_id_idx ON sales (customer_id)`,
	`CREATE INDEX IF NOT EXISTS sales_sale_date_idx ON sales (sale_date)`,
}

// Apply executes all migration statements against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
