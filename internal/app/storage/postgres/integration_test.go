package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"

	"github.com/storyst/salestrack/internal/platform/migrations"
)

// runIntegration opens the database named by TEST_POSTGRES_DSN, applies the
// schema, and hands a Store to fn. Skipped when the variable is unset.
func runIntegration(t *testing.T, fn func(t *testing.T, store *Store)) {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	fn(t, New(db))
}
