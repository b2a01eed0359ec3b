package migrations_test

import (
	"context"
	"database/sql"
	"slices"
	"testing"

	"github.com/msomdec/storefront/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	return db
}

func TestRunMigrations(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first migration run: %v", err)
	}

	// Verify the users table exists by inserting a row.
	_, err := db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		"alice", "hash123",
	)
	if err != nil {
		t.Fatalf("insert into users: %v", err)
	}

	applied, err := migrations.Applied(ctx, db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(applied) == 0 {
		t.Fatal("expected at least one migration recorded in schema_migrations")
	}
	if !slices.IsSorted(applied) {
		t.Fatalf("expected sorted migrations, got %v", applied)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, err := migrations.Applied(ctx, db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second run (idempotent): %v", err)
	}
	second, err := migrations.Applied(ctx, db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}

	if !slices.Equal(first, second) {
		t.Fatalf("second run changed applied set: %v -> %v", first, second)
	}
}

func TestCartItemsRejectNonPositiveQuantity(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO users (username, password_hash) VALUES ('bob', 'h')"); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO carts (user_id) VALUES (1)"); err != nil {
		t.Fatalf("insert cart: %v", err)
	}

	_, err := db.ExecContext(ctx, "INSERT INTO cart_items (user_id, product_id, quantity) VALUES (1, 1, 0)")
	if err == nil {
		t.Fatal("expected CHECK constraint to reject quantity 0")
	}
}
