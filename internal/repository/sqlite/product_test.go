package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/storefront/internal/domain"
)

func TestProductRepository_CreateListCount(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createProduct(t, db, "Coffee", 450)
	createProduct(t, db, "Mug", 1299)

	products, err := db.Products().List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Name != "Coffee" || products[0].Price != 450 {
		t.Fatalf("unexpected first product: %+v", products[0])
	}

	n, err := db.Products().Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected count 2, got %d", n)
	}
}

func TestProductRepository_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	createProduct(t, db, "Tea", 300)

	err := db.Products().Create(context.Background(), &domain.Product{Name: "Tea", Price: 1})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProductRepository_GetAndDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := createProduct(t, db, "Bagel", 250)

	got, err := db.Products().GetByName(ctx, "Bagel")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.ID != p.ID {
		t.Fatalf("expected id %d, got %d", p.ID, got.ID)
	}

	if err := db.Products().Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Products().GetByID(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.Products().Delete(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
