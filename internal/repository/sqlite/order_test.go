package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/storefront/internal/domain"
)

func TestOrderRepository_PlaceClearsCart(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "buyer")
	p := createProduct(t, db, "Lamp", 2500)

	if err := db.Carts().AddItem(ctx, user.ID, p.ID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	order := &domain.Order{
		UserID:      user.ID,
		Address:     "1 Elm St",
		PaymentMode: "card",
		Total:       5000,
		Lines: []domain.OrderLine{
			{ProductID: p.ID, ProductName: p.Name, Quantity: 2, UnitPrice: 2500, LineTotal: 5000},
		},
	}
	if err := db.Orders().Place(ctx, order); err != nil {
		t.Fatalf("Place: %v", err)
	}
	if order.ID == 0 || order.PlacedAt.IsZero() {
		t.Fatalf("expected id and placed time, got %+v", order)
	}

	cart, err := db.Carts().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get cart: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", cart.Lines)
	}

	got, err := db.Orders().GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Total != 5000 || len(got.Lines) != 1 || got.Lines[0].ProductName != "Lamp" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestOrderRepository_PlaceWithEmptyCartStoresNothing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "late")

	order := &domain.Order{
		UserID: user.ID, Address: "x", PaymentMode: "card", Total: 100,
		Lines: []domain.OrderLine{{ProductID: 1, ProductName: "Ghost", Quantity: 1, UnitPrice: 100, LineTotal: 100}},
	}
	if err := db.Orders().Place(ctx, order); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	orders, err := db.Orders().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(orders))
	}
}

func TestOrderRepository_ListByUserNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "hist")
	p := createProduct(t, db, "Soap", 199)

	var ids []int64
	for i := 0; i < 3; i++ {
		if err := db.Carts().AddItem(ctx, user.ID, p.ID, 1); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		o := &domain.Order{
			UserID: user.ID, Address: "a", PaymentMode: "cash", Total: 199,
			Lines: []domain.OrderLine{{ProductID: p.ID, ProductName: p.Name, Quantity: 1, UnitPrice: 199, LineTotal: 199}},
		}
		if err := db.Orders().Place(ctx, o); err != nil {
			t.Fatalf("Place #%d: %v", i, err)
		}
		ids = append(ids, o.ID)
	}

	orders, err := db.Orders().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	if orders[0].ID != ids[2] || len(orders[0].Lines) != 1 {
		t.Fatalf("expected newest order first with lines, got %+v", orders[0])
	}
	if ids[0] >= ids[1] || ids[1] >= ids[2] {
		t.Fatalf("expected increasing order ids, got %v", ids)
	}

	if _, err := db.Orders().GetByID(ctx, 424242); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderRepository_PlaceKeepsLinesAddedAfterPricing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "late-add")
	priced := createProduct(t, db, "Priced", 300)
	extra := createProduct(t, db, "Extra", 700)

	if err := db.Carts().AddItem(ctx, user.ID, priced.ID, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	order := &domain.Order{
		UserID: user.ID, Address: "x", PaymentMode: "card", Total: 300,
		Lines: []domain.OrderLine{{ProductID: priced.ID, ProductName: priced.Name, Quantity: 1, UnitPrice: 300, LineTotal: 300}},
	}

	// Another writer adds a line between pricing and placing.
	if err := db.Carts().AddItem(ctx, user.ID, extra.ID, 4); err != nil {
		t.Fatalf("AddItem extra: %v", err)
	}

	if err := db.Orders().Place(ctx, order); err != nil {
		t.Fatalf("Place: %v", err)
	}

	cart, err := db.Carts().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get cart: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Quantity(extra.ID) != 4 {
		t.Fatalf("expected only the unordered line to remain, got %+v", cart.Lines)
	}
}

func TestOrderRepository_PlaceRejectsChangedQuantity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "changed")
	p := createProduct(t, db, "Moving", 100)

	if err := db.Carts().AddItem(ctx, user.ID, p.ID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	order := &domain.Order{
		UserID: user.ID, Address: "x", PaymentMode: "card", Total: 200,
		Lines: []domain.OrderLine{{ProductID: p.ID, ProductName: p.Name, Quantity: 2, UnitPrice: 100, LineTotal: 200}},
	}

	// The quantity grows after pricing.
	if err := db.Carts().AddItem(ctx, user.ID, p.ID, 1); err != nil {
		t.Fatalf("AddItem again: %v", err)
	}

	if err := db.Orders().Place(ctx, order); !errors.Is(err, domain.ErrCartChanged) {
		t.Fatalf("expected ErrCartChanged, got %v", err)
	}

	orders, err := db.Orders().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no order, got %d", len(orders))
	}
	cart, err := db.Carts().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get cart: %v", err)
	}
	if cart.Quantity(p.ID) != 3 {
		t.Fatalf("expected cart untouched with 3 units, got %+v", cart.Lines)
	}
}

func TestOrderRepository_PlaceRejectsPartiallyRemovedCart(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "partial")
	a := createProduct(t, db, "Kept", 100)
	b := createProduct(t, db, "Dropped", 200)

	for _, p := range []*domain.Product{a, b} {
		if err := db.Carts().AddItem(ctx, user.ID, p.ID, 1); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}
	order := &domain.Order{
		UserID: user.ID, Address: "x", PaymentMode: "card", Total: 300,
		Lines: []domain.OrderLine{
			{ProductID: a.ID, ProductName: a.Name, Quantity: 1, UnitPrice: 100, LineTotal: 100},
			{ProductID: b.ID, ProductName: b.Name, Quantity: 1, UnitPrice: 200, LineTotal: 200},
		},
	}
	if err := db.Carts().RemoveItem(ctx, user.ID, b.ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}

	if err := db.Orders().Place(ctx, order); !errors.Is(err, domain.ErrCartChanged) {
		t.Fatalf("expected ErrCartChanged, got %v", err)
	}
	cart, err := db.Carts().Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("Get cart: %v", err)
	}
	if cart.Quantity(a.ID) != 1 {
		t.Fatal("rolled back checkout must leave the remaining line in place")
	}
}
