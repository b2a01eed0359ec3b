package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/repository/sqlite"
	"github.com/msomdec/storefront/internal/service"
	"golang.org/x/sync/errgroup"
)

type shop struct {
	db       *sqlite.DB
	auth     *service.AuthService
	catalog  *service.CatalogService
	carts    *service.CartService
	checkout *service.CheckoutService
	locks    *service.UserLocks
}

func newTestShop(t *testing.T) *shop {
	t.Helper()
	db := newTestDB(t)
	locks := service.NewUserLocks()
	return &shop{
		db:       db,
		auth:     service.NewAuthService(db.Users(), db.Sessions(), testJWTSecret, 4, time.Hour),
		catalog:  service.NewCatalogService(db.Products()),
		carts:    service.NewCartService(db.Carts(), db.Products(), locks),
		checkout: service.NewCheckoutService(db.Carts(), db.Products(), db.Orders(), locks),
		locks:    locks,
	}
}

func (s *shop) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := s.auth.Register(context.Background(), name, "", "password123")
	if err != nil {
		t.Fatalf("Register %s: %v", name, err)
	}
	return u
}

func (s *shop) product(t *testing.T, name, price string) *domain.Product {
	t.Helper()
	p, err := s.catalog.Create(context.Background(), name, "", price)
	if err != nil {
		t.Fatalf("Create product %s: %v", name, err)
	}
	return p
}

func TestCartService_AddItemAccumulates(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	user := s.user(t, "acc")
	p := s.product(t, "Widget", "2.50")

	total := int64(0)
	for _, q := range []int64{2, 3, 7, 1} {
		if err := s.carts.AddItem(ctx, user, p.ID, q); err != nil {
			t.Fatalf("AddItem(%d): %v", q, err)
		}
		total += q
	}

	cart, err := s.carts.View(ctx, user)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	if got := cart.Quantity(p.ID); got != total {
		t.Fatalf("expected quantity %d, got %d", total, got)
	}
}

func TestCartService_AddItemValidation(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	user := s.user(t, "val")
	p := s.product(t, "Gadget", "1.00")

	for _, q := range []int64{0, -1} {
		if err := s.carts.AddItem(ctx, user, p.ID, q); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", q, err)
		}
	}
	if err := s.carts.AddItem(ctx, user, 9999, 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if err := s.carts.AddItem(ctx, nil, p.ID, 1); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	cart, err := s.carts.View(ctx, user)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("rejected adds must not create lines, got %+v", cart.Lines)
	}
}

func TestCartService_ViewWithoutCart(t *testing.T) {
	s := newTestShop(t)
	user := s.user(t, "fresh")

	cart, err := s.carts.View(context.Background(), user)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatal("expected empty cart for a new user")
	}
}

func TestCartService_ClearIsIdempotent(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	user := s.user(t, "clear")
	p := s.product(t, "Thing", "3.00")

	if err := s.carts.Clear(ctx, user); err != nil {
		t.Fatalf("Clear without cart: %v", err)
	}
	if err := s.carts.AddItem(ctx, user, p.ID, 4); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.carts.Clear(ctx, user); err != nil {
			t.Fatalf("Clear #%d: %v", i+1, err)
		}
	}

	cart, err := s.carts.View(ctx, user)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", cart.Lines)
	}
}

func TestCartService_RemoveItem(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	user := s.user(t, "remove")
	keep := s.product(t, "Keep", "1.00")
	drop := s.product(t, "Drop", "1.00")

	for _, p := range []*domain.Product{keep, drop} {
		if err := s.carts.AddItem(ctx, user, p.ID, 1); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}
	if err := s.carts.RemoveItem(ctx, user, drop.ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if err := s.carts.RemoveItem(ctx, user, drop.ID); err != nil {
		t.Fatalf("RemoveItem absent line: %v", err)
	}

	cart, err := s.carts.View(ctx, user)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if cart.Quantity(keep.ID) != 1 || cart.Quantity(drop.ID) != 0 {
		t.Fatalf("unexpected lines: %+v", cart.Lines)
	}
}

func TestCartService_ConcurrentAddItem(t *testing.T) {
	s := newTestShop(t)
	user := s.user(t, "busy")
	p := s.product(t, "Popular", "0.99")

	const N = 50
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			return s.carts.AddItem(ctx, user, p.ID, 2)
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddItem failed: %v", err)
	}

	cart, err := s.carts.View(context.Background(), user)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if got := cart.Quantity(p.ID); got != 2*N {
		t.Fatalf("expected quantity %d, got %d", 2*N, got)
	}
	if s.locks.Len() != 0 {
		t.Fatalf("expected lock table to drain, got %d entries", s.locks.Len())
	}
}

func TestCartService_CartsAreIsolatedPerUser(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	p := s.product(t, "Shared", "5.00")

	users := make([]*domain.User, 3)
	for i := range users {
		users[i] = s.user(t, fmt.Sprintf("user%d", i))
		if err := s.carts.AddItem(ctx, users[i], p.ID, int64(i+1)); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}

	for i, u := range users {
		cart, err := s.carts.View(ctx, u)
		if err != nil {
			t.Fatalf("View: %v", err)
		}
		if got := cart.Quantity(p.ID); got != int64(i+1) {
			t.Fatalf("user %d: expected quantity %d, got %d", i, i+1, got)
		}
	}
}
