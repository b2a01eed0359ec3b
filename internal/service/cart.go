package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/metrics"
)

// CartService manages each user's cart. All operations on one user's cart are
// serialized through the shared UserLocks.
type CartService struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	locks    *UserLocks
}

// NewCartService creates a new CartService.
func NewCartService(carts domain.CartRepository, products domain.ProductRepository, locks *UserLocks) *CartService {
	return &CartService{carts: carts, products: products, locks: locks}
}

// AddItem adds quantity units of a product to the user's cart, creating the
// cart on first use. Repeated adds accumulate.
func (s *CartService) AddItem(ctx context.Context, user *domain.User, productID, quantity int64) (err error) {
	defer func() { metrics.RecordCartMutation("add", outcome(err)) }()

	if user == nil {
		return domain.ErrUnauthenticated
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidQuantity, quantity)
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, productID)
		}
		return unavailable("get product", err)
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	cart, err := s.carts.Get(ctx, user.ID)
	if err != nil {
		return unavailable("get cart", err)
	}
	if cart.Quantity(productID) > math.MaxInt64-quantity {
		return fmt.Errorf("%w: quantity too large", domain.ErrInvalidQuantity)
	}

	if err := s.carts.AddItem(ctx, user.ID, productID, quantity); err != nil {
		return unavailable("add cart item", err)
	}
	return nil
}

// View returns the user's cart; a user without a cart sees an empty one.
func (s *CartService) View(ctx context.Context, user *domain.User) (*domain.Cart, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	cart, err := s.carts.Get(ctx, user.ID)
	if err != nil {
		return nil, unavailable("get cart", err)
	}
	return cart, nil
}

// RemoveItem drops a product's line from the cart. Removing an absent line
// is not an error.
func (s *CartService) RemoveItem(ctx context.Context, user *domain.User, productID int64) (err error) {
	defer func() { metrics.RecordCartMutation("remove", outcome(err)) }()

	if user == nil {
		return domain.ErrUnauthenticated
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	if err := s.carts.RemoveItem(ctx, user.ID, productID); err != nil {
		return unavailable("remove cart item", err)
	}
	return nil
}

// Clear empties the user's cart. It is idempotent.
func (s *CartService) Clear(ctx context.Context, user *domain.User) (err error) {
	defer func() { metrics.RecordCartMutation("clear", outcome(err)) }()

	if user == nil {
		return domain.ErrUnauthenticated
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	if err := s.carts.Clear(ctx, user.ID); err != nil {
		return unavailable("clear cart", err)
	}
	return nil
}

// outcome names an error for metric labels.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage_unavailable"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrCartChanged):
		return "cart_changed"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}
