package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/metrics"
)

// CheckoutService turns carts into orders and reads order history.
//
// Per user the cart moves NoCart -> HasItems -> (Checkout) -> empty again.
// Checkout holds the user's lock from reading the cart until the order is
// stored and the cart emptied, and the store does both in one transaction.
type CheckoutService struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	orders   domain.OrderRepository
	locks    *UserLocks
}

// NewCheckoutService creates a new CheckoutService. locks must be the same
// table the CartService uses.
func NewCheckoutService(carts domain.CartRepository, products domain.ProductRepository, orders domain.OrderRepository, locks *UserLocks) *CheckoutService {
	return &CheckoutService{carts: carts, products: products, orders: orders, locks: locks}
}

// Checkout places an order for everything in the user's cart and empties the
// cart. A line whose product left the catalog fails the whole checkout with
// ErrProductNotFound; nothing is stored in that case.
func (s *CheckoutService) Checkout(ctx context.Context, user *domain.User, address, paymentMode string) (order *domain.Order, err error) {
	defer func() { metrics.RecordCheckout(outcome(err)) }()

	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	address = strings.TrimSpace(address)
	paymentMode = strings.TrimSpace(paymentMode)
	if address == "" || paymentMode == "" {
		return nil, fmt.Errorf("%w: address and payment mode are required", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	cart, err := s.carts.Get(ctx, user.ID)
	if err != nil {
		return nil, unavailable("get cart", err)
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	quote, err := s.price(ctx, cart)
	if err != nil {
		return nil, err
	}

	order = &domain.Order{
		UserID:      user.ID,
		Lines:       quote.Lines,
		Total:       quote.Total,
		Address:     address,
		PaymentMode: paymentMode,
	}
	if err := s.orders.Place(ctx, order); err != nil {
		return nil, passOr("place order", err, domain.ErrEmptyCart, domain.ErrCartChanged)
	}

	metrics.ObserveOrderTotal(int64(order.Total))
	slog.Info("order placed", "order_id", order.ID, "user_id", user.ID, "lines", len(order.Lines), "total", order.Total.String())
	return order, nil
}

// Quote prices the user's current cart without placing an order. An empty
// cart yields an empty quote.
func (s *CheckoutService) Quote(ctx context.Context, user *domain.User) (*domain.Quote, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	cart, err := s.carts.Get(ctx, user.ID)
	if err != nil {
		return nil, unavailable("get cart", err)
	}
	if cart.IsEmpty() {
		return &domain.Quote{}, nil
	}
	return s.price(ctx, cart)
}

// ListOrders returns the user's orders, newest first.
func (s *CheckoutService) ListOrders(ctx context.Context, user *domain.User) ([]domain.Order, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	orders, err := s.orders.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, unavailable("list orders", err)
	}
	return orders, nil
}

// GetOrder returns one of the user's orders. Orders belonging to someone else
// are reported as ErrNotFound.
func (s *CheckoutService) GetOrder(ctx context.Context, user *domain.User, id int64) (*domain.Order, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, passOr("get order", err, domain.ErrNotFound)
	}
	if order.UserID != user.ID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// price resolves every cart line against the catalog at its current price.
func (s *CheckoutService) price(ctx context.Context, cart *domain.Cart) (*domain.Quote, error) {
	quote := &domain.Quote{Lines: make([]domain.OrderLine, 0, len(cart.Lines))}

	for _, line := range cart.Lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: cart line references removed product %d", domain.ErrProductNotFound, line.ProductID)
			}
			return nil, unavailable("get product", err)
		}

		lineTotal, ok := product.Price.Times(line.Quantity)
		if !ok {
			return nil, fmt.Errorf("%w: line total for product %d overflows", domain.ErrInvalidQuantity, line.ProductID)
		}
		total, ok := quote.Total.Plus(lineTotal)
		if !ok {
			return nil, fmt.Errorf("%w: order total overflows", domain.ErrInvalidQuantity)
		}

		quote.Total = total
		quote.Lines = append(quote.Lines, domain.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			LineTotal:   lineTotal,
		})
	}
	return quote, nil
}
