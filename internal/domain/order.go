package domain

import (
	"context"
	"time"
)

// Order is an immutable record of a completed checkout. Line prices are
// frozen at the moment the order was placed.
type Order struct {
	ID          int64
	UserID      int64
	Lines       []OrderLine
	Total       Cents
	Address     string
	PaymentMode string
	PlacedAt    time.Time
}

type OrderLine struct {
	ProductID   int64
	ProductName string
	Quantity    int64
	UnitPrice   Cents
	LineTotal   Cents
}

// Quote is a priced view of a cart.
type Quote struct {
	Lines []OrderLine
	Total Cents
}

// OrderRepository handles order persistence.
type OrderRepository interface {
	// Place stores the order and removes the ordered lines from the owner's
	// cart in a single transaction, assigning order.ID and order.PlacedAt.
	// It stores nothing and returns ErrEmptyCart if the cart was already
	// emptied, or ErrCartChanged if an ordered line no longer matches the cart.
	Place(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
}
