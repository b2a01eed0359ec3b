package domain

import (
	"context"
	"time"
)

// Cart is a user's pending selection of products. A user has at most one
// cart; it comes into existence on the first AddItem.
type Cart struct {
	UserID    int64
	Lines     []CartLine // ordered by ProductID
	UpdatedAt time.Time
}

// CartLine is one product in a cart. Quantity is always positive.
type CartLine struct {
	ProductID int64
	Quantity  int64
	AddedAt   time.Time
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// Quantity returns the quantity of a product in the cart, or 0.
func (c *Cart) Quantity(productID int64) int64 {
	if c == nil {
		return 0
	}
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int64 {
	if c == nil {
		return 0
	}
	var n int64
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// CartRepository defines persistence operations for carts.
type CartRepository interface {
	// Get returns the user's cart. A user without a cart gets an empty cart,
	// never ErrNotFound.
	Get(ctx context.Context, userID int64) (*Cart, error)
	// AddItem creates the cart if needed and adds quantity to the product's
	// line, inserting the line when it is absent.
	AddItem(ctx context.Context, userID, productID, quantity int64) error
	RemoveItem(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}
