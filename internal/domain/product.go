package domain

import (
	"context"
	"time"
)

// Product is a catalog entry. Prices are stored in minor units.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       Cents
	CreatedAt   time.Time
}

// ProductRepository defines persistence operations for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}
