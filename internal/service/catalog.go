package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/storefront/internal/domain"
)

// CatalogService exposes the product catalog.
type CatalogService struct {
	products domain.ProductRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products domain.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// List returns every product ordered by id.
func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, unavailable("list products", err)
	}
	return products, nil
}

// Get returns a single product or ErrProductNotFound.
func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, id)
		}
		return nil, unavailable("get product", err)
	}
	return p, nil
}

// Create adds a product. price is a decimal string in major units, e.g. "4.50".
func (s *CatalogService) Create(ctx context.Context, name, description, price string) (*domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrInvalidInput)
	}

	cents, err := domain.ParseCents(price)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{Name: name, Description: description, Price: cents}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, passOr("create product", err, domain.ErrInvalidInput)
	}
	return p, nil
}

// defaultProducts is the starter catalog used on an empty database.
var defaultProducts = []struct {
	Name, Description, Price string
}{
	{"Espresso Beans", "1kg bag of dark roast beans", "18.90"},
	{"Ceramic Mug", "350ml stoneware mug", "9.50"},
	{"Pour-Over Kettle", "Gooseneck kettle, 1L", "39.00"},
	{"Paper Filters", "Pack of 100 cone filters", "4.25"},
	{"Hand Grinder", "Burr grinder with adjustable settings", "54.99"},
}

// SeedDefaults inserts the starter catalog when no products exist yet and
// returns how many products it created. Calling it again is a no-op.
func (s *CatalogService) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.products.Count(ctx)
	if err != nil {
		return 0, unavailable("count products", err)
	}
	if n > 0 {
		return 0, nil
	}

	created := 0
	for _, d := range defaultProducts {
		if _, err := s.Create(ctx, d.Name, d.Description, d.Price); err != nil {
			return created, fmt.Errorf("seed %q: %w", d.Name, err)
		}
		created++
	}
	return created, nil
}
