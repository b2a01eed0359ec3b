package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// productRepo implements domain.ProductRepository using SQLite.
type productRepo struct {
	db *sql.DB
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO products (name, description, price_cents, created_at) VALUES (?, ?, ?, ?)`,
		p.Name, p.Description, int64(p.Price), now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: product %q already exists", domain.ErrInvalidInput, p.Name)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	p.ID = id
	p.CreatedAt = now
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *productRepo) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	return r.getOne(ctx, "name = ?", name)
}

func (r *productRepo) getOne(ctx context.Context, where string, arg any) (*domain.Product, error) {
	var (
		p     domain.Product
		price int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, price_cents, created_at FROM products WHERE `+where, arg,
	).Scan(&p.ID, &p.Name, &p.Description, &price, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query product: %w", err)
	}
	p.Price = domain.Cents(price)
	return &p, nil
}

func (r *productRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, price_cents, created_at FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p     domain.Product
			price int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Price = domain.Cents(price)
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
