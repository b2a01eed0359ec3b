package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// cartRepo implements domain.CartRepository using SQLite.
type cartRepo struct {
	db *sql.DB
}

func (r *cartRepo) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: userID}

	err := r.db.QueryRowContext(ctx,
		"SELECT updated_at FROM carts WHERE user_id = ?", userID,
	).Scan(&cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cart, nil
		}
		return nil, fmt.Errorf("query cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, quantity, added_at FROM cart_items
		 WHERE user_id = ? ORDER BY product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Lines = append(cart.Lines, l)
	}
	return cart, rows.Err()
}

func (r *cartRepo) AddItem(ctx context.Context, userID, productID, quantity int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO carts (user_id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET updated_at = excluded.updated_at`,
		userID, now, now,
	); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity, added_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = cart_items.quantity + excluded.quantity`,
		userID, productID, quantity, now,
	); err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *cartRepo) RemoveItem(ctx context.Context, userID, productID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id = ? AND product_id = ?", userID, productID,
	); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return r.touch(ctx, userID)
}

func (r *cartRepo) Clear(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return r.touch(ctx, userID)
}

func (r *cartRepo) touch(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE carts SET updated_at = ? WHERE user_id = ?", time.Now().UTC(), userID,
	); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
