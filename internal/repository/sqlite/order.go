package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/storefront/internal/domain"
)

// orderRepo implements domain.OrderRepository using SQLite.
type orderRepo struct {
	db *sql.DB
}

func (r *orderRepo) execTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %w; rollback err: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *orderRepo) Place(ctx context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	var orderID int64

	err := r.execTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO orders (user_id, address, payment_mode, total_cents, placed_at)
			 VALUES (?, ?, ?, ?, ?)`,
			order.UserID, order.Address, order.PaymentMode, int64(order.Total), now,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		orderID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("get order id: %w", err)
		}

		for i, l := range order.Lines {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO order_lines (order_id, line_no, product_id, product_name, quantity, unit_price_cents, line_total_cents)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				orderID, i, l.ProductID, l.ProductName, l.Quantity, int64(l.UnitPrice), int64(l.LineTotal),
			); err != nil {
				return fmt.Errorf("insert order line %d: %w", i, err)
			}
		}

		if err := consumeCartLines(ctx, tx, order); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE carts SET updated_at = ? WHERE user_id = ?", now, order.UserID,
		); err != nil {
			return fmt.Errorf("touch cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.ID = orderID
	order.PlacedAt = now
	return nil
}

// consumeCartLines removes exactly the ordered (product, quantity) pairs from
// the cart. Lines added after pricing stay in the cart. If any ordered line
// no longer matches, nothing is removed and the transaction must roll back.
func consumeCartLines(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	var matched int
	for _, l := range order.Lines {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM cart_items WHERE user_id = ? AND product_id = ? AND quantity = ?",
			order.UserID, l.ProductID, l.Quantity,
		)
		if err != nil {
			return fmt.Errorf("consume cart line: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		matched += int(n)
	}
	if matched == len(order.Lines) {
		return nil
	}

	if matched == 0 {
		var remaining int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM cart_items WHERE user_id = ?", order.UserID,
		).Scan(&remaining); err != nil {
			return fmt.Errorf("count cart items: %w", err)
		}
		if remaining == 0 {
			// Someone else checked this cart out first.
			return domain.ErrEmptyCart
		}
	}
	return domain.ErrCartChanged
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT id, user_id, address, payment_mode, total_cents, placed_at FROM orders WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query order: %w", err)
	}

	lines, err := r.loadLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, address, payment_mode, total_cents, placed_at
		 FROM orders WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	// Lines are loaded after the order cursor is closed: the pool has a
	// single connection.
	for i := range orders {
		lines, err := r.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (r *orderRepo) loadLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, product_name, quantity, unit_price_cents, line_total_cents
		 FROM order_lines WHERE order_id = ? ORDER BY line_no`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var (
			l                 domain.OrderLine
			unitPrice, totals int64
		)
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &unitPrice, &totals); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		l.UnitPrice = domain.Cents(unitPrice)
		l.LineTotal = domain.Cents(totals)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o     domain.Order
		total int64
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.Address, &o.PaymentMode, &total, &o.PlacedAt); err != nil {
		return nil, err
	}
	o.Total = domain.Cents(total)
	return &o, nil
}
