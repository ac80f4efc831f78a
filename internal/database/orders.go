package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"campuseats/internal/model"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Create(ctx context.Context, o model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders (id, order_number, customer_id, customer_name, items,
			subtotal, tax, total, payment_method, status, display_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, o.ID, o.OrderNumber, o.CustomerID, o.CustomerName, string(items),
		o.Subtotal, o.Tax, o.Total, string(o.PaymentMethod), string(o.Status), o.Time, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every order in insertion order.
func (r *OrderRepo) List(ctx context.Context) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_number, customer_id, customer_name, items,
			subtotal, tax, total, payment_method, status, display_time, created_at
		FROM orders
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		var items []byte
		var method, status string
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &items,
			&o.Subtotal, &o.Tax, &o.Total, &method, &status, &o.Time, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items of %s: %w", o.ID, err)
		}
		o.PaymentMethod = model.PaymentMethod(method)
		o.Status = model.OrderStatus(status)
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}
