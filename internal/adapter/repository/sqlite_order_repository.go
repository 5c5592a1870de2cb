package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
)

type sqliteOrderRepository struct {
	store *SQLiteStore
}

func NewSQLiteOrderRepository(store *SQLiteStore) repository.OrderRepository {
	return &sqliteOrderRepository{store: store}
}

const orderColumns = `id, order_id, customer_name, customer_email, shipping_address, items, subtotal, shipping, vat, total_amount, status, created_at, updated_at`

func scanOrder(row rowScanner) (*entity.Order, error) {
	var order entity.Order
	var itemsJSON string
	var status string
	err := row.Scan(
		&order.ID,
		&order.OrderID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.ShippingAddress,
		&itemsJSON,
		&order.Subtotal,
		&order.Shipping,
		&order.VAT,
		&order.TotalAmount,
		&status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = entity.OrderStatus(status)
	if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if order.Items == nil {
		order.Items = []entity.OrderItem{}
	}

	return &order, nil
}

func (r *sqliteOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return errors.Internal("Failed to encode order items", err)
	}

	_, err = r.store.conn.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.OrderID,
		order.CustomerName,
		order.CustomerEmail,
		order.ShippingAddress,
		string(itemsJSON),
		order.Subtotal,
		order.Shipping,
		order.VAT,
		order.TotalAmount,
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return errors.Internal("Failed to create order", err)
	}

	return nil
}

func (r *sqliteOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
}

func (r *sqliteOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderID)
}

func (r *sqliteOrderRepository) getOne(ctx context.Context, query, arg string) (*entity.Order, error) {
	order, err := scanOrder(r.store.conn.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Order", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get order", err)
	}
	return order, nil
}

func (r *sqliteOrderRepository) List(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.store.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Internal("Failed to list orders", err)
	}
	defer rows.Close()

	orders := []*entity.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Internal("Failed to parse order data", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to iterate orders", err)
	}

	return orders, nil
}

func (r *sqliteOrderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	res, err := r.store.conn.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return errors.Internal("Failed to update order status", err)
	}
	return expectOneRow(res, "Order")
}
