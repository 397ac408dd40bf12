package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"restaurant-pos/internal/common/pagination"
	"restaurant-pos/internal/connections/database"
	"restaurant-pos/internal/microservices/pos/domain/dao"
)

type OrderRepositoryInterface interface {
	NextSequence(ctx context.Context, day time.Time) (int, error)
	AddOrder(ctx context.Context, order dao.Order, changedBy string) (int64, error)
	GetOrder(ctx context.Context, number string) (dao.Order, error)
	ListOrders(ctx context.Context, status dao.Status, p pagination.Params) ([]dao.Order, int, error)
	GetTimeline(ctx context.Context, number string) ([]dao.StatusLogEntry, error)
	UpdateStatus(ctx context.Context, number string, to dao.Status, changedBy, notes string) (dao.Status, error)
}

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepositoryInterface {
	return &OrderRepository{db: db}
}

// NextSequence returns the 1-based position of the next order placed on day
// (UTC).
func (r *OrderRepository) NextSequence(ctx context.Context, day time.Time) (int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE created_at >= $1 AND created_at < $2
	`, start, start.AddDate(0, 0, 1)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get order count: %w", err)
	}
	return count + 1, nil
}

// AddOrder writes the order, its lines and the first status log entry in one
// transaction.
func (r *OrderRepository) AddOrder(ctx context.Context, order dao.Order, changedBy string) (int64, error) {
	var orderID int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO orders
			    (order_number, customer_name, order_type, table_number, delivery_address,
			     subtotal, tax, discount, total_amount, promo_applied, priority, status, created_at, updated_at)
			VALUES
			    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
			RETURNING id
		`,
			order.OrderNumber,
			order.CustomerName,
			string(order.OrderType),
			nullIfZero(order.TableNumber),
			nullIfEmpty(order.DeliveryAddress),
			order.Subtotal,
			order.Tax,
			order.Discount,
			order.TotalAmount,
			order.PromoApplied,
			order.Priority,
			string(order.Status),
		).Scan(&orderID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateOrderNumber
			}
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for _, item := range order.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, menu_item_id, name, quantity, price, notes, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, NOW())
			`, orderID, item.MenuItemID, item.Name, item.Quantity, item.Price, nullIfEmpty(item.Notes)); err != nil {
				return fmt.Errorf("failed to insert order item %s: %w", item.Name, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
			VALUES ($1, $2, $3, NOW())
		`, orderID, string(order.Status), changedBy); err != nil {
			return fmt.Errorf("failed to insert order status log: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

const orderColumns = `
	id, order_number, customer_name, order_type, COALESCE(table_number, 0), COALESCE(delivery_address, ''),
	subtotal, tax, discount, total_amount, promo_applied, priority, status, COALESCE(processed_by, ''),
	completed_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (dao.Order, error) {
	var (
		o           dao.Order
		orderType   string
		status      string
		completedAt sql.NullTime
	)
	err := s.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &orderType, &o.TableNumber, &o.DeliveryAddress,
		&o.Subtotal, &o.Tax, &o.Discount, &o.TotalAmount, &o.PromoApplied, &o.Priority, &status, &o.ProcessedBy,
		&completedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return dao.Order{}, err
	}
	o.OrderType = dao.OrderType(orderType)
	o.Status = dao.Status(status)
	if completedAt.Valid {
		t := completedAt.Time
		o.CompletedAt = &t
	}
	return o, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, number string) (dao.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return dao.Order{}, ErrNotFound
	}
	if err != nil {
		return dao.Order{}, fmt.Errorf("get order %s: %w", number, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, COALESCE(menu_item_id, ''), name, quantity, price, COALESCE(notes, '')
		FROM order_items WHERE order_id = $1 ORDER BY id
	`, o.ID)
	if err != nil {
		return dao.Order{}, fmt.Errorf("get order items %s: %w", number, err)
	}
	defer rows.Close()
	for rows.Next() {
		var it dao.OrderItem
		if err := rows.Scan(&it.ID, &it.MenuItemID, &it.Name, &it.Quantity, &it.Price, &it.Notes); err != nil {
			return dao.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

// ListOrders returns newest first. An empty status lists every order.
func (r *OrderRepository) ListOrders(ctx context.Context, status dao.Status, p pagination.Params) ([]dao.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)
	`, string(status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+`
		FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, string(status), p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []dao.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *OrderRepository) GetTimeline(ctx context.Context, number string) ([]dao.StatusLogEntry, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM orders WHERE order_number = $1`, number).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", number, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT status, changed_by, COALESCE(notes, ''), changed_at
		FROM order_status_log WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get timeline %s: %w", number, err)
	}
	defer rows.Close()

	out := []dao.StatusLogEntry{}
	for rows.Next() {
		var (
			e      dao.StatusLogEntry
			status string
		)
		if err := rows.Scan(&status, &e.ChangedBy, &e.Notes, &e.ChangedAt); err != nil {
			return nil, err
		}
		e.Status = dao.Status(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateStatus locks the order row, checks the transition and logs it. It
// returns the status the order had before the change.
func (r *OrderRepository) UpdateStatus(ctx context.Context, number string, to dao.Status, changedBy, notes string) (dao.Status, error) {
	var old dao.Status
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			id     int64
			status string
		)
		err := tx.QueryRowContext(ctx, `SELECT id, status FROM orders WHERE order_number = $1 FOR UPDATE`, number).Scan(&id, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		old = dao.Status(status)
		if !dao.CanTransition(old, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, old, to)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = $2,
			    updated_at = NOW(),
			    completed_at = CASE WHEN $2 IN ('completed', 'cancelled') THEN NOW() ELSE completed_at END
			WHERE id = $1
		`, id, string(to)); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_status_log (order_id, status, changed_by, changed_at, notes)
			VALUES ($1, $2, $3, NOW(), $4)
		`, id, string(to), changedBy, nullIfEmpty(notes)); err != nil {
			return fmt.Errorf("insert order status log: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return old, nil
}
