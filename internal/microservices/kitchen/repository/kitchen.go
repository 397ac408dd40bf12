package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant-pos/internal/connections/database"
)

var (
	ErrWorkerOnline  = errors.New("worker already online")
	ErrOrderNotFound = errors.New("order not found")
)

type KitchenRepositoryInterface interface {
	RegisterOrFail(ctx context.Context, name, wtype string) error
	SetOffline(ctx context.Context, name string) error
	Heartbeat(ctx context.Context, name string) error

	// order_number is unique and is what notifications carry
	TryStartCooking(ctx context.Context, orderNumber, workerName string) (bool, error)
	MarkReady(ctx context.Context, orderNumber, workerName string) (bool, error)
}

type KitchenRepository struct {
	db *sql.DB
}

func NewKitchenRepository(db *sql.DB) KitchenRepositoryInterface {
	return &KitchenRepository{db: db}
}

func (r *KitchenRepository) Heartbeat(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE workers SET last_seen = NOW() WHERE name = $1`, name)
	return err
}

// RegisterOrFail inserts the worker or brings an offline one back. A worker
// that is still online under the same name is refused.
func (r *KitchenRepository) RegisterOrFail(ctx context.Context, name, wtype string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM workers WHERE name = $1 FOR UPDATE`, name).Scan(&status)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, `
				INSERT INTO workers (name, type, status, last_seen) VALUES ($1, $2, 'online', NOW())
			`, name, wtype)
			return err
		case err != nil:
			return err
		case status == "online":
			return fmt.Errorf("%w: %s", ErrWorkerOnline, name)
		default:
			_, err = tx.ExecContext(ctx, `
				UPDATE workers SET type = $2, status = 'online', last_seen = NOW() WHERE name = $1
			`, name, wtype)
			return err
		}
	})
}

func (r *KitchenRepository) SetOffline(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE workers SET status = 'offline', last_seen = NOW() WHERE name = $1`, name)
	return err
}

// TryStartCooking moves received -> cooking. It reports false without error
// when the order already left received, so redeliveries are harmless.
func (r *KitchenRepository) TryStartCooking(ctx context.Context, orderNumber, workerName string) (bool, error) {
	started := false
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			id     int64
			status string
		)
		err := tx.QueryRowContext(ctx, `SELECT id, status FROM orders WHERE order_number = $1 FOR UPDATE`, orderNumber).Scan(&id, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if status != "received" {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE orders SET status = 'cooking', processed_by = $2, updated_at = NOW() WHERE id = $1
		`, id, workerName); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_status_log (order_id, status, changed_by, changed_at) VALUES ($1, 'cooking', $2, NOW())
		`, id, workerName); err != nil {
			return err
		}
		started = true
		return nil
	})
	return started, err
}

// MarkReady moves cooking -> ready and bumps the worker's counter. It
// reports false when the order was cancelled while cooking.
func (r *KitchenRepository) MarkReady(ctx context.Context, orderNumber, workerName string) (bool, error) {
	ready := false
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `
			UPDATE orders SET status = 'ready', updated_at = NOW()
			WHERE order_number = $1 AND status = 'cooking'
			RETURNING id
		`, orderNumber).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_status_log (order_id, status, changed_by, changed_at) VALUES ($1, 'ready', $2, NOW())
		`, id, workerName); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE workers SET orders_processed = orders_processed + 1, last_seen = NOW() WHERE name = $1
		`, workerName); err != nil {
			return err
		}
		ready = true
		return nil
	})
	return ready, err
}
