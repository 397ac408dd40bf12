package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"restaurant-pos/internal/microservices/pos/domain/dao"
)

type ReportRepositoryInterface interface {
	SalesSummary(ctx context.Context, from, to time.Time, topN int) (dao.SalesSummary, error)
	Workers(ctx context.Context) ([]dao.Worker, error)
}

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) ReportRepositoryInterface {
	return &ReportRepository{db: db}
}

// SalesSummary aggregates non-cancelled orders created in [from, to).
func (r *ReportRepository) SalesSummary(ctx context.Context, from, to time.Time, topN int) (dao.SalesSummary, error) {
	var s dao.SalesSummary
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(tax), 0), COALESCE(SUM(discount), 0)
		FROM orders
		WHERE status <> 'cancelled' AND created_at >= $1 AND created_at < $2
	`, from, to).Scan(&s.OrderCount, &s.Revenue, &s.Tax, &s.Discounts)
	if err != nil {
		return dao.SalesSummary{}, fmt.Errorf("sales totals: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.name, SUM(oi.quantity), SUM(oi.quantity * oi.price)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status <> 'cancelled' AND o.created_at >= $1 AND o.created_at < $2
		GROUP BY oi.name
		ORDER BY SUM(oi.quantity) DESC, oi.name
		LIMIT $3
	`, from, to, topN)
	if err != nil {
		return dao.SalesSummary{}, fmt.Errorf("top items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it dao.ItemSales
		if err := rows.Scan(&it.Name, &it.Quantity, &it.Revenue); err != nil {
			return dao.SalesSummary{}, err
		}
		s.TopItems = append(s.TopItems, it)
	}
	return s, rows.Err()
}

func (r *ReportRepository) Workers(ctx context.Context) ([]dao.Worker, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, type, status, orders_processed, last_seen
		FROM workers
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	out := []dao.Worker{}
	for rows.Next() {
		var w dao.Worker
		if err := rows.Scan(&w.Name, &w.Type, &w.Status, &w.OrdersProcessed, &w.LastSeen); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
