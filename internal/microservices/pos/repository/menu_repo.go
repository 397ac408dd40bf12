package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant-pos/internal/common/pagination"
	"restaurant-pos/internal/microservices/pos/domain/dao"
)

type MenuRepositoryInterface interface {
	List(ctx context.Context, category string, p pagination.Params) ([]dao.MenuItem, int, error)
	Get(ctx context.Context, id string) (dao.MenuItem, error)
	Create(ctx context.Context, item dao.MenuItem) (dao.MenuItem, error)
}

type MenuRepository struct {
	db *sql.DB
}

func NewMenuRepository(db *sql.DB) MenuRepositoryInterface {
	return &MenuRepository{db: db}
}

// List filters by category when one is given. An empty category lists all.
func (r *MenuRepository) List(ctx context.Context, category string, p pagination.Params) ([]dao.MenuItem, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM menu_items WHERE ($1 = '' OR category = $1)
	`, category).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count menu items: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, COALESCE(image, ''), price, available, created_at
		FROM menu_items
		WHERE ($1 = '' OR category = $1)
		ORDER BY category, name
		LIMIT $2 OFFSET $3
	`, category, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var out []dao.MenuItem
	for rows.Next() {
		var m dao.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Image, &m.Price, &m.Available, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *MenuRepository) Get(ctx context.Context, id string) (dao.MenuItem, error) {
	var m dao.MenuItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, category, COALESCE(image, ''), price, available, created_at
		FROM menu_items WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Category, &m.Image, &m.Price, &m.Available, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return dao.MenuItem{}, ErrNotFound
	}
	if err != nil {
		return dao.MenuItem{}, fmt.Errorf("get menu item %s: %w", id, err)
	}
	return m, nil
}

func (r *MenuRepository) Create(ctx context.Context, item dao.MenuItem) (dao.MenuItem, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO menu_items (id, name, category, image, price, available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`, item.ID, item.Name, item.Category, nullIfEmpty(item.Image), item.Price, item.Available).Scan(&item.CreatedAt)
	if err != nil {
		return dao.MenuItem{}, fmt.Errorf("insert menu item: %w", err)
	}
	return item, nil
}
