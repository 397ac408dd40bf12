package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateOrderNumber = errors.New("order number already taken")
	ErrInvalidTransition    = errors.New("status transition not allowed")
)

const uniqueViolation = "23505"

type Repository struct {
	MenuRepo   MenuRepositoryInterface
	OrderRepo  OrderRepositoryInterface
	ReportRepo ReportRepositoryInterface
}

func New(db *sql.DB) *Repository {
	return &Repository{
		MenuRepo:   NewMenuRepository(db),
		OrderRepo:  NewOrderRepository(db),
		ReportRepo: NewReportRepository(db),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
