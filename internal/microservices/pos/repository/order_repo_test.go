package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/microservices/pos/domain/dao"
)

func newMock(t *testing.T) (*OrderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &OrderRepository{db: db}, mock
}

func sampleOrder() dao.Order {
	return dao.Order{
		OrderNumber:  "ORD_20240501_001",
		CustomerName: "Ada",
		OrderType:    dao.OrderTypeTakeout,
		Subtotal:     20,
		Tax:          2,
		TotalAmount:  22,
		Priority:     1,
		Status:       dao.StatusReceived,
		Items: []dao.OrderItem{
			{MenuItemID: "B", Name: "Cola", Quantity: 1, Price: 5},
			{MenuItemID: "C", Name: "Tiramisu", Quantity: 1, Price: 15},
		},
	}
}

func TestNextSequence(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	seq, err := repo.NextSequence(context.Background(), time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 5, seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddOrder_WritesEverythingInOneTx(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec("INSERT INTO order_items").WithArgs(int64(42), "B", "Cola", 1, 5.0, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").WithArgs(int64(42), "C", "Tiramisu", 1, 15.0, nil).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT INTO order_status_log").WithArgs(int64(42), "received", "pos-service").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	id, err := repo.AddOrder(context.Background(), sampleOrder(), "pos-service")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddOrder_DuplicateNumber(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	_, err := repo.AddOrder(context.Background(), sampleOrder(), "pos-service")
	assert.ErrorIs(t, err, ErrDuplicateOrderNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddOrder_ItemFailureRollsBack(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := repo.AddOrder(context.Background(), sampleOrder(), "pos-service")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cola")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM orders WHERE order_number").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetOrder(context.Background(), "ORD_X")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	t.Run("allowed transition", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, status FROM orders").WithArgs("ORD_1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(3, "ready"))
		mock.ExpectExec("UPDATE orders").WithArgs(int64(3), "completed").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_status_log").WithArgs(int64(3), "completed", "front-desk", "picked up").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		old, err := repo.UpdateStatus(context.Background(), "ORD_1", dao.StatusCompleted, "front-desk", "picked up")
		require.NoError(t, err)
		assert.Equal(t, dao.StatusReady, old)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("terminal status", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, status FROM orders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(3, "completed"))
		mock.ExpectRollback()

		_, err := repo.UpdateStatus(context.Background(), "ORD_1", dao.StatusCancelled, "front-desk", "")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown order", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, status FROM orders").WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))
		mock.ExpectRollback()

		_, err := repo.UpdateStatus(context.Background(), "ORD_404", dao.StatusCooking, "kitchen", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
