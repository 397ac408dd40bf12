package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/microservices/pos/domain/dao"
)

func TestReceipt(t *testing.T) {
	orders := newFakeOrders()
	_, err := orders.AddOrder(context.Background(), dao.Order{
		OrderNumber: "ORD_1", CustomerName: "Ada", OrderType: dao.OrderTypeTakeout, Status: dao.StatusReceived,
		Items: []dao.OrderItem{{Name: "Cola", Quantity: 2, Price: 5}}, Subtotal: 10, Tax: 1, TotalAmount: 11,
	}, "pos-service")
	require.NoError(t, err)

	arch := &fakeArchiver{}
	svc := NewReceiptService(orders, arch, logger.NewNop())

	pdf, err := svc.Receipt(context.Background(), "ORD_1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, []string{"ORD_1"}, arch.keys)

	arch.err = errBroker
	_, err = svc.Receipt(context.Background(), "ORD_1")
	assert.NoError(t, err, "archive failures do not block the receipt")

	_, err = svc.Receipt(context.Background(), "ORD_404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReceipt_WithoutArchiver(t *testing.T) {
	orders := newFakeOrders()
	_, _ = orders.AddOrder(context.Background(), dao.Order{OrderNumber: "ORD_1", Status: dao.StatusReceived}, "pos-service")

	svc := NewReceiptService(orders, nil, logger.NewNop())
	_, err := svc.Receipt(context.Background(), "ORD_1")
	assert.NoError(t, err)
}
