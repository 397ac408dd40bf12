package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/connections/rabbitmq"
	"restaurant-pos/internal/microservices/pos/cart"
	"restaurant-pos/internal/microservices/pos/domain/dao"
	"restaurant-pos/internal/microservices/pos/domain/dto"
	"restaurant-pos/internal/microservices/pos/repository"
)

const (
	maxNumberAttempts = 3
	publishTimeout    = 5 * time.Second
)

type OrderServiceInterface interface {
	Checkout(ctx context.Context, session string, req dto.CheckoutRequest) (dto.CheckoutResponse, error)
}

type OrderService struct {
	db    repository.OrderRepositoryInterface
	carts *cart.Registry
	rates cart.Rates
	pub   Publisher
	log   *logger.Logger
	now   func() time.Time
}

func NewOrderService(db repository.OrderRepositoryInterface, carts *cart.Registry, rates cart.Rates, pub Publisher, lg *logger.Logger) OrderServiceInterface {
	return &OrderService{db: db, carts: carts, rates: rates, pub: pub, log: lg, now: time.Now}
}

// Priority buckets the kitchen uses to order its queue.
func Priority(total float64) int {
	switch {
	case total >= 100:
		return 10
	case total >= 50:
		return 5
	default:
		return 1
	}
}

// OrderNumber formats ORD_YYYYMMDD_NNN.
func OrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD_%s_%03d", day.UTC().Format("20060102"), seq)
}

func validateCheckout(req dto.CheckoutRequest) error {
	if req.CustomerName == "" {
		return invalid("customer name is required")
	}
	if len(req.CustomerName) > 100 {
		return invalid("customer name is too long")
	}
	switch dao.OrderType(req.OrderType) {
	case dao.OrderTypeDineIn:
		if req.TableNumber < 1 || req.TableNumber > 100 {
			return invalid("dine_in orders need a table number between 1 and 100")
		}
		if req.DeliveryAddress != "" {
			return invalid("dine_in orders cannot have a delivery address")
		}
	case dao.OrderTypeDelivery:
		if len(req.DeliveryAddress) < 10 {
			return invalid("delivery orders need a delivery address of at least 10 characters")
		}
		if req.TableNumber != 0 {
			return invalid("delivery orders cannot have a table number")
		}
	case dao.OrderTypeTakeout:
		if req.TableNumber != 0 || req.DeliveryAddress != "" {
			return invalid("takeout orders cannot have a table number or delivery address")
		}
	default:
		return invalid("invalid order type %q", req.OrderType)
	}
	return nil
}

// Checkout turns the session's cart into a received order and hands it to
// the kitchen. The lines that were ordered leave the cart only after the
// order is stored and published. Only one checkout per session runs at a
// time; a concurrent one gets cart.ErrCheckoutInProgress.
func (s *OrderService) Checkout(ctx context.Context, session string, req dto.CheckoutRequest) (dto.CheckoutResponse, error) {
	// 1. Validation
	req.Normalize()
	if err := validateCheckout(req); err != nil {
		return dto.CheckoutResponse{}, err
	}
	items, err := s.carts.BeginCheckout(session)
	if err != nil {
		return dto.CheckoutResponse{}, err
	}
	var ordered []cart.LineItem
	defer func() { s.carts.EndCheckout(session, ordered) }()

	if len(items) == 0 {
		return dto.CheckoutResponse{}, ErrEmptyCart
	}
	if err := cart.ValidateAmounts(items); err != nil {
		return dto.CheckoutResponse{}, err
	}

	// 2. Pricing
	totals := s.rates.Calculate(items, req.PromoApplied)
	order := dao.Order{
		CustomerName:    req.CustomerName,
		OrderType:       dao.OrderType(req.OrderType),
		TableNumber:     req.TableNumber,
		DeliveryAddress: req.DeliveryAddress,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		Discount:        totals.Discount,
		TotalAmount:     totals.Total,
		PromoApplied:    req.PromoApplied,
		Priority:        Priority(totals.Total),
		Status:          dao.StatusReceived,
		Items:           orderItems(items),
	}

	// 3. Save, retrying when a concurrent checkout took the same number
	if err := s.save(ctx, &order); err != nil {
		return dto.CheckoutResponse{}, err
	}

	// 4. Publish to the kitchen
	if err := s.publish(ctx, order); err != nil {
		s.log.Error("order_publish_failed", err, map[string]any{"order_number": order.OrderNumber})
		if _, cerr := s.db.UpdateStatus(ctx, order.OrderNumber, dao.StatusCancelled, source, "kitchen publish failed"); cerr != nil {
			s.log.Error("order_cancel_failed", cerr, map[string]any{"order_number": order.OrderNumber})
		}
		return dto.CheckoutResponse{}, fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	// 5. Release the ordered lines
	ordered = items

	s.log.Info("order_received", map[string]any{
		"order_number": order.OrderNumber,
		"order_type":   order.OrderType,
		"priority":     order.Priority,
		"total_amount": order.TotalAmount,
	})

	return dto.CheckoutResponse{
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Priority:    order.Priority,
		Subtotal:    totals.Subtotal,
		Tax:         totals.Tax,
		Discount:    totals.Discount,
		TotalAmount: totals.Total,
	}, nil
}

func (s *OrderService) save(ctx context.Context, order *dao.Order) error {
	now := s.now().UTC()
	for attempt := 1; ; attempt++ {
		seq, err := s.db.NextSequence(ctx, now)
		if err != nil {
			return err
		}
		order.OrderNumber = OrderNumber(now, seq)
		id, err := s.db.AddOrder(ctx, *order, source)
		if err == nil {
			order.ID = id
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) || attempt == maxNumberAttempts {
			return fmt.Errorf("failed to save order: %w", err)
		}
		s.log.Debug("order_number_retry", map[string]any{"order_number": order.OrderNumber, "attempt": attempt})
	}
}

func (s *OrderService) publish(ctx context.Context, order dao.Order) error {
	body, err := json.Marshal(dao.NewOrderMessage(order))
	if err != nil {
		return fmt.Errorf("failed to marshal order message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	routingKey := fmt.Sprintf("kitchen.%s.%d", order.OrderType, order.Priority)
	return s.pub.Publish(ctx, rabbitmq.OrdersExchange, routingKey, amqp091.Publishing{
		DeliveryMode:  amqp091.Persistent,
		ContentType:   "application/json",
		Body:          body,
		MessageId:     uuid.NewString(),
		CorrelationId: order.OrderNumber,
		Timestamp:     s.now().UTC(),
		Priority:      uint8(order.Priority),
		Headers: amqp091.Table{
			"x-source": source,
		},
	})
}

func orderItems(lines []cart.LineItem) []dao.OrderItem {
	out := make([]dao.OrderItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, dao.OrderItem{
			MenuItemID: l.ID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			Price:      l.Price,
			Notes:      l.Notes,
		})
	}
	return out
}
