package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/microservices/pos/cart"
	"restaurant-pos/internal/microservices/pos/receipt"
	"restaurant-pos/internal/microservices/pos/repository"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMenuItemUnavailable = errors.New("menu item is not available")
	ErrItemNotInCart       = errors.New("item not in cart")
	ErrPublishFailed       = errors.New("order could not be sent to the kitchen")

	ErrNotFound          = repository.ErrNotFound
	ErrInvalidTransition = repository.ErrInvalidTransition
)

const source = "pos-service"

// Publisher is the slice of the RabbitMQ client the services need.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, msg amqp091.Publishing) error
}

type Service struct {
	MenuService     MenuServiceInterface
	CartService     CartServiceInterface
	OrderService    OrderServiceInterface
	TrackingService TrackingServiceInterface
	ReportService   ReportServiceInterface
	ReceiptService  ReceiptServiceInterface
}

type Deps struct {
	Repo             *repository.Repository
	Carts            *cart.Registry
	Rates            cart.Rates
	Pub              Publisher
	Archiver         receipt.ArchiverInterface
	WorkerStaleAfter time.Duration
	Log              *logger.Logger
}

func New(d Deps) *Service {
	return &Service{
		MenuService:     NewMenuService(d.Repo.MenuRepo),
		CartService:     NewCartService(d.Carts, d.Repo.MenuRepo, d.Rates),
		OrderService:    NewOrderService(d.Repo.OrderRepo, d.Carts, d.Rates, d.Pub, d.Log),
		TrackingService: NewTrackingService(d.Repo.OrderRepo, d.Pub, d.Log),
		ReportService:   NewReportService(d.Repo.ReportRepo, d.WorkerStaleAfter),
		ReceiptService:  NewReceiptService(d.Repo.OrderRepo, d.Archiver, d.Log),
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
