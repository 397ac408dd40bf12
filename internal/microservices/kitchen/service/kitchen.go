package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp091 "github.com/rabbitmq/amqp091-go"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/connections/rabbitmq"
	"restaurant-pos/internal/microservices/kitchen/repository"
)

var (
	ErrRequeue = errors.New("requeue")     // nack(requeue=true)
	ErrDLQ     = errors.New("dead_letter") // nack(requeue=false)
)

// Publisher publishes and waits for the broker's confirm.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, msg amqp091.Publishing) error
}

// Consumer is the slice of *amqp091.Channel the worker consumes through.
type Consumer interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Cancel(consumer string, noWait bool) error
}

type KitchenServiceInterface interface {
	Run(ctx context.Context, ch Consumer) error
}

type KitchenService struct {
	db  repository.KitchenRepositoryInterface
	pub Publisher
	log *logger.Logger

	WorkerName string
	WorkerType string
	Queue      string
	OrderTypes []string // empty handles every type
	Prefetch   int
	BeatEvery  time.Duration

	CookDineIn   time.Duration
	CookTakeout  time.Duration
	CookDelivery time.Duration

	now func() time.Time
}

func NewKitchenService(db repository.KitchenRepositoryInterface, pub Publisher, lg *logger.Logger, cfg config.KitchenConfig, workerName, orderTypesCSV string) *KitchenService {
	types := ParseOrderTypes(orderTypesCSV)
	wtype := "general"
	if len(types) > 0 {
		wtype = strings.Join(types, ",")
	}
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	beat := cfg.Heartbeat
	if beat <= 0 {
		beat = 30 * time.Second
	}
	return &KitchenService{
		db:           db,
		pub:          pub,
		log:          lg,
		WorkerName:   workerName,
		WorkerType:   wtype,
		Queue:        rabbitmq.KitchenQueue,
		OrderTypes:   types,
		Prefetch:     prefetch,
		BeatEvery:    beat,
		CookDineIn:   cfg.CookDineIn,
		CookTakeout:  cfg.CookTakeout,
		CookDelivery: cfg.CookDelivery,
		now:          time.Now,
	}
}

func ParseOrderTypes(csv string) []string {
	var types []string
	for _, t := range strings.Split(csv, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			types = append(types, t)
		}
	}
	return types
}

func (ks *KitchenService) Run(ctx context.Context, ch Consumer) error {
	if strings.TrimSpace(ks.WorkerName) == "" {
		return fmt.Errorf("worker name is empty: pass --worker-name")
	}

	if err := ks.db.RegisterOrFail(ctx, ks.WorkerName, ks.WorkerType); err != nil {
		ks.log.Error("worker_registration_failed", err, map[string]any{"worker": ks.WorkerName})
		return err
	}
	ks.log.Info("worker_registered", map[string]any{"worker": ks.WorkerName, "type": ks.WorkerType})

	if err := ch.Qos(ks.Prefetch, 0, false); err != nil {
		return err
	}
	msgs, err := ch.Consume(ks.Queue, ks.WorkerName, false, false, false, false, nil)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	beatCtx, stopBeat := context.WithCancel(ctx)
	wg.Add(1)
	go func() {
		defer wg.Done()
		ks.heartbeat(beatCtx)
	}()

	ks.log.Info("consuming", map[string]any{"queue": ks.Queue, "prefetch": ks.Prefetch, "worker": ks.WorkerName})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range msgs {
			ks.settle(d, ks.handle(ctx, d.Body))
		}
	}()

	select {
	case <-ctx.Done():
	case <-done:
		ks.log.Warn("delivery_channel_closed", map[string]any{"worker": ks.WorkerName})
	}
	ks.log.Info("graceful_shutdown", map[string]any{"worker": ks.WorkerName})

	_ = ch.Cancel(ks.WorkerName, false)
	<-done
	stopBeat()
	wg.Wait()

	offCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ks.db.SetOffline(offCtx, ks.WorkerName); err != nil {
		ks.log.Error("set_offline_failed", err, map[string]any{"worker": ks.WorkerName})
	}
	return nil
}

func (ks *KitchenService) heartbeat(ctx context.Context) {
	t := time.NewTicker(ks.BeatEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := ks.db.Heartbeat(ctx, ks.WorkerName); err != nil {
				ks.log.Warn("heartbeat_failed", map[string]any{"worker": ks.WorkerName, "error": err.Error()})
				continue
			}
			ks.log.Debug("heartbeat_sent", map[string]any{"worker": ks.WorkerName})
		}
	}
}

// Acknowledger is implemented by amqp091.Delivery.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (ks *KitchenService) settle(d Acknowledger, err error) {
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrDLQ):
		_ = d.Nack(false, false)
	default:
		_ = d.Nack(false, true)
	}
}

type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Notes    string  `json:"notes,omitempty"`
}

type OrderPayload struct {
	OrderNumber     string      `json:"order_number"`
	CustomerName    string      `json:"customer_name"`
	OrderType       string      `json:"order_type"`
	TableNumber     int         `json:"table_number"`
	DeliveryAddress string      `json:"delivery_address"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"total_amount"`
	Priority        int         `json:"priority"`
}

func (ks *KitchenService) allowedType(t string) bool {
	if len(ks.OrderTypes) == 0 {
		return true
	}
	t = strings.ToLower(strings.TrimSpace(t))
	for _, v := range ks.OrderTypes {
		if t == v {
			return true
		}
	}
	return false
}

// handle runs one order through the kitchen and returns how the delivery
// should be settled.
func (ks *KitchenService) handle(ctx context.Context, body []byte) error {
	var msg OrderPayload
	if err := json.Unmarshal(body, &msg); err != nil {
		ks.log.Warn("malformed_order_message", map[string]any{"error": err.Error()})
		return ErrDLQ
	}
	if msg.OrderNumber == "" || msg.OrderType == "" {
		return ErrDLQ
	}
	if !ks.allowedType(msg.OrderType) {
		return ErrRequeue
	}

	// 1) received -> cooking
	started, err := ks.db.TryStartCooking(ctx, msg.OrderNumber, ks.WorkerName)
	if errors.Is(err, repository.ErrOrderNotFound) {
		ks.log.Warn("unknown_order", map[string]any{"order_number": msg.OrderNumber})
		return ErrDLQ
	}
	if err != nil {
		ks.log.Error("start_cooking_failed", err, map[string]any{"order_number": msg.OrderNumber})
		return ErrRequeue
	}
	if !started {
		return nil
	}
	eta := ks.now().UTC().Add(ks.cookDelayFor(msg.OrderType))
	if err := ks.publishStatus(ctx, msg.OrderNumber, "received", "cooking", &eta); err != nil {
		ks.log.Error("status_publish_failed", err, map[string]any{"order_number": msg.OrderNumber})
	}
	ks.log.Debug("order_processing_started", map[string]any{"order_number": msg.OrderNumber, "worker": ks.WorkerName})

	// 2) cook
	select {
	case <-time.After(ks.cookDelayFor(msg.OrderType)):
	case <-ctx.Done():
		return ErrRequeue
	}

	// 3) cooking -> ready
	ready, err := ks.db.MarkReady(ctx, msg.OrderNumber, ks.WorkerName)
	if err != nil {
		ks.log.Error("mark_ready_failed", err, map[string]any{"order_number": msg.OrderNumber})
		return ErrRequeue
	}
	if !ready {
		ks.log.Info("order_cancelled_while_cooking", map[string]any{"order_number": msg.OrderNumber})
		return nil
	}
	if err := ks.publishStatus(ctx, msg.OrderNumber, "cooking", "ready", nil); err != nil {
		ks.log.Error("status_publish_failed", err, map[string]any{"order_number": msg.OrderNumber})
	}
	ks.log.Debug("order_completed", map[string]any{"order_number": msg.OrderNumber, "worker": ks.WorkerName})
	return nil
}

func (ks *KitchenService) cookDelayFor(typ string) time.Duration {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "dine_in":
		return ks.CookDineIn
	case "delivery":
		return ks.CookDelivery
	default:
		return ks.CookTakeout
	}
}

type statusMsg struct {
	OrderNumber         string     `json:"order_number"`
	OldStatus           string     `json:"old_status"`
	NewStatus           string     `json:"new_status"`
	ChangedBy           string     `json:"changed_by"`
	Timestamp           time.Time  `json:"timestamp"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
}

func (ks *KitchenService) publishStatus(ctx context.Context, orderNumber, oldSt, newSt string, eta *time.Time) error {
	body, err := json.Marshal(statusMsg{
		OrderNumber:         orderNumber,
		OldStatus:           oldSt,
		NewStatus:           newSt,
		ChangedBy:           ks.WorkerName,
		Timestamp:           ks.now().UTC(),
		EstimatedCompletion: eta,
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ks.pub.Publish(ctx, rabbitmq.NotificationsExchange, "", amqp091.Publishing{
		DeliveryMode:  amqp091.Persistent,
		ContentType:   "application/json",
		MessageId:     uuid.NewString(),
		CorrelationId: orderNumber,
		Headers: amqp091.Table{
			"x-source": "kitchen",
			"x-worker": ks.WorkerName,
		},
		Body: body,
	})
}
