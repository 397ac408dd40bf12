package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/connections/rabbitmq"
)

type StatusUpdate struct {
	OrderNumber         string     `json:"order_number"`
	OldStatus           string     `json:"old_status"`
	NewStatus           string     `json:"new_status"`
	ChangedBy           string     `json:"changed_by"`
	Timestamp           time.Time  `json:"timestamp"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
}

// Consumer is the slice of *amqp091.Channel the subscriber needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Cancel(consumer string, noWait bool) error
}

type NotificatorService struct {
	ch  Consumer
	out io.Writer
	log *logger.Logger
}

func NewNotificatorService(ch Consumer, out io.Writer, lg *logger.Logger) *NotificatorService {
	return &NotificatorService{ch: ch, out: out, log: lg}
}

func Decode(body []byte) (StatusUpdate, error) {
	var u StatusUpdate
	if err := json.Unmarshal(body, &u); err != nil {
		return StatusUpdate{}, err
	}
	if u.OrderNumber == "" || u.NewStatus == "" {
		return StatusUpdate{}, errors.New("status update without order number or new status")
	}
	return u, nil
}

func (u StatusUpdate) String() string {
	s := fmt.Sprintf("Notification for order %s: status changed from '%s' to '%s' by %s.", u.OrderNumber, u.OldStatus, u.NewStatus, u.ChangedBy)
	if u.EstimatedCompletion != nil {
		s += " Estimated completion " + u.EstimatedCompletion.UTC().Format(time.RFC3339) + "."
	}
	return s
}

const consumerTag = "notification-subscriber"

// Notify consumes until ctx is cancelled or the broker closes the channel.
func (ns *NotificatorService) Notify(ctx context.Context) error {
	msgs, err := ns.ch.Consume(rabbitmq.NotificationsQueue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", rabbitmq.NotificationsQueue, err)
	}
	for {
		select {
		case <-ctx.Done():
			_ = ns.ch.Cancel(consumerTag, false)
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("notifications channel closed")
			}
			ns.deliver(d)
		}
	}
}

func (ns *NotificatorService) deliver(d amqp091.Delivery) {
	u, err := Decode(d.Body)
	if err != nil {
		ns.log.Warn("malformed_notification", map[string]any{"error": err.Error(), "message_id": d.MessageId})
		_ = d.Nack(false, false)
		return
	}
	ns.log.Debug("notification_received", map[string]any{
		"order_number": u.OrderNumber,
		"old_status":   u.OldStatus,
		"new_status":   u.NewStatus,
		"changed_by":   u.ChangedBy,
	})
	fmt.Fprintln(ns.out, u.String())
	_ = d.Ack(false)
}
