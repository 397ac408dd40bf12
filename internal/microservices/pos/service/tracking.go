package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/common/pagination"
	"restaurant-pos/internal/connections/rabbitmq"
	"restaurant-pos/internal/microservices/pos/domain/dao"
	"restaurant-pos/internal/microservices/pos/domain/dto"
	"restaurant-pos/internal/microservices/pos/repository"
)

type TrackingServiceInterface interface {
	List(ctx context.Context, status string, p pagination.Params) (pagination.Page[dao.Order], error)
	Get(ctx context.Context, number string) (dao.Order, error)
	Timeline(ctx context.Context, number string) (dto.TimelineResponse, error)
	UpdateStatus(ctx context.Context, number string, req dto.StatusUpdateRequest) (dto.StatusUpdateResponse, error)
}

type TrackingService struct {
	repo repository.OrderRepositoryInterface
	pub  Publisher
	log  *logger.Logger
	now  func() time.Time
}

func NewTrackingService(repo repository.OrderRepositoryInterface, pub Publisher, lg *logger.Logger) TrackingServiceInterface {
	return &TrackingService{repo: repo, pub: pub, log: lg, now: time.Now}
}

func (s *TrackingService) List(ctx context.Context, status string, p pagination.Params) (pagination.Page[dao.Order], error) {
	st := dao.Status(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return pagination.Page[dao.Order]{}, invalid("unknown status %q", status)
	}
	p = pagination.Normalize(p)
	orders, total, err := s.repo.ListOrders(ctx, st, p)
	if err != nil {
		return pagination.Page[dao.Order]{}, err
	}
	return pagination.NewPage(orders, p, total), nil
}

func (s *TrackingService) Get(ctx context.Context, number string) (dao.Order, error) {
	return s.repo.GetOrder(ctx, number)
}

func (s *TrackingService) Timeline(ctx context.Context, number string) (dto.TimelineResponse, error) {
	events, err := s.repo.GetTimeline(ctx, number)
	if err != nil {
		return dto.TimelineResponse{}, err
	}
	return dto.TimelineResponse{OrderNumber: number, Events: events}, nil
}

// UpdateStatus commits the change before notifying; a failed notification is
// logged and does not undo it.
func (s *TrackingService) UpdateStatus(ctx context.Context, number string, req dto.StatusUpdateRequest) (dto.StatusUpdateResponse, error) {
	to := dao.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	if !to.Valid() {
		return dto.StatusUpdateResponse{}, invalid("unknown status %q", req.Status)
	}
	changedBy := strings.TrimSpace(req.ChangedBy)
	if changedBy == "" {
		changedBy = source
	}

	old, err := s.repo.UpdateStatus(ctx, number, to, changedBy, strings.TrimSpace(req.Notes))
	if err != nil {
		return dto.StatusUpdateResponse{}, err
	}

	s.notify(ctx, dao.StatusMessage{
		OrderNumber: number,
		OldStatus:   old,
		NewStatus:   to,
		ChangedBy:   changedBy,
		Timestamp:   s.now().UTC(),
	})
	s.log.Info("order_status_changed", map[string]any{
		"order_number": number, "old_status": old, "new_status": to, "changed_by": changedBy,
	})
	return dto.StatusUpdateResponse{OrderNumber: number, OldStatus: old, NewStatus: to}, nil
}

func (s *TrackingService) notify(ctx context.Context, msg dao.StatusMessage) {
	body, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("status_marshal_failed", err, map[string]any{"order_number": msg.OrderNumber})
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = s.pub.Publish(ctx, rabbitmq.NotificationsExchange, "", amqp091.Publishing{
		DeliveryMode:  amqp091.Persistent,
		ContentType:   "application/json",
		MessageId:     uuid.NewString(),
		CorrelationId: msg.OrderNumber,
		Body:          body,
		Headers:       amqp091.Table{"x-source": source},
	})
	if err != nil {
		s.log.Error("status_publish_failed", err, map[string]any{"order_number": msg.OrderNumber})
	}
}
