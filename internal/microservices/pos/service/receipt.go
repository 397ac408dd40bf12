package service

import (
	"context"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/microservices/pos/receipt"
	"restaurant-pos/internal/microservices/pos/repository"
)

type ReceiptServiceInterface interface {
	Receipt(ctx context.Context, number string) ([]byte, error)
}

type ReceiptService struct {
	repo     repository.OrderRepositoryInterface
	archiver receipt.ArchiverInterface
	log      *logger.Logger
}

// NewReceiptService accepts a nil archiver; receipts are then only rendered.
func NewReceiptService(repo repository.OrderRepositoryInterface, archiver receipt.ArchiverInterface, lg *logger.Logger) ReceiptServiceInterface {
	return &ReceiptService{repo: repo, archiver: archiver, log: lg}
}

func (s *ReceiptService) Receipt(ctx context.Context, number string) ([]byte, error) {
	order, err := s.repo.GetOrder(ctx, number)
	if err != nil {
		return nil, err
	}
	pdf, err := receipt.Render(order)
	if err != nil {
		return nil, err
	}
	if s.archiver != nil {
		loc, err := s.archiver.Archive(ctx, order.OrderNumber, pdf)
		if err != nil {
			s.log.Error("receipt_archive_failed", err, map[string]any{"order_number": number})
		} else {
			s.log.Debug("receipt_archived", map[string]any{"order_number": number, "location": loc})
		}
	}
	return pdf, nil
}
