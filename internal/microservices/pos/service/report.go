package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-pos/internal/microservices/pos/domain/dao"
	"restaurant-pos/internal/microservices/pos/domain/dto"
	"restaurant-pos/internal/microservices/pos/repository"
)

const (
	dateLayout = "2006-01-02"
	topItems   = 5
)

type ReportServiceInterface interface {
	Sales(ctx context.Context, from, to string) (dto.SalesReport, error)
	Workers(ctx context.Context) ([]dao.Worker, error)
}

type ReportService struct {
	repo       repository.ReportRepositoryInterface
	staleAfter time.Duration
	now        func() time.Time
}

// NewReportService reports a worker offline once its last heartbeat is older
// than staleAfter, whatever its stored status says. Zero disables the check.
func NewReportService(repo repository.ReportRepositoryInterface, staleAfter time.Duration) ReportServiceInterface {
	return &ReportService{repo: repo, staleAfter: staleAfter, now: time.Now}
}

// Sales covers whole UTC days, from and to inclusive. Both default to today.
func (s *ReportService) Sales(ctx context.Context, from, to string) (dto.SalesReport, error) {
	today := s.now().UTC().Format(dateLayout)
	if from == "" {
		from = today
	}
	if to == "" {
		to = from
	}
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return dto.SalesReport{}, invalid("from must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return dto.SalesReport{}, invalid("to must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return dto.SalesReport{}, invalid("to is before from")
	}

	sum, err := s.repo.SalesSummary(ctx, start, end.AddDate(0, 0, 1), topItems)
	if err != nil {
		return dto.SalesReport{}, err
	}

	revenue := money(sum.Revenue)
	avg := decimal.Zero
	if sum.OrderCount > 0 {
		avg = decimal.NewFromFloat(sum.Revenue).Div(decimal.NewFromInt(int64(sum.OrderCount))).Round(2)
	}
	report := dto.SalesReport{
		From:          from,
		To:            to,
		OrderCount:    sum.OrderCount,
		Revenue:       revenue,
		Tax:           money(sum.Tax),
		Discounts:     money(sum.Discounts),
		AverageTicket: avg,
		TopItems:      make([]dto.TopItem, 0, len(sum.TopItems)),
	}
	for _, it := range sum.TopItems {
		report.TopItems = append(report.TopItems, dto.TopItem{Name: it.Name, Quantity: it.Quantity, Revenue: money(it.Revenue)})
	}
	return report, nil
}

func (s *ReportService) Workers(ctx context.Context) ([]dao.Worker, error) {
	workers, err := s.repo.Workers(ctx)
	if err != nil {
		return nil, err
	}
	if s.staleAfter <= 0 {
		return workers, nil
	}
	cutoff := s.now().Add(-s.staleAfter)
	for i := range workers {
		if workers[i].Status == "online" && workers[i].LastSeen.Before(cutoff) {
			workers[i].Status = "offline"
		}
	}
	return workers, nil
}

func money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
