package pos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"restaurant-pos/internal/common/httpx"
	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/connections/rabbitmq"
	"restaurant-pos/internal/microservices/pos/cart"
	"restaurant-pos/internal/microservices/pos/handlers"
	"restaurant-pos/internal/microservices/pos/receipt"
	"restaurant-pos/internal/microservices/pos/repository"
	"restaurant-pos/internal/microservices/pos/service"
)

const sweepEvery = time.Minute

// Run serves the POS HTTP API and expires idle carts until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, db *sql.DB, rmqClient *rabbitmq.Client, lg *logger.Logger) error {
	repo := repository.New(db)
	carts := cart.NewRegistry()

	deps := service.Deps{
		Repo:             repo,
		Carts:            carts,
		Rates:            cart.Rates{Tax: cfg.Pricing.TaxRate, Discount: cfg.Pricing.DiscountRate},
		Pub:              rmqClient,
		WorkerStaleAfter: 2 * cfg.Kitchen.Heartbeat,
		Log:              lg,
	}
	if cfg.Receipts.S3Bucket != "" {
		archiver, err := receipt.NewS3Archiver(cfg.Receipts)
		if err != nil {
			return fmt.Errorf("receipt archiver: %w", err)
		}
		deps.Archiver = archiver
	}

	h := handlers.New(service.New(deps), lg)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := httpx.New(addr, httpx.LimitConcurrency(cfg.Server.MaxConcurrent, handlers.Router(h)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("http_listening", map[string]any{"addr": addr, "max_concurrent": cfg.Server.MaxConcurrent})
		return srv.Run(gctx)
	})
	g.Go(func() error {
		sweepSessions(gctx, carts, cfg.Server.SessionTTL, lg)
		return nil
	})
	return g.Wait()
}

func sweepSessions(ctx context.Context, carts *cart.Registry, ttl time.Duration, lg *logger.Logger) {
	if ttl <= 0 {
		<-ctx.Done()
		return
	}
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := carts.Sweep(ttl); n > 0 {
				lg.Debug("sessions_expired", map[string]any{"count": n, "open": carts.Len()})
			}
		}
	}
}
