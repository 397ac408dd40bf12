package kitchen

import (
	"context"
	"database/sql"
	"fmt"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/connections/rabbitmq"
	"restaurant-pos/internal/microservices/kitchen/repository"
	"restaurant-pos/internal/microservices/kitchen/service"
)

// Run blocks until ctx is cancelled. Consuming happens on its own channel;
// status notifications go through the client's confirm channel.
func Run(ctx context.Context, db *sql.DB, rmqClient *rabbitmq.Client, cfg config.KitchenConfig, workerName, orderTypes string, lg *logger.Logger) error {
	ch, err := rmqClient.NewChannel()
	if err != nil {
		return fmt.Errorf("open consume channel: %w", err)
	}
	defer ch.Close()

	repo := repository.NewKitchenRepository(db)
	svc := service.NewKitchenService(repo, rmqClient, lg, cfg, workerName, orderTypes)
	return svc.Run(ctx, ch)
}
