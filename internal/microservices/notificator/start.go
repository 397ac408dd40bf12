package notificator

import (
	"context"
	"fmt"
	"os"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/connections/rabbitmq"
	"restaurant-pos/internal/microservices/notificator/service"
)

func Start(ctx context.Context, rmqClient *rabbitmq.Client, lg *logger.Logger) error {
	ch, err := rmqClient.NewChannel()
	if err != nil {
		return fmt.Errorf("open consume channel: %w", err)
	}
	defer ch.Close()

	return service.NewNotificatorService(ch, os.Stdout, lg).Notify(ctx)
}
