package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-pos/internal/common/logger"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/connections/database"
	"restaurant-pos/internal/connections/rabbitmq"
	"restaurant-pos/internal/microservices/kitchen"
	"restaurant-pos/internal/microservices/notificator"
	"restaurant-pos/internal/microservices/pos"
)

const modes = "pos-service | kitchen-worker | notification-subscriber"

func main() {
	mode := flag.String("mode", "", modes)
	cfgPath := flag.String("config", "", "path to YAML config (default: first of config.yaml, config.yml, deploy/config.example.yaml)")
	port := flag.Int("port", 0, "pos-service: http port")
	maxConc := flag.Int("max-concurrent", 0, "pos-service: max concurrent requests")
	workerName := flag.String("worker-name", "", "kitchen-worker: unique worker name")
	orderTypes := flag.String("order-types", "", "kitchen-worker: comma-separated order types to handle")
	heartbeat := flag.Int("heartbeat-interval", 0, "kitchen-worker: heartbeat interval seconds")
	prefetch := flag.Int("prefetch", 0, "kitchen-worker: RabbitMQ prefetch")
	flag.Parse()

	lg := logger.New("bootstrap")
	defer lg.Sync()

	switch *mode {
	case "pos-service", "notification-subscriber":
	case "kitchen-worker":
		if *workerName == "" {
			fmt.Fprintln(os.Stderr, "--worker-name is required for kitchen-worker")
			os.Exit(2)
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: "+modes)
		os.Exit(2)
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		lg.Error("config_load_failed", err, nil)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *maxConc > 0 {
		cfg.Server.MaxConcurrent = *maxConc
	}
	if *heartbeat > 0 {
		cfg.Kitchen.Heartbeat = time.Duration(*heartbeat) * time.Second
	}
	if *prefetch > 0 {
		cfg.Kitchen.Prefetch = *prefetch
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svcLog := lg.Named(*mode)
	rmq, err := rabbitmq.Dial(cfg.RabbitMQ)
	if err != nil {
		lg.Error("rabbitmq_connection_failed", err, nil)
		os.Exit(1)
	}
	defer rmq.Close()
	if err := rmq.DeclareTopology(); err != nil {
		lg.Error("rabbitmq_topology_failed", err, nil)
		os.Exit(1)
	}

	var db *sql.DB
	if *mode != "notification-subscriber" {
		db, err = database.ConnectDB(ctx, cfg.Database, lg)
		if err != nil {
			lg.Error("db_connection_failed", err, nil)
			os.Exit(1)
		}
		defer db.Close()
	}

	lg.Info("service_started", map[string]any{"service": *mode})
	switch *mode {
	case "pos-service":
		err = pos.Run(ctx, cfg, db, rmq, svcLog)
	case "kitchen-worker":
		err = kitchen.Run(ctx, db, rmq, cfg.Kitchen, *workerName, *orderTypes, svcLog)
	case "notification-subscriber":
		err = notificator.Start(ctx, rmq, svcLog)
	}
	if err != nil {
		lg.Error("fatal", err, map[string]any{"service": *mode})
		os.Exit(1)
	}
	lg.Info("service_stopped", map[string]any{"service": *mode})
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		p, err := config.FindConfig()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w", err)
		}
		path = p
	}
	return config.LoadConfig(path)
}
