package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"product-catalog/internal/config"
	"product-catalog/internal/logger"
	"product-catalog/internal/metrics"
	"product-catalog/internal/server"
	"product-catalog/internal/service"
	"product-catalog/internal/telemetry"
	"product-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(config.ServiceNotification)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	log, err := logger.New(cfg.Server.Env, string(cfg.Server.Service))
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting notification intake",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := metrics.NewRegistry(log)

	tel, err := telemetry.New(ctx, cfg.Telemetry, registry.Registerer(), telemetry.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	srv := server.NewIntakeServer(cfg, log, registry, tel, func(r chi.Router) {
		transport.NewNotificationHandler(service.NewNotificationService(registry, log), log).RegisterRoutes(r)
	})

	if err := server.Run(ctx, srv, tel.Shutdown); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("Graceful shutdown complete")
}
