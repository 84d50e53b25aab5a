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
	"product-catalog/internal/telemetry"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(config.ServiceCatalog)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	log, err := logger.New(cfg.Server.Env, string(cfg.Server.Service))
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting product catalog",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("driver", cfg.Database.Driver),
		zap.String("connect_policy", cfg.Database.ConnectPolicy),
	)

	// Cancelled on SIGINT/SIGTERM; a second signal kills the process.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := metrics.NewRegistry(log)

	tel, err := telemetry.New(ctx, cfg.Telemetry, registry.Registerer(), telemetry.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	lifecycle := server.NewLifecycle(log)

	repo, closeStore, err := server.OpenProductStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to store", zap.Error(err))
	}
	if err := lifecycle.Advance(server.PhaseConnected); err != nil {
		log.Fatal("Startup sequence broken", zap.Error(err))
	}

	srv := server.NewCatalogServer(cfg, log, registry, tel, lifecycle, repo)

	if err := server.Run(ctx, srv, closeStore, tel.Shutdown); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("Graceful shutdown complete")
}
