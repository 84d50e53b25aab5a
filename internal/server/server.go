package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/metrics"
	custommiddleware "product-catalog/internal/middleware"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/telemetry"
	"product-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	lifecycle *Lifecycle
	closers   []Closer
}

// NewCatalogServer builds the product catalog server. Product routes are guarded
// by the lifecycle and answer 503 until the store is connected.
func NewCatalogServer(
	cfg *config.Config,
	logger *zap.Logger,
	registry *metrics.Registry,
	tel *telemetry.Telemetry,
	lifecycle *Lifecycle,
	repo repository.ProductRepository,
) *Server {
	s := newServer(cfg, logger, registry, tel, func(r chi.Router) {
		transport.NewHealthHandler().RegisterCatalogRoutes(r)

		productService := service.NewProductService(repo, registry, logger)
		transport.NewProductHandler(productService, logger).RegisterRoutes(r, RequireConnected(lifecycle))
	})
	s.lifecycle = lifecycle
	return s
}

// NewIntakeServer builds an analytics or notification server around routes
func NewIntakeServer(
	cfg *config.Config,
	logger *zap.Logger,
	registry *metrics.Registry,
	tel *telemetry.Telemetry,
	routes func(r chi.Router),
) *Server {
	return newServer(cfg, logger, registry, tel, func(r chi.Router) {
		transport.NewHealthHandler().RegisterIntakeRoutes(r)
		routes(r)
	})
}

func newServer(
	cfg *config.Config,
	logger *zap.Logger,
	registry *metrics.Registry,
	tel *telemetry.Telemetry,
	routes func(r chi.Router),
) *Server {
	s := &Server{config: cfg, logger: logger}

	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	if tel != nil {
		router.Use(tel.Middleware(string(cfg.Server.Service)))
	}
	router.Use(custommiddleware.RequestMetrics(registry))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))
	if limiter := s.rateLimiter(); limiter != nil {
		router.Use(limiter)
	}

	router.Method(http.MethodGet, "/metrics", registry.Handler())
	routes(router)

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     zap.NewStdLog(logger),
	}

	return s
}

// rateLimiter picks the shared Redis window when REDIS_ADDR is set and the
// in-process token bucket otherwise. It returns nil when rate limiting is off.
func (s *Server) rateLimiter() func(http.Handler) http.Handler {
	cfg := s.config.RateLimit
	if cfg.Requests <= 0 {
		return nil
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })

		s.logger.Info("Rate limiting through redis",
			zap.String("addr", cfg.RedisAddr),
			zap.Int("requests", cfg.Requests),
			zap.Duration("window", cfg.Window),
		)
		return custommiddleware.RateLimitMiddleware(client, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.Requests,
			Window:            cfg.Window,
			KeyPrefix:         "rate_limit:" + string(s.config.Server.Service),
		}, s.logger)
	}

	s.logger.Info("Rate limiting in process",
		zap.Int("requests", cfg.Requests),
		zap.Duration("window", cfg.Window),
	)
	limit := rate.Every(cfg.Window / time.Duration(cfg.Requests))
	return custommiddleware.LocalRateLimitMiddleware(limit, cfg.Requests, s.logger)
}

// Lifecycle returns the catalog lifecycle, or nil for intake servers
func (s *Server) Lifecycle() *Lifecycle {
	return s.lifecycle
}
