package service

import (
	"context"
	"fmt"

	"product-catalog/internal/domain"
	"product-catalog/internal/metrics"
	"product-catalog/internal/repository"

	"go.uber.org/zap"
)

// ProductService defines the interface for product business logic
type ProductService interface {
	// Create validates the input and persists it. Validation failures are
	// *domain.ValidationError and never reach the repository.
	Create(ctx context.Context, in domain.CreateProductInput) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

type productService struct {
	repo     repository.ProductRepository
	registry *metrics.Registry
	logger   *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(repo repository.ProductRepository, registry *metrics.Registry, logger *zap.Logger) ProductService {
	_ = registry.RegisterCounter(metrics.ProductsCreatedTotal, "Total number of products created")

	return &productService{
		repo:     repo,
		registry: registry,
		logger:   logger,
	}
}

func (s *productService) Create(ctx context.Context, in domain.CreateProductInput) (*domain.Product, error) {
	valid, err := domain.ValidateCreate(in)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.Create(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.registry.Inc(metrics.ProductsCreatedTotal, nil)
	s.logger.Debug("Product created", zap.String("id", product.ID))

	return product, nil
}

func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
