package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
)

// MemoryOption configures a memory product repository
type MemoryOption func(*memoryProductRepository)

// WithClock replaces the clock used to stamp created products
func WithClock(now func() time.Time) MemoryOption {
	return func(r *memoryProductRepository) { r.now = now }
}

type memoryProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product // insertion order
	now      func() time.Time
}

// NewMemoryProductRepository creates a process-local product store.
// Contents are lost when the process exits.
func NewMemoryProductRepository(opts ...MemoryOption) ProductRepository {
	r := &memoryProductRepository{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *memoryProductRepository) Create(ctx context.Context, product domain.ValidProduct) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("create", err)
	}

	now := r.now()
	p := domain.Product{
		ID:        uuid.New().String(),
		Name:      product.Name(),
		Price:     product.Price(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.products = append(r.products, p)
	r.mu.Unlock()

	return &p, nil
}

func (r *memoryProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("list", err)
	}

	r.mu.RLock()
	products := make([]*domain.Product, len(r.products))
	for i := range r.products {
		p := r.products[i]
		products[i] = &p
	}
	r.mu.RUnlock()

	// Stable sort keeps insertion order among equal timestamps
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})

	return products, nil
}
