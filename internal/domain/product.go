package domain

import (
	"time"
)

// Product represents a product in the catalog.
// ID and timestamps are assigned by the store when the product is persisted.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateProductInput is the untyped create payload as it arrives over the wire.
// Fields stay dynamic so that type mismatches can be reported as validation errors.
type CreateProductInput struct {
	Name  any `json:"name"`
	Price any `json:"price"`
}

// ValidProduct is a create request that passed ValidateCreate.
// It can only be built by ValidateCreate.
type ValidProduct struct {
	name  string
	price float64
}

// Name returns the trimmed product name
func (p ValidProduct) Name() string { return p.name }

// Price returns the product price
func (p ValidProduct) Price() float64 { return p.price }
