package repository

import (
	"context"
	"errors"
	"fmt"

	"product-catalog/internal/domain"
)

var (
	// ErrUnavailable means the store could not be reached
	ErrUnavailable = errors.New("product store unavailable")
	// ErrRejected means the store answered and refused the operation
	ErrRejected = errors.New("product store rejected the operation")
)

// StoreError wraps a store failure with the operation and its kind.
// errors.Is matches both the kind (ErrUnavailable or ErrRejected) and the cause.
type StoreError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s product: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func unavailable(op string, err error) error {
	return &StoreError{Op: op, Kind: ErrUnavailable, Err: err}
}

func rejected(op string, err error) error {
	return &StoreError{Op: op, Kind: ErrRejected, Err: err}
}

// ProductRepository defines the interface for product data access.
// Implementations must be safe for concurrent use.
type ProductRepository interface {
	// Create persists a validated product and returns it with its id and timestamps.
	Create(ctx context.Context, product domain.ValidProduct) (*domain.Product, error)
	// List returns every product, newest first. An empty store yields an empty slice.
	List(ctx context.Context) ([]*domain.Product, error)
}
