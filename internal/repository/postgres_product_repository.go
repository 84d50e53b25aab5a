package repository

import (
	"context"
	"database/sql"
	"errors"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type postgresProductRepository struct {
	db *sql.DB
}

// NewPostgresProductRepository creates a ProductRepository backed by the products table.
// The *sql.DB pool is shared and safe for concurrent use.
func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

// Create inserts a new product row; id and timestamps come from column defaults
func (r *postgresProductRepository) Create(ctx context.Context, product domain.ValidProduct) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, price)
		VALUES ($1, $2)
		RETURNING id, name, price, created_at, updated_at
	`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, product.Name(), product.Price()))
	if err != nil {
		return nil, classifyPostgresError("create", err)
	}

	return p, nil
}

// List retrieves all products, newest first
func (r *postgresProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, price, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classifyPostgresError("list", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, classifyPostgresError("list", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, classifyPostgresError("list", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var id uuid.UUID
	p := &domain.Product{}
	if err := row.Scan(&id, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.String()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// classifyPostgresError maps errors reported by the server (constraint violations,
// bad data) to ErrRejected and connection-level failures to ErrUnavailable.
func classifyPostgresError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return rejected(op, err)
	}
	return unavailable(op, err)
}
