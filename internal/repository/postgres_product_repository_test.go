package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"product-catalog/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func requirePostgres(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres container not available")
	}
	if _, err := testDB.Exec("TRUNCATE products"); err != nil {
		t.Fatalf("Failed to truncate products: %v", err)
	}
}

func TestPostgresProductRepository_CreateAndList(t *testing.T) {
	requirePostgres(t)
	repo := NewPostgresProductRepository(testDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, mustValid(t, "  Widget  ", 9.99))
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	if _, err := uuid.Parse(created.ID); err != nil {
		t.Errorf("expected a uuid id, got %q", created.ID)
	}
	if created.Name != "Widget" || created.Price != 9.99 {
		t.Errorf("unexpected product: %+v", created)
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("expected equal non-zero timestamps, got %v and %v", created.CreatedAt, created.UpdatedAt)
	}

	products, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if len(products) != 1 || products[0].ID != created.ID {
		t.Fatalf("expected the created product to be listed, got %+v", products)
	}
}

func TestPostgresProductRepository_ListNewestFirst(t *testing.T) {
	requirePostgres(t)
	repo := NewPostgresProductRepository(testDB)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		if _, err := repo.Create(ctx, mustValid(t, name, 1)); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	products, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	want := []string{"C", "B", "A"}
	for i, name := range want {
		if products[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, products[i].Name)
		}
	}
}

func TestPostgresProductRepository_EmptyList(t *testing.T) {
	requirePostgres(t)

	products, err := NewPostgresProductRepository(testDB).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Errorf("expected an empty slice, got %#v", products)
	}
}

func TestPostgresProductRepository_ConstraintViolationIsRejected(t *testing.T) {
	requirePostgres(t)

	_, err := testDB.Exec("INSERT INTO products (name, price) VALUES ($1, $2)", "bad", -1)
	if err == nil {
		t.Fatal("expected the price check constraint to fail")
	}
	if classified := classifyPostgresError("create", err); !errors.Is(classified, ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", classified)
	}
}

func TestPostgresProductRepository_ClosedPoolIsUnavailable(t *testing.T) {
	if testDB == nil {
		t.Skip("postgres container not available")
	}

	db, err := database.OpenPostgres(context.Background(), testPostgresURL, 5*time.Second)
	if err != nil {
		t.Fatalf("Failed to open postgres: %v", err)
	}
	repo := NewPostgresProductRepository(db)
	_ = db.Close()

	if _, err := repo.Create(context.Background(), mustValid(t, "Widget", 1)); !errors.Is(err, ErrUnavailable) {
		t.Errorf("create: expected ErrUnavailable, got %v", err)
	}
	if _, err := repo.List(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("list: expected ErrUnavailable, got %v", err)
	}
}

func TestProperty_PostgresCreationPreservesAttributes(t *testing.T) {
	requirePostgres(t)
	repo := NewPostgresProductRepository(testDB)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("creating and listing a product preserves name and price", prop.ForAll(
		func(name string, price float64) bool {
			ctx := context.Background()

			created, err := repo.Create(ctx, mustValid(t, name, price))
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			products, err := repo.List(ctx)
			if err != nil || len(products) == 0 {
				t.Logf("FAIL: Failed to list products: %v", err)
				return false
			}

			newest := products[0]
			if newest.ID != created.ID {
				t.Logf("FAIL: newest product is %s, expected %s", newest.ID, created.ID)
				return false
			}
			if newest.Name != name || newest.Price != price {
				t.Logf("FAIL: expected (%q, %v), got (%q, %v)", name, price, newest.Name, newest.Price)
				return false
			}
			return true
		},
		gen.RegexMatch(`[A-Za-z0-9][A-Za-z0-9 ]{0,48}[A-Za-z0-9]`),
		gen.Float64Range(0, 9999.99),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestClassifyPostgresError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"check violation", &pgconn.PgError{Code: "23514", Message: "violates check constraint"}, ErrRejected},
		{"connection refused", errors.New("dial tcp: connection refused"), ErrUnavailable},
		{"deadline", context.DeadlineExceeded, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyPostgresError("create", tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("expected the cause to be preserved, got %v", got)
			}
			var storeErr *StoreError
			if !errors.As(got, &storeErr) || storeErr.Op != "create" {
				t.Errorf("expected a StoreError for create, got %#v", got)
			}
		})
	}
}
