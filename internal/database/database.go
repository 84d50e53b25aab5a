// Package database manages the single process-wide connection to the backing store.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrConnect marks a startup connection failure. The binaries treat it as fatal.
var ErrConnect = errors.New("failed to connect to store")

// ConnectMongo creates a client and verifies the primary is reachable.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetServerSelectionTimeout(timeout).SetConnectTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// OpenPostgres opens a pgx-backed connection pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, url string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	pingCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return db, nil
}

// Connect runs dial according to the configured policy. fail-fast makes one
// attempt; retry makes up to ConnectRetries additional attempts with exponential
// backoff. The returned error wraps ErrConnect and the last dial error.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger, dial func(ctx context.Context) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := dial(ctx)
		if err != nil {
			logger.Warn("Store connection attempt failed",
				zap.String("driver", cfg.Driver),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	}

	var err error
	switch cfg.ConnectPolicy {
	case config.PolicyRetry:
		b := backoff.NewExponentialBackOff()
		if cfg.ConnectBackoff > 0 {
			b.InitialInterval = cfg.ConnectBackoff
		}
		b.MaxElapsedTime = 0 // bounded by retries only
		err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(cfg.ConnectRetries)), ctx))
	default:
		err = operation()
	}

	if err != nil {
		return fmt.Errorf("%w after %d attempt(s): %w", ErrConnect, attempt, err)
	}

	logger.Info("Connected to store", zap.String("driver", cfg.Driver), zap.Int("attempts", attempt))
	return nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
