package server

import (
	"context"
	"database/sql"
	"fmt"

	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Closer releases a resource during shutdown
type Closer func(ctx context.Context) error

// OpenProductStore connects the configured driver under the connect policy,
// prepares its schema and returns the repository with its closer.
func OpenProductStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.ProductRepository, Closer, error) {
	dbCfg := cfg.Database

	switch dbCfg.Driver {
	case config.DriverMemory:
		logger.Warn("Using the in-memory product store, data is lost on exit")
		return repository.NewMemoryProductRepository(), func(context.Context) error { return nil }, nil

	case config.DriverMongo:
		var client *mongo.Client
		err := database.Connect(ctx, dbCfg, logger, func(ctx context.Context) error {
			c, err := database.ConnectMongo(ctx, dbCfg.MongoURI, dbCfg.ConnectTimeout)
			if err != nil {
				return err
			}
			client = c
			return nil
		})
		if err != nil {
			return nil, nil, err
		}

		db := client.Database(dbCfg.MongoDatabase)
		if err := repository.EnsureProductSchema(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("failed to prepare product collection: %w", err)
		}

		return repository.NewMongoProductRepository(db), client.Disconnect, nil

	case config.DriverPostgres:
		var db *sql.DB
		err := database.Connect(ctx, dbCfg, logger, func(ctx context.Context) error {
			d, err := database.OpenPostgres(ctx, dbCfg.PostgresURL, dbCfg.ConnectTimeout)
			if err != nil {
				return err
			}
			db = d
			return nil
		})
		if err != nil {
			return nil, nil, err
		}

		if err := database.RunMigrations(db, logger); err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return repository.NewPostgresProductRepository(db), func(context.Context) error { return db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}
}
