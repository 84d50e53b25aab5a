package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection = "products"

	// server error code for "collection already exists"
	mongoNamespaceExists = 48
)

// productDocument is the stored shape of a product
type productDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Price     float64            `bson:"price"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d productDocument) toDomain() *domain.Product {
	return &domain.Product{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Price:     d.Price,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type mongoProductRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoProductRepository creates a ProductRepository over the products
// collection of db. The underlying client is shared and safe for concurrent use.
func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{
		coll: db.Collection(productsCollection),
		// BSON dates carry millisecond precision
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureProductSchema creates the products collection with a document validator and
// the createdAt index used by List. An existing collection is left as it is.
func EnsureProductSchema(ctx context.Context, db *mongo.Database) error {
	validator := bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "price", "createdAt", "updatedAt"},
			"properties": bson.M{
				"name":      bson.M{"bsonType": "string", "minLength": 1},
				"price":     bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}, "minimum": 0},
				"createdAt": bson.M{"bsonType": "date"},
				"updatedAt": bson.M{"bsonType": "date"},
			},
		},
	}

	err := db.CreateCollection(ctx, productsCollection, options.CreateCollection().SetValidator(validator))
	if err != nil {
		var cmdErr mongo.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Code != mongoNamespaceExists {
			return fmt.Errorf("failed to create %s collection: %w", productsCollection, err)
		}
	}

	_, err = db.Collection(productsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	if err != nil {
		return fmt.Errorf("failed to create createdAt index: %w", err)
	}

	return nil
}

// Create inserts a new product document
func (r *mongoProductRepository) Create(ctx context.Context, product domain.ValidProduct) (*domain.Product, error) {
	now := r.now()
	doc := productDocument{
		Name:      product.Name(),
		Price:     product.Price(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, classifyMongoError("create", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, rejected("create", fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	doc.ID = id

	return doc.toDomain(), nil
}

// List returns all products sorted by createdAt descending
func (r *mongoProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, classifyMongoError("list", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classifyMongoError("list", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.toDomain())
	}

	return products, nil
}

// classifyMongoError maps errors answered by the server to ErrRejected and
// everything else (network, timeouts, a disconnected client) to ErrUnavailable.
func classifyMongoError(op string, err error) error {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && !mongo.IsNetworkError(err) && !mongo.IsTimeout(err) {
		return rejected(op, err)
	}
	return unavailable(op, err)
}
