package repository

import (
	"context"
	"fmt"
	"time"

	"coverly-core-importer-layer/internal/domain"
	"coverly-core-importer-layer/internal/infrastructure/repository/entity"
	"coverly-core-importer-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProductRepository implements ProductRepository using MongoDB
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new MongoDB product repository
func NewMongoProductRepository(db *mongo.Database) ports.ProductRepository {
	return &MongoProductRepository{
		collection: db.Collection("products"),
	}
}

// InsertImported stores one import batch and returns references to the
// inserted products
func (r *MongoProductRepository) InsertImported(ctx context.Context, userID string, products []domain.ScrapedProduct) ([]domain.ImportedProductRef, error) {
	if len(products) == 0 {
		return nil, nil
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		doc := entity.MongoProductDocFromScraped(userID, p)
		doc.CreatedAt = now
		docs = append(docs, doc)
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to insert products: %w", err)
	}

	refs := make([]domain.ImportedProductRef, 0, len(products))
	for i, p := range products {
		ref := domain.ImportedProductRef{Name: p.Name, Retailer: p.Retailer}
		if i < len(result.InsertedIDs) {
			if oid, ok := result.InsertedIDs[i].(primitive.ObjectID); ok {
				ref.ID = oid.Hex()
			}
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

// Exists reports whether the user already has a product with the same name
// and purchase date
func (r *MongoProductRepository) Exists(ctx context.Context, userID, name, purchaseDate string) (bool, error) {
	filter := bson.M{
		"userId":       userID,
		"name":         name,
		"purchaseDate": purchaseDate,
	}

	err := r.collection.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existing product: %w", err)
	}

	return true, nil
}
