package repository

import (
	"context"
	"fmt"
	"time"

	"coverly-core-importer-layer/internal/domain"
	"coverly-core-importer-layer/internal/infrastructure/repository/entity"
	"coverly-core-importer-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConnectionRepository implements ConnectionRepository using MongoDB
type MongoConnectionRepository struct {
	collection *mongo.Collection
}

// NewMongoConnectionRepository creates a new MongoDB connection repository
func NewMongoConnectionRepository(db *mongo.Database) ports.ConnectionRepository {
	return &MongoConnectionRepository{
		collection: db.Collection("user_connections"),
	}
}

// Upsert saves the connection status for a (user, retailer) pair
func (r *MongoConnectionRepository) Upsert(ctx context.Context, conn *domain.UserConnection) error {
	doc := entity.MongoConnectionDocFromDomain(conn)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	// One connection row per (user, retailer) pair.
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "retailer", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = r.collection.Indexes().CreateOne(ctx, indexModel)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{
		"userId":   conn.UserID,
		"retailer": conn.Retailer,
	}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert connection: %w", err)
	}

	return nil
}

// ListByUser retrieves all connections for a user
func (r *MongoConnectionRepository) ListByUser(ctx context.Context, userID string) ([]*domain.UserConnection, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer cursor.Close(ctx)

	var connections []*domain.UserConnection
	for cursor.Next(ctx) {
		var doc entity.MongoConnectionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode connection: %w", err)
		}
		connections = append(connections, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return connections, nil
}

// Delete removes a connection by user and retailer
func (r *MongoConnectionRepository) Delete(ctx context.Context, userID, retailer string) error {
	filter := bson.M{
		"userId":   userID,
		"retailer": retailer,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("connection not found")
	}
	return nil
}
