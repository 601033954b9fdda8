package entity

import (
	"time"

	"coverly-core-importer-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoConnectionDoc represents a user's retailer connection in MongoDB
type MongoConnectionDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"userId"`
	Retailer     string             `bson:"retailer"`
	Status       string             `bson:"status"`
	LastSyncedAt time.Time          `bson:"lastSyncedAt"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoConnectionDoc) ToDomain() *domain.UserConnection {
	return &domain.UserConnection{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		Retailer:     d.Retailer,
		Status:       d.Status,
		LastSyncedAt: d.LastSyncedAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoConnectionDocFromDomain converts a domain entity to a MongoDB document
func MongoConnectionDocFromDomain(conn *domain.UserConnection) *MongoConnectionDoc {
	doc := &MongoConnectionDoc{
		UserID:       conn.UserID,
		Retailer:     conn.Retailer,
		Status:       conn.Status,
		LastSyncedAt: conn.LastSyncedAt,
		CreatedAt:    conn.CreatedAt,
		UpdatedAt:    conn.UpdatedAt,
	}

	if conn.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(conn.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}
