package entity

import (
	"time"

	"coverly-core-importer-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoProductDoc represents an imported product in MongoDB
type MongoProductDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"userId"`
	ExternalID   string             `bson:"externalId"`
	Name         string             `bson:"name"`
	Price        float64            `bson:"price"`
	PurchaseDate string             `bson:"purchaseDate"`
	ImageURL     string             `bson:"imageUrl,omitempty"`
	Retailer     string             `bson:"retailer"`
	Category     string             `bson:"category,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

// MongoProductDocFromScraped converts a scraped product to a MongoDB document
func MongoProductDocFromScraped(userID string, p domain.ScrapedProduct) *MongoProductDoc {
	return &MongoProductDoc{
		UserID:       userID,
		ExternalID:   p.ExternalID,
		Name:         p.Name,
		Price:        p.Price,
		PurchaseDate: p.PurchaseDate,
		ImageURL:     p.ImageURL,
		Retailer:     p.Retailer,
		Category:     p.Category,
	}
}

// ToRef converts the document to the non-sensitive reference echoed to the
// API caller.
func (d *MongoProductDoc) ToRef() domain.ImportedProductRef {
	return domain.ImportedProductRef{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Retailer: d.Retailer,
	}
}
