package ports

import (
	"context"

	"coverly-core-importer-layer/internal/domain"
)

// ProductRepository defines the interface for imported-product persistence
type ProductRepository interface {
	// InsertImported stores a batch of scraped products for a user and
	// returns non-sensitive references to what was inserted.
	InsertImported(ctx context.Context, userID string, products []domain.ScrapedProduct) ([]domain.ImportedProductRef, error)

	// Exists reports whether the user already has a product with the same
	// name and purchase date.
	Exists(ctx context.Context, userID, name, purchaseDate string) (bool, error)
}

// ConnectionRepository defines the interface for UserConnection persistence
type ConnectionRepository interface {
	// Upsert saves the connection status for a (user, retailer) pair,
	// creating the row on first sight.
	Upsert(ctx context.Context, conn *domain.UserConnection) error

	// ListByUser returns all of a user's retailer connections.
	ListByUser(ctx context.Context, userID string) ([]*domain.UserConnection, error)

	// Delete removes a connection by user and retailer.
	Delete(ctx context.Context, userID, retailer string) error
}
