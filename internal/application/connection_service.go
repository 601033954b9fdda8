package application

import (
	"context"

	"coverly-core-importer-layer/internal/domain"
	"coverly-core-importer-layer/internal/ports"

	"github.com/rs/zerolog"
)

// ConnectionService exposes read/delete access to retailer connections.
type ConnectionService struct {
	connections ports.ConnectionRepository
	logger      zerolog.Logger
}

// NewConnectionService creates a new connection service.
func NewConnectionService(connections ports.ConnectionRepository, logger zerolog.Logger) *ConnectionService {
	return &ConnectionService{connections: connections, logger: logger}
}

// ListConnections returns every retailer connection the user has.
func (s *ConnectionService) ListConnections(ctx context.Context, userID string) ([]*domain.UserConnection, error) {
	return s.connections.ListByUser(ctx, userID)
}

// DisconnectRetailer removes the user's connection for the retailer. Imported
// products are kept; only the connection record goes away.
func (s *ConnectionService) DisconnectRetailer(ctx context.Context, userID, retailer string) error {
	normalized := domain.NormalizeRetailer(retailer)
	if !domain.IsKnownRetailer(normalized) {
		return domain.ErrUnsupportedRetailer
	}
	if err := s.connections.Delete(ctx, userID, normalized); err != nil {
		return err
	}
	s.logger.Info().Str("retailer", normalized).Msg("Retailer disconnected")
	return nil
}
