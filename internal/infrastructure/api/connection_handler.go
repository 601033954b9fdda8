package api

import (
	"errors"
	"net/http"

	"coverly-core-importer-layer/internal/application"
	"coverly-core-importer-layer/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ConnectionHandler exposes the retailer connection endpoints
type ConnectionHandler struct {
	connections *application.ConnectionService
	logger      zerolog.Logger
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(connections *application.ConnectionService, logger zerolog.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		connections: connections,
		logger:      logger,
	}
}

// HandleList returns every retailer connection the authenticated user has
func (h *ConnectionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := domain.GetUserIDFromContext(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	conns, err := h.connections.ListConnections(ctx, userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list connections")
		writeError(w, http.StatusInternalServerError, "failed to list connections", nil)
		return
	}
	if conns == nil {
		conns = []*domain.UserConnection{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"connections": conns,
	})
}

// HandleDelete disconnects the authenticated user from a retailer. Imported
// products stay.
func (h *ConnectionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := domain.GetUserIDFromContext(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	retailer := chi.URLParam(r, "retailer")
	if retailer == "" {
		writeError(w, http.StatusBadRequest, "retailer is required", nil)
		return
	}

	if err := h.connections.DisconnectRetailer(ctx, userID, retailer); err != nil {
		if errors.Is(err, domain.ErrUnsupportedRetailer) {
			writeError(w, http.StatusBadRequest, "unsupported retailer", domain.KnownRetailers())
			return
		}
		h.logger.Error().Err(err).Str("retailer", retailer).Msg("Failed to disconnect retailer")
		writeError(w, http.StatusNotFound, "connection not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "retailer disconnected",
	})
}
