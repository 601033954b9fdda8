package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"coverly-core-importer-layer/internal/domain"
	"coverly-core-importer-layer/internal/infrastructure/pubsub"

	"github.com/rs/zerolog"
)

// EventsHandler streams import outcome events over Server-Sent Events
type EventsHandler struct {
	pubsub *pubsub.ImportPubSub
	logger zerolog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(ps *pubsub.ImportPubSub, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		pubsub: ps,
		logger: logger,
	}
}

// importEventPayload is the wire shape of one streamed event
type importEventPayload struct {
	RunID         string `json:"run_id"`
	Retailer      string `json:"retailer"`
	Status        string `json:"status"`
	ImportedCount int    `json:"imported_count"`
	Error         string `json:"error,omitempty"`
	DurationMs    int64  `json:"duration_ms"`
	OccurredAt    string `json:"occurred_at"`
}

// HandleStream subscribes the caller to their own import events. Optional
// ?retailers=walmart,target narrows the stream. The subscription ends when
// the client disconnects.
func (h *EventsHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := domain.GetUserIDFromContext(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}

	filter := &pubsub.ImportEventFilter{UserID: userID}
	if raw := r.URL.Query().Get("retailers"); raw != "" {
		for _, retailer := range strings.Split(raw, ",") {
			normalized := domain.NormalizeRetailer(retailer)
			if normalized != "" {
				filter.Retailers = append(filter.Retailers, normalized)
			}
		}
	}

	channel := h.pubsub.Subscribe(ctx, filter)
	h.logger.Info().Str("channelId", channel.ID).Msg("Import event stream opened")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str("channelId", channel.ID).Msg("Import event stream closed")
			return
		case event, open := <-channel.Events:
			if !open {
				return
			}
			payload, err := json.Marshal(importEventPayload{
				RunID:         event.RunID,
				Retailer:      event.Retailer,
				Status:        event.Status,
				ImportedCount: event.ImportedCount,
				Error:         event.Error,
				DurationMs:    event.Duration.Milliseconds(),
				OccurredAt:    event.OccurredAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			})
			if err != nil {
				h.logger.Error().Err(err).Msg("Failed to marshal import event")
				continue
			}
			fmt.Fprintf(w, "event: import\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
