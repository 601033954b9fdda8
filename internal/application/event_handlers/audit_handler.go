package event_handlers

import (
	"context"

	"coverly-core-importer-layer/internal/domain"

	"github.com/rs/zerolog"
)

// AuditHandler writes a structured audit line for every import outcome
type AuditHandler struct {
	logger zerolog.Logger
}

// NewAuditHandler creates a new audit event handler
func NewAuditHandler(logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		logger: logger,
	}
}

// CanHandle returns true if this handler can process the given status
func (h *AuditHandler) CanHandle(status string) bool {
	return status == domain.ImportStatusSucceeded ||
		status == domain.ImportStatusFailed
}

// Handle logs the import outcome. Only non-sensitive fields appear here:
// credentials never reach the event.
func (h *AuditHandler) Handle(ctx context.Context, event *domain.ImportEvent) error {
	entry := h.logger.Info()
	if event.Status == domain.ImportStatusFailed {
		entry = h.logger.Warn().Str("error", event.Error)
	}

	entry.
		Str("runId", event.RunID).
		Str("userId", event.UserID).
		Str("retailer", event.Retailer).
		Str("status", event.Status).
		Int("importedCount", event.ImportedCount).
		Dur("duration", event.Duration).
		Time("occurredAt", event.OccurredAt).
		Msg("Import run recorded")

	return nil
}
