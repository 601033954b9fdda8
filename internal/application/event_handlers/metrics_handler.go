package event_handlers

import (
	"context"
	"time"

	"coverly-core-importer-layer/internal/domain"

	"github.com/rs/zerolog"
)

// ImportObserver records import outcome metrics
type ImportObserver interface {
	ObserveImport(retailer, outcome string, imported int, duration time.Duration)
}

// MetricsHandler feeds import outcomes into the metrics registry
type MetricsHandler struct {
	observer ImportObserver
	logger   zerolog.Logger
}

// NewMetricsHandler creates a new metrics event handler
func NewMetricsHandler(observer ImportObserver, logger zerolog.Logger) *MetricsHandler {
	return &MetricsHandler{
		observer: observer,
		logger:   logger,
	}
}

// CanHandle returns true if this handler can process the given status
func (h *MetricsHandler) CanHandle(status string) bool {
	return status == domain.ImportStatusSucceeded ||
		status == domain.ImportStatusFailed
}

// Handle records the import outcome in the metrics registry
func (h *MetricsHandler) Handle(ctx context.Context, event *domain.ImportEvent) error {
	h.observer.ObserveImport(event.Retailer, event.Status, event.ImportedCount, event.Duration)
	return nil
}
