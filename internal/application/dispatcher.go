package application

import (
	"context"
	"fmt"

	"coverly-core-importer-layer/internal/domain"

	"github.com/rs/zerolog"
)

// ImportEventHandler processes import outcome events
type ImportEventHandler interface {
	// CanHandle returns true if this handler can process the given status
	CanHandle(status string) bool
	// Handle processes an import event
	Handle(ctx context.Context, event *domain.ImportEvent) error
}

// ImportEventDispatcher routes import events to registered handlers
type ImportEventDispatcher struct {
	handlers []ImportEventHandler
	logger   zerolog.Logger
}

// NewImportEventDispatcher creates a new import event dispatcher
func NewImportEventDispatcher(logger zerolog.Logger) *ImportEventDispatcher {
	return &ImportEventDispatcher{
		handlers: []ImportEventHandler{},
		logger:   logger,
	}
}

// RegisterHandler registers an event handler
func (d *ImportEventDispatcher) RegisterHandler(handler ImportEventHandler) {
	d.handlers = append(d.handlers, handler)
}

// Dispatch routes the event to every handler that accepts its status. All
// handlers run even when one fails; failures are collected into one error.
func (d *ImportEventDispatcher) Dispatch(ctx context.Context, event *domain.ImportEvent) error {
	handled := false
	var errs []error
	for _, handler := range d.handlers {
		if !handler.CanHandle(event.Status) {
			continue
		}
		handled = true
		if err := handler.Handle(ctx, event); err != nil {
			d.logger.Error().
				Err(err).
				Str("runId", event.RunID).
				Str("status", event.Status).
				Msg("Import event handler failed")
			errs = append(errs, err)
		}
	}

	if !handled {
		d.logger.Debug().
			Str("status", event.Status).
			Msg("No handler registered for import event status")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d import event handler(s) failed: %v", len(errs), errs[0])
	}
	return nil
}
