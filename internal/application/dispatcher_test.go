package application

import (
	"context"
	"errors"
	"testing"

	"coverly-core-importer-layer/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	accepts map[string]bool
	err     error
	handled []*domain.ImportEvent
}

func (h *recordingHandler) CanHandle(status string) bool {
	return h.accepts[status]
}

func (h *recordingHandler) Handle(ctx context.Context, event *domain.ImportEvent) error {
	h.handled = append(h.handled, event)
	return h.err
}

func TestDispatcher_RoutesByStatus(t *testing.T) {
	d := NewImportEventDispatcher(zerolog.Nop())
	onSuccess := &recordingHandler{accepts: map[string]bool{domain.ImportStatusSucceeded: true}}
	onFailure := &recordingHandler{accepts: map[string]bool{domain.ImportStatusFailed: true}}
	d.RegisterHandler(onSuccess)
	d.RegisterHandler(onFailure)

	err := d.Dispatch(context.Background(), &domain.ImportEvent{Status: domain.ImportStatusSucceeded})

	assert.NoError(t, err)
	assert.Len(t, onSuccess.handled, 1)
	assert.Empty(t, onFailure.handled)
}

func TestDispatcher_AllHandlersRunDespiteFailure(t *testing.T) {
	d := NewImportEventDispatcher(zerolog.Nop())
	failing := &recordingHandler{
		accepts: map[string]bool{domain.ImportStatusFailed: true},
		err:     errors.New("audit sink down"),
	}
	healthy := &recordingHandler{accepts: map[string]bool{domain.ImportStatusFailed: true}}
	d.RegisterHandler(failing)
	d.RegisterHandler(healthy)

	err := d.Dispatch(context.Background(), &domain.ImportEvent{Status: domain.ImportStatusFailed})

	assert.Error(t, err)
	assert.Len(t, healthy.handled, 1, "a failing handler must not starve the others")
}

func TestDispatcher_NoHandlersIsNotAnError(t *testing.T) {
	d := NewImportEventDispatcher(zerolog.Nop())

	err := d.Dispatch(context.Background(), &domain.ImportEvent{Status: domain.ImportStatusSucceeded})

	assert.NoError(t, err)
}
