package pubsub

import (
	"context"
	"fmt"
	"sync"

	"coverly-core-importer-layer/internal/domain"

	"github.com/rs/zerolog"
)

// ImportEventChannel represents a subscription channel
type ImportEventChannel struct {
	ID     string
	Filter *ImportEventFilter
	Events chan *domain.ImportEvent
	Done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// ImportEventFilter filters import events
type ImportEventFilter struct {
	Retailers []string // Filter by retailers
	UserID    string   // Filter by user
}

// ImportPubSub manages import event subscriptions
type ImportPubSub struct {
	mu       sync.RWMutex
	channels map[string]*ImportEventChannel
	logger   zerolog.Logger
	nextID   int64
	idMu     sync.Mutex
}

// NewImportPubSub creates a new import event pub/sub system
func NewImportPubSub(logger zerolog.Logger) *ImportPubSub {
	return &ImportPubSub{
		channels: make(map[string]*ImportEventChannel),
		logger:   logger,
	}
}

// Subscribe creates a new subscription channel
func (ps *ImportPubSub) Subscribe(ctx context.Context, filter *ImportEventFilter) *ImportEventChannel {
	ps.idMu.Lock()
	id := ps.generateID()
	ps.idMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)

	channel := &ImportEventChannel{
		ID:     id,
		Filter: filter,
		Events: make(chan *domain.ImportEvent, 10), // Buffered channel
		Done:   make(chan struct{}),
		ctx:    subCtx,
		cancel: cancel,
	}

	ps.mu.Lock()
	ps.channels[id] = channel
	ps.mu.Unlock()

	ps.logger.Info().
		Str("channelId", id).
		Interface("filter", filter).
		Msg("Import subscription created")

	// Cleanup when context is cancelled
	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(id)
	}()

	return channel
}

// Unsubscribe removes a subscription channel
func (ps *ImportPubSub) Unsubscribe(channelID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	channel, exists := ps.channels[channelID]
	if !exists {
		return
	}

	close(channel.Events)
	close(channel.Done)
	channel.cancel()
	delete(ps.channels, channelID)

	ps.logger.Info().
		Str("channelId", channelID).
		Msg("Import subscription removed")
}

// Publish broadcasts an import event to all matching subscribers
func (ps *ImportPubSub) Publish(event *domain.ImportEvent) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	publishedCount := 0
	for _, channel := range ps.channels {
		// Check if event matches filter
		if ps.matchesFilter(event, channel.Filter) {
			select {
			case channel.Events <- event:
				publishedCount++
			case <-channel.ctx.Done():
				// Channel is closed, skip
			default:
				// Channel buffer full, skip (non-blocking)
				ps.logger.Warn().
					Str("channelId", channel.ID).
					Msg("Channel buffer full, dropping event")
			}
		}
	}

	if publishedCount > 0 {
		ps.logger.Debug().
			Str("retailer", event.Retailer).
			Str("status", event.Status).
			Int("subscribers", publishedCount).
			Msg("Published import event to subscribers")
	}
}

// matchesFilter checks if an event matches the subscription filter
func (ps *ImportPubSub) matchesFilter(event *domain.ImportEvent, filter *ImportEventFilter) bool {
	if filter == nil {
		return true // No filter, match all
	}

	// Check retailer filter
	if len(filter.Retailers) > 0 {
		retailerMatch := false
		for _, retailer := range filter.Retailers {
			if event.Retailer == retailer {
				retailerMatch = true
				break
			}
		}
		if !retailerMatch {
			return false
		}
	}

	// Check user filter
	if filter.UserID != "" && event.UserID != filter.UserID {
		return false
	}

	return true
}

// generateID generates a unique channel ID
func (ps *ImportPubSub) generateID() string {
	ps.nextID++
	return fmt.Sprintf("channel-%d", ps.nextID)
}

// GetStats returns pub/sub statistics
func (ps *ImportPubSub) GetStats() map[string]interface{} {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return map[string]interface{}{
		"active_subscriptions": len(ps.channels),
	}
}
