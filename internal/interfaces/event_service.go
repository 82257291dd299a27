package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	EventAnalysisCompleted  EventType = "analysis_completed"
	EventBatchProgress      EventType = "batch_progress"
	EventWatchlistChanged   EventType = "watchlist_changed"
	EventWatchlistRefreshed EventType = "watchlist_refreshed"
)

// AllEventTypes lists every event the system publishes
var AllEventTypes = []EventType{
	EventAnalysisCompleted,
	EventBatchProgress,
	EventWatchlistChanged,
	EventWatchlistRefreshed,
}

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// SubscriptionID identifies one Subscribe call; pass it to Unsubscribe
type SubscriptionID uint64

// EventService manages pub/sub event bus
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) (SubscriptionID, error)

	// Unsubscribe removes the subscription returned by Subscribe
	Unsubscribe(eventType EventType, id SubscriptionID) error

	// Publish an event to all subscribers
	Publish(ctx context.Context, event Event) error

	// PublishSync publishes event and waits for all handlers to complete
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
