// Package event defines event types for decoupling the conveyor runtime from
// whatever observes it (CLI reporting, tests).
package event

import "time"

// Event type identifiers.
const (
	TypeBeltAdvanced          = "belt.advanced"
	TypeIntersectionPublished = "intersection.published"
	TypeFeedRejected          = "feed.rejected"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "belt.advanced").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// BeltAdvancedEvent is emitted after a belt completes an advance.
type BeltAdvancedEvent struct {
	baseEvent
	Belt       string // Belt that advanced
	Fed        any    // Value inserted at the input end
	Evicted    any    // Value that fell off the output end, nil if none
	HasEvicted bool   // Whether Evicted holds an item
}

// NewBeltAdvancedEvent creates a BeltAdvancedEvent.
func NewBeltAdvancedEvent(belt string, fed, evicted any, hasEvicted bool) BeltAdvancedEvent {
	return BeltAdvancedEvent{
		baseEvent:  newBaseEvent(TypeBeltAdvanced),
		Belt:       belt,
		Fed:        fed,
		Evicted:    evicted,
		HasEvicted: hasEvicted,
	}
}

// IntersectionPublishedEvent is emitted once per intersection touched by an
// advance, carrying the value the belt published there on release.
type IntersectionPublishedEvent struct {
	baseEvent
	Belt     string // Belt whose release published the value
	Position int    // Intersection position
	Value    any    // Published value, nil if the slot was empty
	HasValue bool   // Whether Value holds an item
}

// NewIntersectionPublishedEvent creates an IntersectionPublishedEvent.
func NewIntersectionPublishedEvent(belt string, position int, value any, hasValue bool) IntersectionPublishedEvent {
	return IntersectionPublishedEvent{
		baseEvent: newBaseEvent(TypeIntersectionPublished),
		Belt:      belt,
		Position:  position,
		Value:     value,
		HasValue:  hasValue,
	}
}

// FeedRejectedEvent is emitted when a feed fails before touching any belt.
type FeedRejectedEvent struct {
	baseEvent
	Belt   string // Requested belt name
	Reason string // Error text
}

// NewFeedRejectedEvent creates a FeedRejectedEvent.
func NewFeedRejectedEvent(belt, reason string) FeedRejectedEvent {
	return FeedRejectedEvent{
		baseEvent: newBaseEvent(TypeFeedRejected),
		Belt:      belt,
		Reason:    reason,
	}
}
