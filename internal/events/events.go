package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventContentCreated = "content_created"
	EventContentUpdated = "content_updated"
	EventContentDeleted = "content_deleted"
	EventReviewCreated  = "review_created"
)

// ContentEventPayload describes a catalog write for event consumers. Record
// holds the JSON form of the written record and is empty for deletes.
type ContentEventPayload struct {
	Entity string          `json:"entity"`
	Action string          `json:"action"`
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Record json.RawMessage `json:"record,omitempty"`
}

// ReviewEventPayload is published when a visitor leaves a review.
type ReviewEventPayload struct {
	ReviewID int64  `json:"review_id"`
	Type     string `json:"type"`
	TypeID   int64  `json:"type_id"`
	Author   string `json:"author"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into dst.
func (e *Event) Decode(dst any) error {
	return json.Unmarshal(e.Payload, dst)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	onError     func(event *Event, err error)
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// OnError sets the callback invoked when a handler fails.
func (b *EventBus) OnError(fn func(event *Event, err error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = fn
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	onError := b.onError
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload any) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}
	b.Publish(&event)
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
