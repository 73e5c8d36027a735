// Package events is the in-process publish/subscribe bus modules use to
// react to each other's state changes.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every domain event.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// Identified is implemented by events that carry a unique ID. The bus adds it
// to handler failure logs.
type Identified interface {
	EventID() uuid.UUID
}

// BaseEvent is embedded by domain events.
type BaseEvent struct {
	ID        uuid.UUID `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

func (e BaseEvent) EventID() uuid.UUID { return e.ID }

// NewBaseEvent stamps a fresh ID and the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.New(), Timestamp: time.Now().UTC()}
}

// Handler reacts to one event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to the handlers subscribed under their name.
type Bus interface {
	// Publish dispatches asynchronously and never reports handler errors.
	Publish(ctx context.Context, event Event)
	// PublishSync runs the handlers in order and joins their errors.
	PublishSync(ctx context.Context, event Event) error
	// Subscribe registers handler for events whose EventName equals eventName.
	Subscribe(eventName string, handler Handler)
}

func eventID(event Event) string {
	if ev, ok := event.(Identified); ok {
		return ev.EventID().String()
	}
	return ""
}
