// Package events carries session lifecycle signals between the transport,
// the session store and whatever owns navigation (CLI or dashboard).
//
// Publishers never know who is listening: the transport reports an
// unauthenticated response and the top-level navigation listener decides
// what the user sees.
package events

import (
	"context"
	"sort"
	"sync"
	"time"
)

// EventType represents the type of session event
type EventType string

const (
	// EventUnauthenticated fires when the API answered 401
	EventUnauthenticated EventType = "on_unauthenticated"

	// EventLogin fires after a token was exchanged and the identity resolved
	EventLogin EventType = "on_login"

	// EventLogout fires after an explicit logout
	EventLogout EventType = "on_logout"
)

// Well-known Data keys
const (
	KeyMethod   = "method"
	KeyPath     = "path"
	KeyStatus   = "status"
	KeyBoundary = "boundary"
	KeyUserID   = "user_id"
	KeyEmail    = "email"
)

// Event represents a session event
type Event struct {
	// Type is the event type
	Type EventType `json:"type"`

	// Timestamp when the event occurred
	Timestamp time.Time `json:"timestamp"`

	// Data contains event-specific data
	Data map[string]interface{} `json:"data"`
}

// NewEvent creates a new event
func NewEvent(eventType EventType, data map[string]interface{}) *Event {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// GetString gets a string value from event data
func (e *Event) GetString(key string) string {
	if val, ok := e.Data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetInt gets an int value from event data
func (e *Event) GetInt(key string) int {
	if val, ok := e.Data[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		}
	}
	return 0
}

// Handler reacts to a published event
type Handler func(ctx context.Context, event *Event)

type subscription struct {
	id      int
	name    string
	handler Handler
}

// Bus is a synchronous in-process publish/subscribe registry.
// Handlers run on the publisher's goroutine in subscription order.
type Bus struct {
	mu sync.RWMutex

	subs   map[EventType][]subscription
	nextID int
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		subs: make(map[EventType][]subscription),
	}
}

// Subscribe registers handler for eventType and returns a func that removes it
func (b *Bus) Subscribe(eventType EventType, name string, handler Handler) func() {
	if handler == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[eventType] = append(b.subs[eventType], subscription{id: id, name: name, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(eventType, id) })
	}
}

func (b *Bus) unsubscribe(eventType EventType, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[eventType]
	filtered := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			filtered = append(filtered, s)
		}
	}
	b.subs[eventType] = filtered
}

// Publish delivers event to every handler subscribed to its type.
// A nil bus drops the event.
func (b *Bus) Publish(ctx context.Context, event *Event) {
	if b == nil || event == nil {
		return
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.subs[event.Type]))
	copy(subs, b.subs[event.Type])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(ctx, event)
	}
}

// HasSubscribers reports whether anything listens for eventType
func (b *Bus) HasSubscribers(eventType EventType) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[eventType]) > 0
}

// Subscribers returns the sorted names of the handlers for eventType
func (b *Bus) Subscribers(eventType EventType) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.subs[eventType]))
	for _, s := range b.subs[eventType] {
		names = append(names, s.name)
	}
	sort.Strings(names)
	return names
}
