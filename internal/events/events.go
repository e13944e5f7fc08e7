// Package events provides the in-process event bus that connects the
// collection pipeline, the auth session and the notification sinks.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/learnhub/learnadmin/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	// EventNotification is a transient user-visible message (a "toast").
	EventNotification EventType = "notification"

	// EventCollectionChanged fires whenever a list's raw collection or its
	// filter/sort/page state changes.
	EventCollectionChanged EventType = "collection_changed"

	// EventCollectionLoading fires when a fetch starts or finishes.
	EventCollectionLoading EventType = "collection_loading"

	// EventAuthStateChanged fires on login, logout, and refresh outcomes.
	EventAuthStateChanged EventType = "auth_state_changed"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelSuccess:
		return "SUCCESS"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// NotificationEvent is a toast.
type NotificationEvent struct {
	BaseEvent
	Level   Level
	Title   string // resource or action, e.g. "courses"
	Message string
	Err     error
}

// CollectionChangedEvent reports the shape of a list after a change.
type CollectionChangedEvent struct {
	BaseEvent
	Resource   string
	Total      int // raw collection size
	Filtered   int // size after filtering
	Page       int
	TotalPages int
}

// CollectionLoadingEvent reports fetch progress for a list.
type CollectionLoadingEvent struct {
	BaseEvent
	Resource string
	Loading  bool
}

// AuthState is the client-side session state.
type AuthState string

const (
	AuthLoggedIn  AuthState = "logged_in"
	AuthLoggedOut AuthState = "logged_out"
)

// AuthStateChangedEvent reports a session transition.
type AuthStateChangedEvent struct {
	BaseEvent
	State  AuthState
	Reason string
}

// EventBus manages event distribution
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking.
// Events for a full subscriber are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// Notify is a convenience method for publishing a notification.
func (eb *EventBus) Notify(level Level, title, message string, err error) {
	eb.Publish(&NotificationEvent{
		BaseEvent: BaseEvent{EventType: EventNotification, Time: time.Now()},
		Level:     level,
		Title:     title,
		Message:   message,
		Err:       err,
	})
}

// PublishCollectionChanged is a convenience method for list updates.
func (eb *EventBus) PublishCollectionChanged(resource string, total, filtered, page, totalPages int) {
	eb.Publish(&CollectionChangedEvent{
		BaseEvent:  BaseEvent{EventType: EventCollectionChanged, Time: time.Now()},
		Resource:   resource,
		Total:      total,
		Filtered:   filtered,
		Page:       page,
		TotalPages: totalPages,
	})
}

// PublishLoading is a convenience method for fetch start/finish.
func (eb *EventBus) PublishLoading(resource string, loading bool) {
	eb.Publish(&CollectionLoadingEvent{
		BaseEvent: BaseEvent{EventType: EventCollectionLoading, Time: time.Now()},
		Resource:  resource,
		Loading:   loading,
	})
}

// PublishAuthState is a convenience method for session transitions.
func (eb *EventBus) PublishAuthState(state AuthState, reason string) {
	eb.Publish(&AuthStateChangedEvent{
		BaseEvent: BaseEvent{EventType: EventAuthStateChanged, Time: time.Now()},
		State:     state,
		Reason:    reason,
	})
}

// Unsubscribe removes and closes a subscription channel for a specific
// event type. After Close it does nothing.
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subs := eb.subscribers[eventType]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// GetDroppedEventCount returns the number of events dropped on full buffers.
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
