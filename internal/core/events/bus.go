package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

// BaseEvent is the concrete shape behind every ledger event. Payloads are
// loosely typed maps; subscribers pick the keys they care about.
type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() interface{}  { return e.Data }

type Handler func(ctx context.Context, event Event) error

// EventBus fans ledger events out to in-process subscribers. Handlers run
// after the write they describe; a failing handler never rolls it back.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debug("event handler registered",
		"event_type", eventType,
		"total_handlers", len(eb.handlers[eventType]))
}

func (eb *EventBus) subscribers(eventType string) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return eb.handlers[eventType]
}

// Publish dispatches asynchronously. Handler errors are logged and dropped.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	handlers := eb.subscribers(event.EventType())
	if len(handlers) == 0 {
		return nil
	}

	for _, handler := range handlers {
		go func(h Handler) {
			if err := h(ctx, event); err != nil {
				eb.logger.Error("event handler failed",
					"event_type", event.EventType(),
					"event_id", event.EventID(),
					"error", err)
			}
		}(handler)
	}
	return nil
}

// PublishSync runs handlers in order and stops at the first failure.
// Tests use it to observe side effects deterministically.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	for _, handler := range eb.subscribers(event.EventType()) {
		if err := handler(ctx, event); err != nil {
			eb.logger.Error("event handler failed",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"error", err)
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}
	return nil
}
