package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// EventHandler is a function that handles a domain event
type EventHandler func(ctx context.Context, event DomainEvent) error

// Publisher is what application services depend on to emit events
type Publisher interface {
	Publish(ctx context.Context, event DomainEvent)
}

// Dispatcher dispatches domain events to registered handlers
type Dispatcher struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]EventHandler),
	}
}

// Register registers an event handler for a specific event type
func (d *Dispatcher) Register(eventType string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// RegisterAll registers one handler for several event types
func (d *Dispatcher) RegisterAll(eventTypes []string, handler EventHandler) {
	for _, eventType := range eventTypes {
		d.Register(eventType, handler)
	}
}

// Dispatch runs every handler for the event concurrently and joins their errors
func (d *Dispatcher) Dispatch(ctx context.Context, event DomainEvent) error {
	d.mu.RLock()
	handlers := d.handlers[event.EventType()]
	d.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(handlers))

	for _, handler := range handlers {
		wg.Add(1)
		go func(h EventHandler) {
			defer wg.Done()
			if err := h(ctx, event); err != nil {
				errChan <- err
			}
		}(handler)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("dispatching %s: %w", event.EventType(), errors.Join(errs...))
	}

	return nil
}

// Publish dispatches the event and logs handler failures instead of returning them
func (d *Dispatcher) Publish(ctx context.Context, event DomainEvent) {
	if err := d.Dispatch(ctx, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"event":   event.EventType(),
			"eventId": event.EventID(),
		}).Errorf("event handler failed: %v", err)
	}
}

var _ Publisher = (*Dispatcher)(nil)
