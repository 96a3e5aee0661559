// internal/events/bus.go
package events

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrBusClosed is returned when publishing after shutdown has begun.
	ErrBusClosed = errors.New("event bus closed")

	// ErrBusFull is returned when the buffer is at capacity. The event is
	// dropped rather than blocking the publishing operation.
	ErrBusFull = errors.New("event buffer full")
)

// Bus fans events out to subscribed handlers from a background goroutine, so
// publication never blocks the operation that produced the event.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType]map[string]Handler

	queue  chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewBus starts a bus with the given buffer capacity.
func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		handlers: make(map[EventType]map[string]Handler),
		queue:    make(chan Event, bufferSize),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.Named("event_bus"),
	}
	b.wg.Add(1)
	go b.run()
	return b
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]Handler)
	}
	b.handlers[eventType][id] = handler

	return &subscription{bus: b, typ: eventType, id: id}
}

// SubscribeFunc registers a plain function as a handler.
func (b *Bus) SubscribeFunc(eventType EventType, fn func(context.Context, Event) error) Subscription {
	return b.Subscribe(eventType, HandlerFunc(fn))
}

// Publish enqueues an event for asynchronous delivery.
func (b *Bus) Publish(event Event) error {
	select {
	case <-b.ctx.Done():
		return ErrBusClosed
	case b.queue <- event:
		return nil
	default:
		b.logger.Warn("Dropping event, buffer full",
			zap.String("event_type", string(event.Type())))
		return ErrBusFull
	}
}

// run dispatches queued events until shutdown, then drains what is left so no
// accepted event is lost.
func (b *Bus) run() {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			for {
				select {
				case event := <-b.queue:
					b.deliver(context.Background(), event)
				default:
					return
				}
			}
		case event := <-b.queue:
			b.wg.Add(1)
			go func(e Event) {
				defer b.wg.Done()
				b.deliver(b.ctx, e)
			}(event)
		}
	}
}

// deliver calls every handler subscribed to the event's type. The handler set
// is snapshotted so handlers can unsubscribe from inside a callback.
func (b *Bus) deliver(ctx context.Context, event Event) {
	b.mu.RLock()
	snapshot := make([]Handler, 0, len(b.handlers[event.Type()]))
	for _, h := range b.handlers[event.Type()] {
		snapshot = append(snapshot, h)
	}
	b.mu.RUnlock()

	for _, handler := range snapshot {
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("event_type", string(event.Type())),
				zap.Error(err))
		}
	}
}

// Shutdown stops accepting events and waits for in-flight deliveries, bounded
// by ctx.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

type subscription struct {
	bus *Bus
	typ EventType
	id  string
}

// Unsubscribe removes the handler; events already queued may still reach it.
func (s *subscription) Unsubscribe() {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, ok := b.handlers[s.typ]; ok {
		delete(handlers, s.id)
		if len(handlers) == 0 {
			delete(b.handlers, s.typ)
		}
	}
}
