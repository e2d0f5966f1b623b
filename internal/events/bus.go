package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"barterhub/internal/models"
	"barterhub/pkg/logger"
)

// Handler reacts to a domain event. Errors are logged; they never reach the
// code that published the event.
type Handler func(ctx context.Context, event *models.DomainEvent) error

type subscription struct {
	name    string
	handler Handler
}

type Config struct {
	BufferSize     int
	Workers        int
	HandlerTimeout time.Duration
}

// Bus fans domain events out to subscribers on a fixed pool of workers.
// Publish never blocks: when the buffer is full the event is dropped and
// logged.
type Bus struct {
	queue    chan *models.DomainEvent
	handlers map[models.EventType][]subscription
	wildcard []subscription
	mutex    sync.RWMutex
	config   Config
	log      *logger.Logger
}

func NewBus(config Config, log *logger.Logger) *Bus {
	if config.BufferSize <= 0 {
		config.BufferSize = 1024
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.HandlerTimeout <= 0 {
		config.HandlerTimeout = 10 * time.Second
	}

	return &Bus{
		queue:    make(chan *models.DomainEvent, config.BufferSize),
		handlers: make(map[models.EventType][]subscription),
		config:   config,
		log:      log.WithField("component", "event_bus"),
	}
}

func (b *Bus) Subscribe(eventType models.EventType, name string, handler Handler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], subscription{name: name, handler: handler})
}

// SubscribeAll registers handler for every event type.
func (b *Bus) SubscribeAll(name string, handler Handler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.wildcard = append(b.wildcard, subscription{name: name, handler: handler})
}

func (b *Bus) Publish(event *models.DomainEvent) {
	select {
	case b.queue <- event:
	default:
		b.log.WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Warn("Event buffer full, dropping event")
	}
}

// Run processes events until ctx is cancelled, then drains what is already
// buffered and returns.
func (b *Bus) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < b.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.worker(ctx)
		}()
	}
	wg.Wait()
}

func (b *Bus) worker(ctx context.Context) {
	for {
		select {
		case event := <-b.queue:
			b.dispatch(event)
		case <-ctx.Done():
			for {
				select {
				case event := <-b.queue:
					b.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) dispatch(event *models.DomainEvent) {
	b.mutex.RLock()
	subs := make([]subscription, 0, len(b.handlers[event.Type])+len(b.wildcard))
	subs = append(subs, b.handlers[event.Type]...)
	subs = append(subs, b.wildcard...)
	b.mutex.RUnlock()

	for _, sub := range subs {
		if err := b.invoke(sub, event); err != nil {
			b.log.WithError(err).WithFields(map[string]interface{}{
				"event_id":   event.ID,
				"event_type": event.Type,
				"handler":    sub.name,
			}).Error("Event handler failed")
		}
	}
}

func (b *Bus) invoke(sub subscription, event *models.DomainEvent) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.HandlerTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return sub.handler(ctx, event)
}
