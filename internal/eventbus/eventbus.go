package eventbus

import (
	"runtime/debug"
	"sync"

	"hnstories/internal/domain"
	"hnstories/internal/logger"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventSearchTermChanged = domain.EventSearchTermChanged
	EventQuerySubmitted    = domain.EventQuerySubmitted
	EventStoriesChanged    = domain.EventStoriesChanged
	EventFetchDiscarded    = domain.EventFetchDiscarded
	EventConfigLoaded      = domain.EventConfigLoaded
	EventConfigSaved       = domain.EventConfigSaved
)

// Re-export domain event types
type SearchTermChangedEvent = domain.SearchTermChangedEvent
type QuerySubmittedEvent = domain.QuerySubmittedEvent
type StoriesChangedEvent = domain.StoriesChangedEvent
type FetchDiscardedEvent = domain.FetchDiscardedEvent
type ConfigLoadedEvent = domain.ConfigLoadedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	// Subscribe registers handler for eventType and returns an unsubscribe function
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus delivers events on a single dispatcher goroutine, so handlers observe
// events in publish order.
type bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
	log       logger.Logger
}

// New creates a new asynchronous event bus
func New(log logger.Logger) EventBus {
	if log == nil {
		log = logger.NewNop()
	}
	b := &bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 1000),
		quit:      make(chan struct{}),
		log:       log,
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish queues an event for delivery. Events are dropped when the queue is full.
func (b *bus) Publish(event DomainEvent) {
	if event.Type() != EventSearchTermChanged {
		b.log.Debug("EventBus: publishing event", logger.String("type", string(event.Type())))
	}

	select {
	case <-b.quit:
		return
	default:
	}

	select {
	case b.eventChan <- event:
	default:
		b.log.Warn("Event bus channel full, dropping event", logger.String("type", string(event.Type())))
	}
}

func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher. Queued events are discarded.
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()
}

func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.deliver(event)

		case <-b.quit:
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}

func (b *bus) deliver(event DomainEvent) {
	b.mu.RLock()
	subs := b.handlers[event.Type()]
	handlersCopy := make([]EventHandler, len(subs))
	for i, s := range subs {
		handlersCopy[i] = s.handler
	}
	b.mu.RUnlock()

	for _, h := range handlersCopy {
		callHandler(b.log, h, event)
	}
}

func callHandler(log logger.Logger, h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Event handler panic",
				logger.String("type", string(event.Type())),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())))
		}
	}()
	h(event)
}
