package eventbus

import (
	"sync"

	"hnstories/internal/logger"
)

// syncBus delivers events on the publishing goroutine before Publish returns.
// It backs the non-interactive print mode and tests.
type syncBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]subscription
	nextID   uint64
	closed   bool
	log      logger.Logger
}

// NewSync creates an event bus that delivers events synchronously
func NewSync(log logger.Logger) EventBus {
	if log == nil {
		log = logger.NewNop()
	}
	return &syncBus{
		handlers: make(map[EventType][]subscription),
		log:      log,
	}
}

func (b *syncBus) Publish(event DomainEvent) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
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

func (b *syncBus) Subscribe(eventType EventType, handler EventHandler) func() {
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

func (b *syncBus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}
