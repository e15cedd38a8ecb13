package stories

import (
	"sync"

	"hnstories/internal/domain"
	"hnstories/internal/eventbus"
	"hnstories/internal/logger"
)

// Dispatcher applies actions to the stories state
type Dispatcher interface {
	Dispatch(action Action)
}

// Store is the single owner of the stories state. Dispatch is the only way
// to change it.
type Store struct {
	mu    sync.RWMutex
	state domain.StoriesState
	bus   eventbus.EventBus
	log   logger.Logger
}

// NewStore creates a store in the idle state. bus may be nil.
func NewStore(bus eventbus.EventBus, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{bus: bus, log: log}
}

// Dispatch applies action and publishes the resulting state
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	s.log.Debug("Stories transition",
		logger.String("action", Name(action)),
		logger.String("phase", snapshot.Phase().String()),
		logger.Int("items", len(snapshot.Items)))

	if s.bus != nil {
		s.bus.Publish(eventbus.StoriesChangedEvent{State: snapshot})
	}
}

// State returns a copy of the current state
func (s *Store) State() domain.StoriesState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}
