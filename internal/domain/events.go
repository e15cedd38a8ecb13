package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchTermChanged EventType = "SearchTermChanged"
	EventQuerySubmitted    EventType = "QuerySubmitted"
	EventStoriesChanged    EventType = "StoriesChanged"
	EventFetchDiscarded    EventType = "FetchDiscarded"
	EventConfigLoaded      EventType = "ConfigLoaded"
	EventConfigSaved       EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchTermChangedEvent is emitted whenever the draft term is edited
type SearchTermChangedEvent struct {
	Term string
}

func (e SearchTermChangedEvent) Type() EventType { return EventSearchTermChanged }

// QuerySubmittedEvent is emitted when a draft is committed as the active query
type QuerySubmittedEvent struct {
	Query Query
}

func (e QuerySubmittedEvent) Type() EventType { return EventQuerySubmitted }

// StoriesChangedEvent carries a snapshot of the stories state after a transition
type StoriesChangedEvent struct {
	State StoriesState
}

func (e StoriesChangedEvent) Type() EventType { return EventStoriesChanged }

// FetchDiscardedEvent is emitted when a response arrives for a superseded query
type FetchDiscardedEvent struct {
	Query  Query
	Latest uint64
}

func (e FetchDiscardedEvent) Type() EventType { return EventFetchDiscarded }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path     string
	Endpoint string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
