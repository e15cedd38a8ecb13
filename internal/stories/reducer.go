// Package stories holds the stories state machine: a pure transition
// function and the single store that owns the state.
package stories

import (
	"errors"
	"fmt"

	"hnstories/internal/domain"
)

// ErrUnknownAction is the panic value wrapped when Reduce receives an action
// it has no transition for.
var ErrUnknownAction = errors.New("stories: unknown action")

// Action is a transition request for the stories state machine
type Action interface {
	actionName() string
}

// FetchInit marks the start of a fetch for a newly active query
type FetchInit struct{}

// FetchSuccess replaces the list with the fetched items
type FetchSuccess struct {
	Items []domain.Story
}

// FetchFailure records that the active fetch failed
type FetchFailure struct {
	Err error
}

// RemoveItem drops the story with the given ID from the list
type RemoveItem struct {
	ID string
}

func (FetchInit) actionName() string    { return "FETCH_INIT" }
func (FetchSuccess) actionName() string { return "FETCH_SUCCESS" }
func (FetchFailure) actionName() string { return "FETCH_FAILURE" }
func (RemoveItem) actionName() string   { return "REMOVE_ITEM" }

// Name returns the transition name of an action, for logging
func Name(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.actionName()
}

// Reduce maps a state and an action to the next state. It never modifies
// the input state. An unknown action is a programming error and panics.
func Reduce(state domain.StoriesState, action Action) domain.StoriesState {
	switch a := action.(type) {
	case FetchInit:
		next := state
		next.IsLoading = true
		next.IsError = false
		return next

	case FetchSuccess:
		next := state.Settle()
		next.IsLoading = false
		next.IsError = false
		next.Items = make([]domain.Story, len(a.Items))
		copy(next.Items, a.Items)
		return next

	case FetchFailure:
		next := state.Settle()
		next.IsLoading = false
		next.IsError = true
		return next

	case RemoveItem:
		return removeItem(state, a.ID)

	default:
		panic(fmt.Errorf("%w: %T", ErrUnknownAction, action))
	}
}

func removeItem(state domain.StoriesState, id string) domain.StoriesState {
	idx := -1
	for i, s := range state.Items {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state
	}

	next := state
	next.Items = make([]domain.Story, 0, len(state.Items)-1)
	for _, s := range state.Items {
		if s.ID != id {
			next.Items = append(next.Items, s)
		}
	}
	return next
}
