package stories

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hnstories/internal/domain"
	"hnstories/internal/eventbus"
)

func TestStorePublishesEveryTransition(t *testing.T) {
	bus := eventbus.NewSync(nil)
	var phases []domain.Phase
	bus.Subscribe(eventbus.EventStoriesChanged, func(e eventbus.DomainEvent) {
		phases = append(phases, e.(eventbus.StoriesChangedEvent).State.Phase())
	})

	store := NewStore(bus, nil)
	store.Dispatch(FetchInit{})
	store.Dispatch(FetchSuccess{Items: reactAndRedux()})
	store.Dispatch(FetchInit{})
	store.Dispatch(FetchFailure{Err: errors.New("boom")})

	assert.Equal(t, []domain.Phase{
		domain.PhaseLoading, domain.PhaseSuccess, domain.PhaseLoading, domain.PhaseError,
	}, phases)
}

func TestStoreScenarioDismiss(t *testing.T) {
	store := NewStore(nil, nil)
	store.Dispatch(FetchInit{})
	store.Dispatch(FetchSuccess{Items: reactAndRedux()})

	store.Dispatch(RemoveItem{ID: "1"})

	state := store.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "0", state.Items[0].ID)
}

func TestStoreStateIsACopy(t *testing.T) {
	store := NewStore(nil, nil)
	store.Dispatch(FetchSuccess{Items: reactAndRedux()})

	snapshot := store.State()
	snapshot.Items[0].Title = "changed"
	snapshot.IsError = true

	fresh := store.State()
	assert.Equal(t, "React", fresh.Items[0].Title)
	assert.False(t, fresh.IsError)
}
