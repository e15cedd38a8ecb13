package domain

// Story represents a single search hit
type Story struct {
	ID          string
	Title       string
	URL         string
	Author      string
	NumComments int
	Points      int
}

// Phase is the derived lifecycle state of a StoriesState
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// StoriesState is the state owned by the stories store
type StoriesState struct {
	Items     []Story
	IsLoading bool
	IsError   bool
	// settled is set once any fetch has completed, so an empty successful
	// result can be told apart from the initial state.
	settled bool
}

// Settle marks the state as having completed at least one fetch
func (s StoriesState) Settle() StoriesState {
	s.settled = true
	return s
}

// Phase reports which of the four lifecycle states s is in
func (s StoriesState) Phase() Phase {
	switch {
	case s.IsLoading:
		return PhaseLoading
	case s.IsError:
		return PhaseError
	case s.settled:
		return PhaseSuccess
	default:
		return PhaseIdle
	}
}

// Clone returns a copy of s that shares no backing array with it
func (s StoriesState) Clone() StoriesState {
	c := s
	if s.Items != nil {
		c.Items = make([]Story, len(s.Items))
		copy(c.Items, s.Items)
	}
	return c
}

// Query is a committed search: the term plus the URL it resolves to.
// Seq increases on every submit, so two submits of the same term are
// distinct values.
type Query struct {
	Term string
	URL  string
	Seq  uint64
}
