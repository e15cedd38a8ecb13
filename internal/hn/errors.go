package hn

import (
	"errors"
	"fmt"
)

// ErrFetch matches every *FetchError with errors.Is
var ErrFetch = errors.New("fetch failed")

// Kind classifies why a fetch failed
type Kind int

const (
	KindTransport Kind = iota + 1
	KindStatus
	KindPayload
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// FetchError describes a failed search request
type FetchError struct {
	Kind   Kind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind == KindStatus {
		return fmt.Sprintf("search %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("search %s: %s error: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports ErrFetch as a match
func (e *FetchError) Is(target error) bool { return target == ErrFetch }
