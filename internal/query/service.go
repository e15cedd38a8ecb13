// Package query separates the search term being typed from the query that
// was last submitted. Only Submit starts a fetch cycle.
package query

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"hnstories/internal/domain"
	"hnstories/internal/eventbus"
	"hnstories/internal/logger"
	"hnstories/internal/preferences"
)

// Options configures a Service
type Options struct {
	// Endpoint is the search URL without a query string
	Endpoint string
	// Key is the preference key the draft term is persisted under
	Key string
}

// Service holds the draft search term and the committed query
type Service struct {
	mu        sync.RWMutex
	prefs     preferences.Store
	bus       eventbus.EventBus
	log       logger.Logger
	endpoint  string
	key       string
	draft     string
	committed domain.Query
	seq       uint64
}

// New creates a Service whose draft starts at the persisted term
func New(ctx context.Context, prefs preferences.Store, bus eventbus.EventBus, log logger.Logger, opts Options) (*Service, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.Key == "" {
		opts.Key = preferences.DefaultKey
	}
	if _, err := BuildURL(opts.Endpoint, ""); err != nil {
		return nil, err
	}

	term, err := prefs.Load(ctx, opts.Key)
	if err != nil {
		return nil, fmt.Errorf("load search term: %w", err)
	}

	return &Service{
		prefs:    prefs,
		bus:      bus,
		log:      log,
		endpoint: opts.Endpoint,
		key:      opts.Key,
		draft:    term,
	}, nil
}

// Draft returns the term currently being edited
func (s *Service) Draft() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// Committed returns the most recently submitted query. Seq is 0 before the
// first submit.
func (s *Service) Committed() domain.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed
}

// SetDraft replaces the draft term and persists it. It is written even when
// unchanged. A persistence failure is returned but the draft still changes.
func (s *Service) SetDraft(ctx context.Context, term string) error {
	s.mu.Lock()
	s.draft = term
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(eventbus.SearchTermChangedEvent{Term: term})
	}

	if err := s.prefs.Save(ctx, s.key, term); err != nil {
		s.log.Warn("Failed to persist search term", logger.Error(err))
		return fmt.Errorf("persist search term: %w", err)
	}
	return nil
}

// Submit commits the current draft as the active query and announces it.
// Submitting an unchanged term still produces a new query.
func (s *Service) Submit() domain.Query {
	s.mu.Lock()
	s.seq++
	rawURL, err := BuildURL(s.endpoint, s.draft)
	if err != nil {
		// endpoint was validated in New
		rawURL = s.endpoint
	}
	q := domain.Query{Term: s.draft, URL: rawURL, Seq: s.seq}
	s.committed = q
	s.mu.Unlock()

	s.log.Info("Query submitted", logger.String("term", q.Term), logger.Uint64("seq", q.Seq))
	if s.bus != nil {
		s.bus.Publish(eventbus.QuerySubmittedEvent{Query: q})
	}
	return q
}

// OnSubmit registers fn to run for every submitted query and returns a
// function that removes the registration.
func (s *Service) OnSubmit(fn func(domain.Query)) func() {
	if s.bus == nil {
		return func() {}
	}
	return s.bus.Subscribe(eventbus.EventQuerySubmitted, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.QuerySubmittedEvent); ok {
			fn(ev.Query)
		}
	})
}

// BuildURL appends the escaped term to endpoint as the query parameter.
func BuildURL(endpoint, term string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q: must be an absolute http(s) URL", endpoint)
	}

	params := u.Query()
	params.Set("query", term)
	u.RawQuery = params.Encode()
	return u.String(), nil
}
