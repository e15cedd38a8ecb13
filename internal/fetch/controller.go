// Package fetch runs one remote lookup per committed query and drives the
// stories state machine through its loading, success and failure transitions.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"hnstories/internal/domain"
	"hnstories/internal/eventbus"
	"hnstories/internal/logger"
	"hnstories/internal/stories"
)

// Searcher performs a single search request
//
//go:generate mockgen -source=controller.go -destination=mock_searcher_test.go -package=fetch
type Searcher interface {
	Search(ctx context.Context, q domain.Query) ([]domain.Story, error)
}

// Options configures a Controller
type Options struct {
	// DiscardStale cancels the previous in-flight request when a new query
	// arrives and drops any response that is not for the latest query.
	// When false every response is applied in arrival order.
	DiscardStale bool
}

// Controller turns committed queries into stories transitions
type Controller struct {
	searcher Searcher
	stories  stories.Dispatcher
	log      logger.Logger
	opts     Options

	// mu orders FetchInit against completions so a stale completion can
	// never land after a newer FetchInit.
	mu       sync.Mutex
	latest   uint64
	inFlight context.CancelFunc
	bus      eventbus.EventBus

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a controller that applies results to dispatcher
func New(searcher Searcher, dispatcher stories.Dispatcher, log logger.Logger, opts Options) *Controller {
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		searcher: searcher,
		stories:  dispatcher,
		log:      log,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Attach subscribes the controller to submitted queries on bus. Every
// submitted query starts a fetch, including repeats of the same term.
func (c *Controller) Attach(bus eventbus.EventBus) func() {
	c.mu.Lock()
	c.bus = bus
	c.mu.Unlock()

	return bus.Subscribe(eventbus.EventQuerySubmitted, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.QuerySubmittedEvent); ok {
			c.Run(ev.Query)
		}
	})
}

// Run starts a fetch for q. FetchInit is dispatched before Run returns; the
// outcome is dispatched later from another goroutine.
func (c *Controller) Run(q domain.Query) {
	c.mu.Lock()
	c.latest++
	run := c.latest
	if c.opts.DiscardStale && c.inFlight != nil {
		c.inFlight()
		c.inFlight = nil
	}
	ctx, cancel := context.WithCancel(c.ctx)
	if c.opts.DiscardStale {
		c.inFlight = cancel
	}
	c.stories.Dispatch(stories.FetchInit{})
	c.mu.Unlock()

	log := c.log.With(logger.String("term", q.Term), logger.Uint64("seq", q.Seq), logger.Uint64("run", run))

	if err := validate(q); err != nil {
		cancel()
		log.Warn("Rejected query", logger.Error(err))
		c.complete(run, q, nil, err, log)
		return
	}

	log.Debug("Fetch started", logger.String("url", q.URL))
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		items, err := c.search(ctx, q)
		c.complete(run, q, items, err, log)
	}()
}

// Wait blocks until every started fetch has been applied or discarded
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight requests and waits for them to finish
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Controller) search(ctx context.Context, q domain.Query) (items []domain.Story, err error) {
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("searcher panic: %v", r)
		}
	}()
	return c.searcher.Search(ctx, q)
}

func (c *Controller) complete(run uint64, q domain.Query, items []domain.Story, err error, log logger.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.DiscardStale && run != c.latest {
		log.Info("Discarding response for superseded query", logger.Uint64("latest", c.latest))
		if c.bus != nil {
			c.bus.Publish(eventbus.FetchDiscardedEvent{Query: q, Latest: c.latest})
		}
		return
	}

	if err != nil {
		log.Warn("Fetch failed", logger.Error(err))
		c.stories.Dispatch(stories.FetchFailure{Err: err})
		return
	}
	log.Info("Fetch succeeded", logger.Int("items", len(items)))
	c.stories.Dispatch(stories.FetchSuccess{Items: items})
}

func validate(q domain.Query) error {
	u, err := url.Parse(q.URL)
	if err != nil {
		return fmt.Errorf("malformed query url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("malformed query url %q: must be an absolute http(s) URL", q.URL)
	}
	return nil
}
