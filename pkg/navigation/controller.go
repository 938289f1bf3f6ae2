package navigation

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	nerrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/routepath"
	"github.com/vango-dev/navcore/pkg/router"
)

// Controller owns the active route.
type Controller struct {
	matcher    *router.Matcher
	adapter    *history.Adapter
	logger     *slog.Logger
	middleware []Middleware
	fallback   string

	// ctx bounds requests started by history changes.
	ctx    context.Context
	cancel context.CancelFunc

	// commitMu orders commits and cancellations so the host write can
	// run without holding mu.
	commitMu sync.Mutex

	mu         sync.Mutex
	state      State
	settled    State
	active     *router.ActiveRoute
	generation uint64
	started    bool
	stopListen func()

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int

	notifyMu sync.Mutex
	pending  []Event
	draining bool
}

// New creates a controller. Call Start before navigating.
func New(matcher *router.Matcher, adapter *history.Adapter, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		matcher:   matcher,
		adapter:   adapter,
		logger:    slog.Default(),
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "navigation")
	return c
}

// Start subscribes to history changes and resolves the initial location.
// An empty initial location uses the location the host shows, "/" when the
// host shows nothing. Start may be called once.
func (c *Controller) Start(ctx context.Context, initial string) (*router.ActiveRoute, error) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil, nerrors.New("N201")
	}
	c.started = true
	c.mu.Unlock()

	stop := c.adapter.OnExternalChange(c.onExternalChange)
	c.mu.Lock()
	c.stopListen = stop
	c.mu.Unlock()

	if initial == "" {
		initial = c.adapter.Location()
	}
	return c.run(ctx, &Request{
		Source:   SourceStart,
		Location: initial,
		Mode:     history.ModeReplace,
	})
}

// Close stops listening to history changes and cancels requests started
// by them.
func (c *Controller) Close() {
	c.mu.Lock()
	stop := c.stopListen
	c.stopListen = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	c.cancel()
}

// NavigateTo resolves location and makes it active.
//
// When a fallback route is configured and location matches nothing, the
// fallback is returned together with the *router.NoMatchError.
func (c *Controller) NavigateTo(ctx context.Context, location string, opts ...NavigateOption) (*router.ActiveRoute, error) {
	o := buildNavigateOptions(opts)
	if len(o.Query) > 0 {
		location = mergeQuery(location, o.Query)
	}
	return c.run(ctx, &Request{
		Source:   SourceNavigate,
		Location: location,
		Mode:     modeOf(o),
	})
}

// NavigateName navigates to the named route with params filled in.
func (c *Controller) NavigateName(ctx context.Context, name string, params map[string]string, opts ...NavigateOption) (*router.ActiveRoute, error) {
	o := buildNavigateOptions(opts)
	return c.run(ctx, &Request{
		Source: SourceName,
		Name:   name,
		Params: params,
		Query:  o.Query,
		Mode:   modeOf(o),
	})
}

// Replace navigates to location, replacing the current history entry.
func (c *Controller) Replace(ctx context.Context, location string) (*router.ActiveRoute, error) {
	return c.NavigateTo(ctx, location, WithReplace())
}

// Back moves the host one entry back. The change is resolved like any other
// history change.
func (c *Controller) Back() error {
	if err := c.requireStarted(); err != nil {
		return err
	}
	return c.adapter.Back()
}

// Forward moves the host one entry forward.
func (c *Controller) Forward() error {
	if err := c.requireStarted(); err != nil {
		return err
	}
	return c.adapter.Forward()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active returns a copy of the active route, nil before the first success.
func (c *Controller) Active() *router.ActiveRoute {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.Clone()
}

// Subscribe registers l for events. The returned function unsubscribes.
func (c *Controller) Subscribe(l Listener) (unsubscribe func()) {
	c.listenerMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.listenerMu.Lock()
			delete(c.listeners, id)
			c.listenerMu.Unlock()
		})
	}
}

func (c *Controller) requireStarted() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nerrors.New("N202")
	}
	return nil
}

func (c *Controller) onExternalChange(location string) {
	_, err := c.run(c.ctx, &Request{
		Source:   SourceExternal,
		Location: location,
		Mode:     history.ModeReplace,
	})
	if err != nil && !errors.Is(err, ErrSuperseded) {
		c.logger.Debug("external navigation failed", "location", location, "error", err)
	}
}

// run executes one request: begin, resolve through the middleware chain,
// commit.
func (c *Controller) run(ctx context.Context, req *Request) (*router.ActiveRoute, error) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil, nerrors.New("N202")
	}
	c.generation++
	req.Generation = c.generation
	req.ID = uuid.NewString()
	req.Started = time.Now()
	c.state = StateResolving
	c.mu.Unlock()

	log := c.logger.With("request_id", req.ID, "source", req.Source.String(), "target", req.Target())
	log.Debug("navigation started")

	err := ComposeMiddleware(ctx, req, c.middleware, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		active, err := c.resolve(req)
		if err != nil {
			return err
		}
		req.Active = active
		return nil
	})

	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		c.commitMu.Lock()
		c.mu.Lock()
		if req.Generation == c.generation {
			c.state = c.settled
		}
		c.mu.Unlock()
		c.commitMu.Unlock()
		log.Debug("navigation canceled", "error", err)
		return nil, err
	}

	return c.commit(req, err, log)
}

func (c *Controller) resolve(req *Request) (*router.ActiveRoute, error) {
	if req.Source == SourceName {
		return c.matcher.ResolveName(req.Name, req.Params, req.Query)
	}
	return c.matcher.Resolve(req.Location)
}

// commit applies the outcome of req if it is still the latest request.
//
// The host write happens outside mu so State and Active stay readable
// while a slow host is written. A request that was current when its
// commit began is committed in full; a newer request that started
// meanwhile only keeps its own Resolving state and commits after it.
func (c *Controller) commit(req *Request, resolveErr error, log *slog.Logger) (*router.ActiveRoute, error) {
	c.commitMu.Lock()

	c.mu.Lock()
	stale := req.Generation != c.generation
	c.mu.Unlock()
	if stale {
		c.commitMu.Unlock()
		log.Debug("navigation superseded")
		return nil, nerrors.New("N203").WithDetailf("request %s", req.ID).Wrap(ErrSuperseded)
	}

	ev := Event{RequestID: req.ID, Location: req.Target()}
	var result *router.ActiveRoute
	err := resolveErr

	switch {
	case err == nil:
		if syncErr := c.adapter.Sync(req.Active, c.syncMode(req)); syncErr != nil {
			err = syncErr
			break
		}
		result = req.Active

	case c.fallback != "" && errors.Is(err, router.ErrNoMatch):
		if fb, fbErr := c.resolveFallback(req); fbErr == nil {
			result = fb
			ev.Fallback = true
		} else {
			log.Warn("fallback route failed", "fallback", c.fallback, "error", fbErr)
		}
	}

	c.mu.Lock()
	if result != nil {
		c.active = result
		c.settled = StateActive
		ev.Kind = EventActive
	} else {
		c.settled = StateFailed
		ev.Kind = EventError
	}
	if req.Generation == c.generation {
		c.state = c.settled
	}
	ev.Err = err
	ev.State = c.settled
	ev.Active = c.active
	c.enqueue(ev)
	c.mu.Unlock()
	c.commitMu.Unlock()

	if ev.Kind == EventActive {
		log.Info("navigation committed",
			"route", result.Name(),
			"location", result.Location,
			"fallback", ev.Fallback,
			"duration", time.Since(req.Started))
	} else {
		log.Warn("navigation failed", "error", err)
	}

	c.drain()
	return result.Clone(), err
}

// syncMode picks the history write for req. History changes are already
// shown by the host, so a redirect replaces the entry instead of pushing.
func (c *Controller) syncMode(req *Request) history.Mode {
	if req.Source == SourceExternal || req.Source == SourceStart {
		return history.ModeReplace
	}
	return req.Mode
}

func (c *Controller) resolveFallback(req *Request) (*router.ActiveRoute, error) {
	active, err := c.matcher.ResolveName(c.fallback, nil, nil)
	if err != nil {
		return nil, err
	}
	location := req.Target()
	if req.Source != SourceName {
		if loc, err := routepath.Normalize(req.Location); err == nil {
			location = loc.String()
		}
	}
	active.Params["location"] = location
	if _, ok := active.Props["location"]; !ok {
		active.Props["location"] = location
	}
	return active, nil
}

// enqueue appends ev to the dispatch queue. Callers hold c.mu so events are
// queued in commit order.
func (c *Controller) enqueue(ev Event) {
	c.notifyMu.Lock()
	c.pending = append(c.pending, ev)
	c.notifyMu.Unlock()
}

// drain delivers queued events. Only one goroutine drains at a time; a
// listener that navigates re-enters here and returns at once, leaving its
// event to the outer loop.
func (c *Controller) drain() {
	c.notifyMu.Lock()
	if c.draining {
		c.notifyMu.Unlock()
		return
	}
	c.draining = true
	for len(c.pending) > 0 {
		ev := c.pending[0]
		c.pending = c.pending[1:]
		c.notifyMu.Unlock()

		c.dispatch(ev)

		c.notifyMu.Lock()
	}
	c.draining = false
	c.notifyMu.Unlock()
}

func (c *Controller) dispatch(ev Event) {
	c.listenerMu.Lock()
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	c.listenerMu.Unlock()
	slices.Sort(ids)

	for _, id := range ids {
		c.listenerMu.Lock()
		l, ok := c.listeners[id]
		c.listenerMu.Unlock()
		if ok {
			own := ev
			own.Active = ev.Active.Clone()
			l(own)
		}
	}
}

func modeOf(o NavigateOptions) history.Mode {
	if o.Replace {
		return history.ModeReplace
	}
	return history.ModePush
}

// mergeQuery sets query on location, overriding keys already present.
func mergeQuery(location string, query url.Values) string {
	path, raw := routepath.SplitPathAndQuery(routepath.StripFragment(location))
	values, err := url.ParseQuery(raw)
	if err != nil {
		values = url.Values{}
	}
	for k, v := range query {
		values[k] = v
	}
	return routepath.JoinPathAndQuery(path, values.Encode())
}
