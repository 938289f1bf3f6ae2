package navtest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/navigation"
	"github.com/vango-dev/navcore/pkg/router"
)

// Harness is a controller wired to an in-memory history host.
type Harness struct {
	Table      *router.Table
	Matcher    *router.Matcher
	Host       *history.MemoryHost
	Adapter    *history.Adapter
	Controller *navigation.Controller
	Recorder   *Recorder
}

// Builder allows fluent construction of a Harness.
type Builder struct {
	routes   []router.Route
	initial  string
	options  []navigation.Option
	matchers []router.MatcherOption
	tables   []router.TableOption
	logger   *slog.Logger
}

// New creates a harness builder.
//
// Example:
//
//	h := navtest.New().
//	    WithRoutes(routes...).
//	    WithInitial("#/publish-video").
//	    WithOption(navigation.WithFallback("NotFound")).
//	    Build(t)
func New() *Builder {
	return &Builder{
		initial: "#/",
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithRoutes adds route definitions.
func (b *Builder) WithRoutes(routes ...router.Route) *Builder {
	b.routes = append(b.routes, routes...)
	return b
}

// WithInitial sets the location the host starts at.
func (b *Builder) WithInitial(location string) *Builder {
	b.initial = location
	return b
}

// WithOption adds a controller option.
func (b *Builder) WithOption(opts ...navigation.Option) *Builder {
	b.options = append(b.options, opts...)
	return b
}

// WithMiddleware adds controller middleware.
func (b *Builder) WithMiddleware(mw ...navigation.Middleware) *Builder {
	b.options = append(b.options, navigation.WithMiddleware(mw...))
	return b
}

// WithMatcherOption adds a matcher option.
func (b *Builder) WithMatcherOption(opts ...router.MatcherOption) *Builder {
	b.matchers = append(b.matchers, opts...)
	return b
}

// WithTableOption adds a table option.
func (b *Builder) WithTableOption(opts ...router.TableOption) *Builder {
	b.tables = append(b.tables, opts...)
	return b
}

// Build validates the routes and wires the harness. The controller is not
// started and is closed when the test ends.
func (b *Builder) Build(t testing.TB) *Harness {
	t.Helper()

	table, err := router.NewTable(b.routes, b.tables...)
	if err != nil {
		t.Fatalf("navtest: invalid routes: %v", err)
	}

	matcher := router.NewMatcher(table, append([]router.MatcherOption{router.WithLogger(b.logger)}, b.matchers...)...)
	host := history.NewMemoryHost(b.initial)
	adapter := history.New(host, b.logger)
	opts := append([]navigation.Option{navigation.WithLogger(b.logger)}, b.options...)
	controller := navigation.New(matcher, adapter, opts...)

	rec := NewRecorder()
	controller.Subscribe(rec.Record)
	t.Cleanup(controller.Close)

	return &Harness{
		Table:      table,
		Matcher:    matcher,
		Host:       host,
		Adapter:    adapter,
		Controller: controller,
		Recorder:   rec,
	}
}

// Start starts the controller and fails the test on error.
func (h *Harness) Start(t testing.TB, initial string) *router.ActiveRoute {
	t.Helper()
	active, err := h.Controller.Start(context.Background(), initial)
	if err != nil {
		t.Fatalf("navtest: start %q: %v", initial, err)
	}
	return active
}

// Navigate navigates and fails the test on error.
func (h *Harness) Navigate(t testing.TB, location string, opts ...navigation.NavigateOption) *router.ActiveRoute {
	t.Helper()
	active, err := h.Controller.NavigateTo(context.Background(), location, opts...)
	if err != nil {
		t.Fatalf("navtest: navigate %q: %v", location, err)
	}
	return active
}

// ExpectActive asserts that the controller's active route has name.
func ExpectActive(t testing.TB, c *navigation.Controller, name string) {
	t.Helper()
	active := c.Active()
	if active == nil {
		t.Errorf("expected active route %q, got none", name)
		return
	}
	if active.Name() != name {
		t.Errorf("expected active route %q, got %q (%s)", name, active.Name(), active.Location)
	}
}

// ExpectLocation asserts the location the host shows.
func ExpectLocation(t testing.TB, host history.Host, location string) {
	t.Helper()
	if got := host.Location(); got != location {
		t.Errorf("expected host location %q, got %q", location, got)
	}
}

// ExpectEvents asserts the kinds of the recorded events.
func ExpectEvents(t testing.TB, rec *Recorder, kinds ...navigation.EventKind) {
	t.Helper()
	events := rec.Events()
	got := make([]navigation.EventKind, len(events))
	for i, ev := range events {
		got[i] = ev.Kind
	}
	if len(got) != len(kinds) {
		t.Errorf("expected events %v, got %v", kinds, got)
		return
	}
	for i := range kinds {
		if got[i] != kinds[i] {
			t.Errorf("expected events %v, got %v", kinds, got)
			return
		}
	}
}
