package router

import (
	"fmt"
	"log/slog"
	"net/url"

	nerrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/routepath"
)

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithMaxRedirects sets the redirect hop bound.
func WithMaxRedirects(n int) MatcherOption {
	return func(m *Matcher) {
		if n > 0 {
			m.maxRedirects = n
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) MatcherOption {
	return func(m *Matcher) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Matcher resolves locations against a Table.
// It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	table        *Table
	maxRedirects int
	logger       *slog.Logger
}

// NewMatcher creates a matcher over table.
func NewMatcher(table *Table, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		table:        table,
		maxRedirects: table.redirectLimit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Table returns the matcher's route table.
func (m *Matcher) Table() *Table {
	return m.table
}

// MaxRedirects returns the redirect hop bound.
func (m *Matcher) MaxRedirects() int {
	return m.maxRedirects
}

// Resolve maps a location to the route that renders it, following
// redirects. It fails with *NoMatchError or *RedirectCycleError.
func (m *Matcher) Resolve(location string) (*ActiveRoute, error) {
	active, err := resolve(m.table, location, m.maxRedirects)
	if err != nil {
		m.logger.Debug("route resolution failed", "location", location, "error", err)
		return nil, err
	}
	if active.Redirected() {
		m.logger.Debug("route redirected",
			"location", location,
			"redirected_from", active.RedirectedFrom,
			"route", active.Route.Name,
			"target", active.Location)
	}
	return active, nil
}

// ResolveName builds the location of the named route and resolves it.
func (m *Matcher) ResolveName(name string, params map[string]string, query url.Values) (*ActiveRoute, error) {
	location, err := m.table.BuildPath(name, params, query)
	if err != nil {
		return nil, err
	}
	return m.Resolve(location)
}

// BuildPath returns the location of the named route with params filled in.
func (t *Table) BuildPath(name string, params map[string]string, query url.Values) (string, error) {
	i, ok := t.byName[name]
	if !ok {
		return "", &NoMatchError{Name: name, Err: nerrors.New("N100")}
	}
	e := t.entries[i]
	path, err := e.pattern.build(params)
	if err != nil {
		return "", nerrors.New("N108").
			WithSource(name).
			WithDetail(err.Error())
	}
	return routepath.JoinPathAndQuery(path, query.Encode()), nil
}

// resolve follows location through the table until a renderable route is
// found, at most limit redirects away.
func resolve(t *Table, location string, limit int) (*ActiveRoute, error) {
	var chain []string
	visited := make(map[string]bool)
	current := location

	for {
		loc, err := routepath.Normalize(current)
		if err != nil {
			return nil, &NoMatchError{
				Location:       current,
				RedirectedFrom: chain,
				Err:            nerrors.New("N109").WithDetail(err.Error()).Wrap(err),
			}
		}
		canonical := loc.String()

		matches := t.match(loc.Path)
		if len(matches) == 0 {
			return nil, &NoMatchError{
				Location:       canonical,
				RedirectedFrom: chain,
				Err:            nerrors.New("N100"),
			}
		}
		best := matches[0]
		e := &t.entries[best.index]

		if e.target == nil {
			return newActiveRoute(e, loc, best.params, chain), nil
		}

		if visited[canonical] || len(chain) >= limit {
			return nil, &RedirectCycleError{
				Chain: append(chain, canonical),
				Limit: limit,
			}
		}
		visited[canonical] = true
		chain = append(chain, canonical)

		next, err := e.target.build(best.params)
		if err != nil {
			return nil, &NoMatchError{
				Location:       canonical,
				RedirectedFrom: chain,
				Err:            nerrors.New("N108").WithDetail(fmt.Sprintf("redirect %q: %v", e.route.Redirect, err)),
			}
		}
		query := e.targetQuery
		if query == "" {
			query = loc.Query
		}
		current = routepath.JoinPathAndQuery(next, query)
	}
}

func newActiveRoute(e *entry, loc routepath.Location, params map[string]string, chain []string) *ActiveRoute {
	route := e.route.clone()

	props := make(Props, len(params)+len(route.Props))
	for k, v := range params {
		props[k] = v
	}
	for k, v := range route.Props.Clone() {
		props[k] = v
	}

	query, _ := url.ParseQuery(loc.Query)

	return &ActiveRoute{
		Route:          route,
		Location:       loc.String(),
		Path:           loc.Path,
		Query:          query,
		Params:         params,
		Props:          props,
		RedirectedFrom: chain,
		kinds:          paramKinds(e.pattern),
	}
}
