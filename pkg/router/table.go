package router

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	nerrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/routepath"
)

// DefaultMaxRedirects is the default bound on redirect hops.
const DefaultMaxRedirects = 10

// TableOption configures table construction.
type TableOption func(*tableOptions)

type tableOptions struct {
	constraints   map[string]Constraint
	redirectLimit int
}

// WithConstraint registers an additional parameter constraint.
// Built-in constraints with the same name are replaced.
func WithConstraint(name string, c Constraint) TableOption {
	return func(o *tableOptions) {
		if o.constraints == nil {
			o.constraints = make(map[string]Constraint)
		}
		o.constraints[name] = c
	}
}

// WithRedirectLimit sets the hop bound used to validate static redirect
// chains. It is also the default bound of matchers built on the table.
func WithRedirectLimit(n int) TableOption {
	return func(o *tableOptions) {
		o.redirectLimit = n
	}
}

// entry is a registered route with its parsed pattern.
type entry struct {
	route   Route
	pattern *pattern
	ranks   []int

	// target is the parsed redirect target path, nil for renderable routes.
	target      *pattern
	targetQuery string
}

// Table is an immutable, validated route table.
// It is safe for concurrent use.
type Table struct {
	entries       []entry
	byName        map[string]int
	root          *routeNode
	redirectLimit int
}

// NewTable validates routes and builds a table. Construction is
// all-or-nothing: if any route is invalid, no table is returned and the
// error is a *ValidationError listing every problem found.
func NewTable(routes []Route, opts ...TableOption) (*Table, error) {
	options := tableOptions{redirectLimit: DefaultMaxRedirects}
	for _, opt := range opts {
		opt(&options)
	}
	if options.redirectLimit < 1 {
		options.redirectLimit = DefaultMaxRedirects
	}
	set := newConstraintSet(options.constraints)

	t := &Table{
		entries:       make([]entry, 0, len(routes)),
		byName:        make(map[string]int),
		root:          newRouteNode(""),
		redirectLimit: options.redirectLimit,
	}

	var problems []*nerrors.Error
	byKey := make(map[string]int)

	for i, r := range routes {
		source := fmt.Sprintf("routes[%d]", i)
		problem := func(code string) *nerrors.Error {
			p := nerrors.New(code).WithSource(source)
			problems = append(problems, p)
			return p
		}

		p, err := parsePattern(r.Path, set)
		if err != nil {
			var unknown *unknownConstraintError
			if errors.As(err, &unknown) {
				problem("N105").WithDetail(err.Error()).
					WithSuggestion("use one of int, uint, float, slug, alpha, alphanum, date, hex, uuid, domain or register it with WithConstraint")
			} else {
				problem("N104").WithDetail(err.Error())
			}
		}

		if (r.Component != nil) == (r.Redirect != "") {
			problem("N103").WithDetailf("route %q sets %s", describe(r), componentRedirectState(r))
		}

		if r.Name != "" {
			if prev, dup := t.byName[r.Name]; dup {
				problem("N101").WithDetailf("name %q is already used by routes[%d]", r.Name, prev)
			} else {
				t.byName[r.Name] = i
			}
		}

		e := entry{route: r.clone(), pattern: p}
		if p != nil {
			e.ranks = p.ranks()
			key := p.key()
			if prev, dup := byKey[key]; dup {
				problem("N102").WithDetailf("path %q has the same shape as routes[%d] (%q)", r.Path, prev, routes[prev].Path)
			} else {
				byKey[key] = i
			}
		}

		if r.Redirect != "" {
			target, query, err := parseRedirect(r.Redirect)
			if err != nil {
				problem("N104").WithDetailf("redirect target: %v", err)
			} else if p != nil {
				if missing := missingParams(target, p); len(missing) > 0 {
					problem("N104").WithDetailf("redirect target %q references %s not declared by %q",
						r.Redirect, strings.Join(missing, ", "), r.Path)
				}
			}
			e.target = target
			e.targetQuery = query
		}

		t.entries = append(t.entries, e)
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	for i := range t.entries {
		t.root.insert(t.entries[i].pattern, i)
	}

	// Static redirect chains are fully determined by the table, so check
	// them now instead of failing at navigation time.
	for i, e := range t.entries {
		if e.target == nil || !e.target.isStatic() {
			continue
		}
		// The hop from the route to its target counts against the limit.
		_, err := resolve(t, e.target.raw, t.redirectLimit-1)
		if err == nil {
			continue
		}
		source := fmt.Sprintf("routes[%d]", i)
		var cycle *RedirectCycleError
		switch {
		case errors.As(err, &cycle):
			problems = append(problems, nerrors.New("N107").WithSource(source).
				WithDetailf("redirect from %q: %s", e.route.Path, strings.Join(append([]string{e.route.Path}, cycle.Chain...), " -> ")).
				Wrap(cycle))
		default:
			problems = append(problems, nerrors.New("N106").WithSource(source).
				WithDetailf("redirect %q from %q does not match any route", e.route.Redirect, e.route.Path).
				Wrap(err))
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return t, nil
}

// parseRedirect splits a redirect target into its path pattern and query.
func parseRedirect(redirect string) (*pattern, string, error) {
	path, query := routepath.SplitPathAndQuery(routepath.StripFragment(redirect))
	p, err := parsePattern(path, nil)
	if err != nil {
		return nil, "", err
	}
	return p, query, nil
}

// missingParams returns the target placeholders that source does not declare.
func missingParams(target, source *pattern) []string {
	declared := make(map[string]bool)
	for _, name := range source.paramNames() {
		declared[name] = true
	}
	var missing []string
	for _, name := range target.paramNames() {
		if !declared[name] {
			missing = append(missing, fmt.Sprintf("%q", name))
		}
	}
	return missing
}

func describe(r Route) string {
	if r.Name != "" {
		return r.Name
	}
	return r.Path
}

func componentRedirectState(r Route) string {
	if r.Component != nil {
		return "both component and redirect"
	}
	return "neither component nor redirect"
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	return len(t.entries)
}

// Routes returns copies of the registered routes in registration order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.route.clone()
	}
	return out
}

// LookupByName returns the route registered under name.
func (t *Table) LookupByName(name string) (Route, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return t.entries[i].route.clone(), true
}

// MatchByPath returns every route matching location, best first.
// The location may be in any form accepted by routepath.Normalize.
func (t *Table) MatchByPath(location string) ([]Candidate, error) {
	loc, err := routepath.Normalize(location)
	if err != nil {
		return nil, &NoMatchError{Location: location, Err: nerrors.New("N109").Wrap(err)}
	}
	matches := t.match(loc.Path)
	out := make([]Candidate, len(matches))
	for i, m := range matches {
		out[i] = Candidate{
			Route:  t.entries[m.index].route.clone(),
			Params: m.params,
			index:  m.index,
			rank:   t.entries[m.index].ranks,
		}
	}
	return out, nil
}

// match is a ranked match against a canonical path.
type match struct {
	index  int
	params map[string]string
}

func (t *Table) match(path string) []match {
	parts := routepath.SplitSegments(path)
	indexes := t.root.collect(parts, nil)

	matches := make([]match, 0, len(indexes))
	for _, i := range indexes {
		params, ok := t.entries[i].pattern.extract(parts)
		if !ok {
			continue
		}
		matches = append(matches, match{index: i, params: params})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return t.better(matches[a].index, matches[b].index)
	})
	return matches
}

// better reports whether route a takes precedence over route b.
// Segments are compared left to right; the first more specific segment
// wins. Registration order breaks ties.
func (t *Table) better(a, b int) bool {
	ra, rb := t.entries[a].ranks, t.entries[b].ranks
	for i := 0; i < len(ra) && i < len(rb); i++ {
		if ra[i] != rb[i] {
			return ra[i] > rb[i]
		}
	}
	if len(ra) != len(rb) {
		return len(ra) > len(rb)
	}
	return a < b
}
