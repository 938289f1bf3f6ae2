package router

import (
	"net/url"

	"github.com/vango-dev/navcore/pkg/routepath"
)

// Component is an opaque renderable view handle. The router never
// inspects it; several routes may share the same handle.
type Component any

// Props are static configuration values handed to a route's component.
type Props map[string]any

// Clone returns a deep copy of p. Nested maps and slices produced by
// configuration decoders are copied too.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Props:
		return x.Clone()
	case map[string]any:
		return map[string]any(Props(x).Clone())
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}

// Route is a route definition.
type Route struct {
	// Path is the route pattern (e.g. "/users/:id:int").
	Path string

	// Name optionally identifies the route for navigation by name.
	Name string

	// Component is the view rendered for this route.
	// Mutually exclusive with Redirect.
	Component Component

	// Props are passed to the component regardless of the matched parameters.
	Props Props

	// Redirect makes this route an alias of another location.
	// The target may reference the route's parameters (":id").
	Redirect string

	// Meta carries free-form route metadata (title, icon, ...).
	Meta map[string]string
}

// IsRedirect reports whether the route is an alias.
func (r Route) IsRedirect() bool {
	return r.Redirect != ""
}

// clone copies the mutable parts of a route.
func (r Route) clone() Route {
	r.Props = r.Props.Clone()
	if r.Meta != nil {
		meta := make(map[string]string, len(r.Meta))
		for k, v := range r.Meta {
			meta[k] = v
		}
		r.Meta = meta
	}
	return r
}

// ActiveRoute is the result of resolving a location.
type ActiveRoute struct {
	// Route is the renderable route that was resolved.
	Route Route

	// Location is the canonical routed location ("/path?query").
	Location string

	// Path is the canonical path.
	Path string

	// Query holds the decoded query parameters.
	Query url.Values

	// Params are the dynamic parameters extracted from the path.
	Params map[string]string

	// Props are the parameters merged with the route's static props.
	// Static props win on key collision.
	Props Props

	// RedirectedFrom lists the locations that redirected here, in order.
	RedirectedFrom []string

	// kinds maps declared parameters to their constraint names.
	kinds map[string]string
}

// Clone returns a copy of a that shares no mutable state with it.
func (a *ActiveRoute) Clone() *ActiveRoute {
	if a == nil {
		return nil
	}
	out := *a
	out.Route = a.Route.clone()
	out.Props = a.Props.Clone()
	if a.Params != nil {
		out.Params = make(map[string]string, len(a.Params))
		for k, v := range a.Params {
			out.Params[k] = v
		}
	}
	if a.Query != nil {
		out.Query = make(url.Values, len(a.Query))
		for k, v := range a.Query {
			out.Query[k] = append([]string(nil), v...)
		}
	}
	if a.RedirectedFrom != nil {
		out.RedirectedFrom = append([]string(nil), a.RedirectedFrom...)
	}
	return &out
}

// Name returns the resolved route's name.
func (a *ActiveRoute) Name() string {
	return a.Route.Name
}

// Component returns the resolved route's component.
func (a *ActiveRoute) Component() Component {
	return a.Route.Component
}

// Redirected reports whether resolution followed at least one redirect.
func (a *ActiveRoute) Redirected() bool {
	return len(a.RedirectedFrom) > 0
}

// Fragment returns the addressable form of the location ("#/path?query").
func (a *ActiveRoute) Fragment() string {
	return routepath.Fragment(a.Location)
}

// Candidate is a route that matches a location, with its extracted parameters.
type Candidate struct {
	Route  Route
	Params map[string]string

	index int
	rank  []int
}

// Index returns the registration index of the candidate's route.
func (c Candidate) Index() int {
	return c.index
}
