package navigation

import (
	"errors"
	"net/url"
	"time"

	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/router"
)

// ErrSuperseded is returned when a later request started before this one
// completed. The superseded result is discarded.
var ErrSuperseded = errors.New("navigation: superseded")

// State is the controller's lifecycle state.
type State int

const (
	// StateIdle means no navigation has completed yet.
	StateIdle State = iota
	// StateResolving means a request is in flight.
	StateResolving
	// StateActive means the latest request committed a route.
	StateActive
	// StateFailed means the latest request failed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EventKind identifies an Event.
type EventKind int

const (
	// EventActive reports a newly active route.
	EventActive EventKind = iota
	// EventError reports a failed navigation.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventActive:
		return "active"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers when a request commits.
type Event struct {
	Kind EventKind

	// Active is the active route after the event. For EventError it is the
	// route that stays active, nil before the first success. Each listener
	// receives its own copy.
	Active *router.ActiveRoute

	// Err is the failure for EventError, or the not-found cause when a
	// fallback route was activated.
	Err error

	// Fallback is set when Active is the configured fallback route.
	Fallback bool

	State     State
	RequestID string
	Location  string
}

// Listener receives events. Listeners run one at a time in commit order and
// may call back into the Controller.
type Listener func(Event)

// Source identifies what started a request.
type Source int

const (
	// SourceStart is the initial navigation.
	SourceStart Source = iota
	// SourceNavigate is a programmatic navigation by location.
	SourceNavigate
	// SourceName is a programmatic navigation by route name.
	SourceName
	// SourceExternal is a history change made outside the controller.
	SourceExternal
)

func (s Source) String() string {
	switch s {
	case SourceStart:
		return "start"
	case SourceNavigate:
		return "navigate"
	case SourceName:
		return "name"
	case SourceExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Request is a navigation in flight. Middleware may read it at any point;
// Active is set once resolution succeeded.
type Request struct {
	ID         string
	Generation uint64
	Source     Source
	Started    time.Time

	// Location is the requested location, as given.
	Location string

	// Name, Params and Query describe a SourceName request.
	Name   string
	Params map[string]string
	Query  url.Values

	Mode history.Mode

	Active *router.ActiveRoute
}

// Target returns the location, or the route name for named requests.
func (r *Request) Target() string {
	if r.Source == SourceName {
		return r.Name
	}
	return r.Location
}
