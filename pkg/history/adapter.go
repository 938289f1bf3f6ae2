package history

import (
	"log/slog"
	"sync"

	nerrors "github.com/vango-dev/navcore/internal/errors"
	"github.com/vango-dev/navcore/pkg/routepath"
	"github.com/vango-dev/navcore/pkg/router"
)

// Adapter reflects the active route in a Host and reports host-driven
// location changes.
type Adapter struct {
	host   Host
	logger *slog.Logger

	mu sync.Mutex
	// current is the canonical location of the last synced route.
	current string
	// shown is the canonical location the host is known to display,
	// either written by Sync or reported by the host.
	shown string
}

// New creates an adapter over host. A nil logger uses slog.Default().
func New(host Host, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		host:   host,
		logger: logger.With("component", "history"),
	}
}

// Host returns the underlying host.
func (a *Adapter) Host() Host {
	return a.host
}

// Current returns the canonical location of the last synced route,
// or "" before the first Sync.
func (a *Adapter) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Location returns the canonical form of what the host currently shows.
// Unparseable host locations are returned stripped but otherwise unchanged.
func (a *Adapter) Location() string {
	raw := a.host.Location()
	loc, err := routepath.Normalize(raw)
	if err != nil {
		return routepath.StripFragment(raw)
	}
	return loc.String()
}

// Sync writes the active route's location to the host.
// It is a no-op when the host already shows that location.
func (a *Adapter) Sync(active *router.ActiveRoute, mode Mode) error {
	if active == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.shows(active.Location) {
		a.current = active.Location
		a.shown = active.Location
		return nil
	}

	fragment := routepath.Fragment(active.Location)
	var err error
	if mode == ModeReplace {
		err = a.host.Replace(fragment)
	} else {
		err = a.host.Push(fragment)
	}
	if err != nil {
		a.logger.Warn("history write failed", "location", fragment, "mode", mode, "error", err)
		return nerrors.New("N204").WithDetailf("%s %s", mode, fragment).Wrap(err)
	}
	a.current = active.Location
	a.shown = active.Location

	a.logger.Debug("history synced", "location", fragment, "mode", mode)
	return nil
}

// shows reports whether the host displays location. Callers hold a.mu.
func (a *Adapter) shows(location string) bool {
	loc, err := routepath.Normalize(a.host.Location())
	return err == nil && loc.String() == location
}

// OnExternalChange registers cb for location changes the adapter did not
// write: back, forward and manual edits. A notification is dropped only
// when it repeats the location the host already showed, such as a host
// echoing a Sync write. Anything else is reported, including a return to
// the synced location after an edit the caller did not commit.
func (a *Adapter) OnExternalChange(cb func(location string)) (stop func()) {
	return a.host.Listen(func(raw string) {
		location := routepath.StripFragment(raw)
		if loc, err := routepath.Normalize(raw); err == nil {
			location = loc.String()
		}

		a.mu.Lock()
		echo := location == a.shown
		a.shown = location
		a.mu.Unlock()

		if echo {
			a.logger.Debug("history echo dropped", "location", location)
			return
		}
		a.logger.Debug("history changed externally", "location", location)
		cb(location)
	})
}

// Back moves the host one entry back.
func (a *Adapter) Back() error {
	return a.Go(-1)
}

// Forward moves the host one entry forward.
func (a *Adapter) Forward() error {
	return a.Go(1)
}

// Go moves the host through its history by delta entries.
// The resulting change is reported through OnExternalChange.
func (a *Adapter) Go(delta int) error {
	if err := a.host.Go(delta); err != nil {
		return nerrors.New("N204").WithDetailf("go %d", delta).Wrap(err)
	}
	return nil
}
