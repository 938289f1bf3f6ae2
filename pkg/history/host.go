package history

// Host owns an addressable location and a session history stack.
//
// Push and Replace must not invoke listeners; only changes the host did not
// originate through those calls (back, forward, manual edits) are reported.
type Host interface {
	// Location returns the location currently shown by the host.
	Location() string

	// Push appends a new history entry.
	Push(location string) error

	// Replace overwrites the current history entry.
	Replace(location string) error

	// Go moves through the history stack by delta entries.
	Go(delta int) error

	// Listen registers fn for host-driven location changes.
	Listen(fn func(location string)) (stop func())
}

// Mode selects how a location is written to the host.
type Mode int

const (
	// ModePush adds a history entry.
	ModePush Mode = iota
	// ModeReplace overwrites the current entry.
	ModeReplace
)

func (m Mode) String() string {
	switch m {
	case ModePush:
		return "push"
	case ModeReplace:
		return "replace"
	default:
		return "unknown"
	}
}
