package router

import (
	"errors"
	"fmt"
	"strings"

	nerrors "github.com/vango-dev/navcore/internal/errors"
)

// Sentinel errors for errors.Is.
var (
	// ErrValidation is matched by route table construction failures.
	ErrValidation = errors.New("route validation failed")

	// ErrNoMatch is matched when no route matches a location or name.
	ErrNoMatch = errors.New("no route matches")

	// ErrRedirectCycle is matched when redirects do not terminate
	// within the hop bound.
	ErrRedirectCycle = errors.New("redirect cycle")
)

// ValidationError reports every problem found while building a table.
type ValidationError struct {
	Problems []*nerrors.Error
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "route table: " + e.Problems[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "route table: %d problems:", len(e.Problems))
	for i, p := range e.Problems {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, p.Error())
	}
	return sb.String()
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap exposes the individual problems.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		errs[i] = p
	}
	return errs
}

// NoMatchError reports a location (or route name) that nothing matches.
type NoMatchError struct {
	// Location is the location that failed to match, if any.
	Location string

	// Name is the route name that failed to resolve, if any.
	Name string

	// RedirectedFrom lists redirects followed before the failure.
	RedirectedFrom []string

	// Err is the underlying diagnostic.
	Err error
}

func (e *NoMatchError) Error() string {
	var msg string
	if e.Name != "" {
		msg = fmt.Sprintf("no route named %q", e.Name)
	} else {
		msg = fmt.Sprintf("no route matches %q", e.Location)
	}
	if len(e.RedirectedFrom) > 0 {
		msg += " (redirected from " + strings.Join(e.RedirectedFrom, " -> ") + ")"
	}
	if e.Err != nil && !nerrors.HasCode(e.Err, "N100") {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrNoMatch.
func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

func (e *NoMatchError) Unwrap() error {
	return e.Err
}

// RedirectCycleError reports a redirect chain that did not terminate.
type RedirectCycleError struct {
	// Chain lists the locations visited, in order.
	Chain []string

	// Limit is the hop bound in effect.
	Limit int
}

func (e *RedirectCycleError) Error() string {
	return fmt.Sprintf("redirect cycle after %d hops (limit %d): %s",
		len(e.Chain)-1, e.Limit, strings.Join(e.Chain, " -> "))
}

// Is reports whether target is ErrRedirectCycle.
func (e *RedirectCycleError) Is(target error) bool {
	return target == ErrRedirectCycle
}
